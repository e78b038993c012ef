package repositories

import (
	"database/sql"
	"errors"

	"fleetbook/internal/domain"
	"fleetbook/internal/domain/models"
)

type TripRepo struct {
	DB *sql.DB
}

const tripColumns = `id, booking_id, start_time, end_time, start_location, end_location, distance_km, status`

func scanTrip(row interface{ Scan(...any) error }) (models.Trip, error) {
	var t models.Trip
	var start, end sql.NullTime
	var status string
	err := row.Scan(&t.ID, &t.BookingID, &start, &end,
		&t.StartLocation, &t.EndLocation, &t.DistanceKm, &status)
	if err != nil {
		return models.Trip{}, err
	}
	if start.Valid {
		t.StartTime = &start.Time
	}
	if end.Valid {
		t.EndTime = &end.Time
	}
	t.Status = domain.TripStatus(status)
	return t, nil
}

func (r TripRepo) Get(id int64) (models.Trip, error) {
	row := r.DB.QueryRow(`SELECT `+tripColumns+` FROM trips WHERE id = ?`, id)
	t, err := scanTrip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Trip{}, domain.NotFoundf("trip %d not found", id)
	}
	if err != nil {
		return models.Trip{}, domain.Internal("get trip", err)
	}
	return t, nil
}

func (r TripRepo) ListByBooking(bookingID int64) ([]models.Trip, error) {
	rows, err := r.DB.Query(`SELECT `+tripColumns+` FROM trips WHERE booking_id = ? ORDER BY start_time, id`, bookingID)
	if err != nil {
		return nil, domain.Internal("list trips", err)
	}
	defer rows.Close()
	return collectTrips(rows)
}

func (r TripRepo) UpdateStatus(id int64, status domain.TripStatus) error {
	_, err := r.DB.Exec(`UPDATE trips SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return domain.Internal("update trip status", err)
	}
	return nil
}

// DriverTrips returns the trips a driver is currently bound to.
func (r TripRepo) DriverTrips(driverID int64) ([]models.Trip, error) {
	rows, err := r.DB.Query(`SELECT t.id, t.booking_id, t.start_time, t.end_time,
		t.start_location, t.end_location, t.distance_km, t.status
		FROM trips t JOIN trip_drivers td ON td.trip_id = t.id
		WHERE td.driver_id = ?`, driverID)
	if err != nil {
		return nil, domain.Internal("list driver trips", err)
	}
	defer rows.Close()
	return collectTrips(rows)
}

// VehicleTrips returns the trips a vehicle is currently bound to.
func (r TripRepo) VehicleTrips(vehicleID int64) ([]models.Trip, error) {
	rows, err := r.DB.Query(`SELECT t.id, t.booking_id, t.start_time, t.end_time,
		t.start_location, t.end_location, t.distance_km, t.status
		FROM trips t JOIN trip_vehicles tv ON tv.trip_id = t.id
		WHERE tv.vehicle_id = ?`, vehicleID)
	if err != nil {
		return nil, domain.Internal("list vehicle trips", err)
	}
	defer rows.Close()
	return collectTrips(rows)
}

func collectTrips(rows *sql.Rows) ([]models.Trip, error) {
	var out []models.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, domain.Internal("scan trip", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

package repositories

import (
	"database/sql"

	"fleetbook/internal/db"
	"fleetbook/internal/domain"
	"fleetbook/internal/domain/models"
)

// AssignmentRepo owns the trip_drivers and trip_vehicles binding
// tables. A trip holds at most one row in each table; Bind* enforce
// that by replacing competing rows inside a transaction.
type AssignmentRepo struct {
	DB *sql.DB
}

func (r AssignmentRepo) TripDriver(tripID int64) (*models.TripDriver, error) {
	row := r.DB.QueryRow(`SELECT id, trip_id, driver_id, note, assigned_at
		FROM trip_drivers WHERE trip_id = ?`, tripID)
	var b models.TripDriver
	err := row.Scan(&b.ID, &b.TripID, &b.DriverID, &b.Note, &b.AssignedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Internal("get trip driver", err)
	}
	return &b, nil
}

func (r AssignmentRepo) TripVehicle(tripID int64) (*models.TripVehicle, error) {
	row := r.DB.QueryRow(`SELECT id, trip_id, vehicle_id, note, assigned_at
		FROM trip_vehicles WHERE trip_id = ?`, tripID)
	var b models.TripVehicle
	err := row.Scan(&b.ID, &b.TripID, &b.VehicleID, &b.Note, &b.AssignedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Internal("get trip vehicle", err)
	}
	return &b, nil
}

// BindDriver makes b the only driver binding of its trip. The trip_id
// UNIQUE key turns the insert into a replace: a different driver takes
// over the row, the same driver just refreshes note and timestamp.
func (r AssignmentRepo) BindDriver(b models.TripDriver) error {
	_, err := r.DB.Exec(`INSERT INTO trip_drivers (trip_id, driver_id, note, assigned_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE driver_id = VALUES(driver_id), note = VALUES(note),
			assigned_at = VALUES(assigned_at)`,
		b.TripID, b.DriverID, b.Note, b.AssignedAt)
	if err != nil {
		return domain.Internal("bind driver", err)
	}
	return nil
}

// BindVehicle mirrors BindDriver for the vehicle side.
func (r AssignmentRepo) BindVehicle(b models.TripVehicle) error {
	_, err := r.DB.Exec(`INSERT INTO trip_vehicles (trip_id, vehicle_id, note, assigned_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE vehicle_id = VALUES(vehicle_id), note = VALUES(note),
			assigned_at = VALUES(assigned_at)`,
		b.TripID, b.VehicleID, b.Note, b.AssignedAt)
	if err != nil {
		return domain.Internal("bind vehicle", err)
	}
	return nil
}

// UnbindTrip removes both bindings of a trip.
func (r AssignmentRepo) UnbindTrip(tripID int64) error {
	err := db.WithTx(r.DB, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM trip_drivers WHERE trip_id = ?`, tripID); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM trip_vehicles WHERE trip_id = ?`, tripID)
		return err
	})
	if err != nil {
		return domain.Internal("unbind trip", err)
	}
	return nil
}

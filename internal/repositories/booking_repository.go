package repositories

import (
	"database/sql"
	"errors"
	"time"

	"fleetbook/internal/db"
	"fleetbook/internal/domain"
	"fleetbook/internal/domain/models"
)

type BookingRepo struct {
	DB *sql.DB
}

const bookingColumns = `id, code, customer_id, branch_id, consultant_id, hire_type,
use_highway, is_holiday, is_weekend, estimated_cost, discount_amount, total_cost,
deposit_amount, status, note, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (models.Booking, error) {
	var b models.Booking
	var consultant sql.NullInt64
	var hireType, note sql.NullString
	var status string
	err := row.Scan(&b.ID, &b.Code, &b.CustomerID, &b.BranchID, &consultant, &hireType,
		&b.UseHighway, &b.IsHoliday, &b.IsWeekend, &b.EstimatedCost, &b.DiscountAmount,
		&b.TotalCost, &b.DepositAmount, &status, &note, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return models.Booking{}, err
	}
	if consultant.Valid {
		b.ConsultantID = &consultant.Int64
	}
	b.HireType = hireType.String
	b.Note = note.String
	b.Status = domain.BookingStatus(status)
	return b, nil
}

func (r BookingRepo) Get(id int64) (models.Booking, error) {
	row := r.DB.QueryRow(`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Booking{}, domain.NotFoundf("booking %d not found", id)
	}
	if err != nil {
		return models.Booking{}, domain.Internal("get booking", err)
	}
	return b, nil
}

func (r BookingRepo) List(branchID int64, status string, limit, offset int) ([]models.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	args := []any{}
	if branchID > 0 {
		q += ` AND branch_id = ?`
		args = append(args, branchID)
	}
	if status != "" {
		q += ` AND status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.DB.Query(q, args...)
	if err != nil {
		return nil, domain.Internal("list bookings", err)
	}
	defer rows.Close()

	var out []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, domain.Internal("scan booking", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Insert stores the booking, its vehicle lines and its trips in one
// transaction and returns the new id.
func (r BookingRepo) Insert(b models.Booking, details []models.VehicleDetail, trips []models.Trip) (int64, error) {
	var id int64
	err := db.WithTx(r.DB, func(tx *sql.Tx) error {
		res, err := tx.Exec(`INSERT INTO bookings
			(code, customer_id, branch_id, consultant_id, hire_type, use_highway,
			 is_holiday, is_weekend, estimated_cost, discount_amount, total_cost,
			 deposit_amount, status, note, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.Code, b.CustomerID, b.BranchID, nullableID(b.ConsultantID), nullableStr(b.HireType),
			b.UseHighway, b.IsHoliday, b.IsWeekend, b.EstimatedCost, b.DiscountAmount,
			b.TotalCost, b.DepositAmount, string(b.Status), b.Note, b.CreatedAt, b.UpdatedAt)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		if err != nil {
			return err
		}
		if err := insertVehicleDetails(tx, id, details); err != nil {
			return err
		}
		return insertTrips(tx, id, trips)
	})
	if err != nil {
		return 0, domain.Internal("insert booking", err)
	}
	return id, nil
}

// Update rewrites the booking row and, when details or trips are
// non-nil, replaces those wholesale.
func (r BookingRepo) Update(b models.Booking, details []models.VehicleDetail, trips []models.Trip) error {
	err := db.WithTx(r.DB, func(tx *sql.Tx) error {
		_, err := tx.Exec(`UPDATE bookings SET
			hire_type = ?, use_highway = ?, is_holiday = ?, is_weekend = ?,
			estimated_cost = ?, discount_amount = ?, total_cost = ?, deposit_amount = ?,
			status = ?, note = ?, updated_at = ?
			WHERE id = ?`,
			nullableStr(b.HireType), b.UseHighway, b.IsHoliday, b.IsWeekend,
			b.EstimatedCost, b.DiscountAmount, b.TotalCost, b.DepositAmount,
			string(b.Status), b.Note, b.UpdatedAt, b.ID)
		if err != nil {
			return err
		}
		if details != nil {
			if _, err := tx.Exec(`DELETE FROM booking_vehicle_details WHERE booking_id = ?`, b.ID); err != nil {
				return err
			}
			if err := insertVehicleDetails(tx, b.ID, details); err != nil {
				return err
			}
		}
		if trips != nil {
			if _, err := tx.Exec(`DELETE FROM trips WHERE booking_id = ?`, b.ID); err != nil {
				return err
			}
			if err := insertTrips(tx, b.ID, trips); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Internal("update booking", err)
	}
	return nil
}

func (r BookingRepo) UpdateStatus(id int64, status domain.BookingStatus) error {
	_, err := r.DB.Exec(`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id)
	if err != nil {
		return domain.Internal("update booking status", err)
	}
	return nil
}

func (r BookingRepo) VehicleDetails(bookingID int64) ([]models.VehicleDetail, error) {
	rows, err := r.DB.Query(`SELECT id, booking_id, category_id, quantity
		FROM booking_vehicle_details WHERE booking_id = ? ORDER BY id`, bookingID)
	if err != nil {
		return nil, domain.Internal("list vehicle details", err)
	}
	defer rows.Close()

	var out []models.VehicleDetail
	for rows.Next() {
		var d models.VehicleDetail
		if err := rows.Scan(&d.ID, &d.BookingID, &d.CategoryID, &d.Quantity); err != nil {
			return nil, domain.Internal("scan vehicle detail", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func insertVehicleDetails(tx *sql.Tx, bookingID int64, details []models.VehicleDetail) error {
	for _, d := range details {
		if _, err := tx.Exec(`INSERT INTO booking_vehicle_details
			(booking_id, category_id, quantity) VALUES (?, ?, ?)`,
			bookingID, d.CategoryID, d.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func insertTrips(tx *sql.Tx, bookingID int64, trips []models.Trip) error {
	for _, t := range trips {
		if _, err := tx.Exec(`INSERT INTO trips
			(booking_id, start_time, end_time, start_location, end_location, distance_km, status)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			bookingID, t.StartTime, t.EndTime, t.StartLocation, t.EndLocation,
			t.DistanceKm, string(t.Status)); err != nil {
			return err
		}
	}
	return nil
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func nullableStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

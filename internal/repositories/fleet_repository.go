package repositories

import (
	"database/sql"
	"errors"
	"time"

	"fleetbook/internal/domain"
	"fleetbook/internal/domain/models"
)

// FleetRepo reads branches, vehicles, drivers and day-offs.
type FleetRepo struct {
	DB *sql.DB
}

func (r FleetRepo) GetBranch(id int64) (models.Branch, error) {
	row := r.DB.QueryRow(`SELECT id, name, address, phone, active FROM branches WHERE id = ?`, id)
	var b models.Branch
	err := row.Scan(&b.ID, &b.Name, &b.Address, &b.Phone, &b.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Branch{}, domain.NotFoundf("branch %d not found", id)
	}
	if err != nil {
		return models.Branch{}, domain.Internal("get branch", err)
	}
	return b, nil
}

// AvailableVehicles lists AVAILABLE vehicles of a branch, optionally
// narrowed to one category (0 means all), ordered by id for stable
// dispatch picks.
func (r FleetRepo) AvailableVehicles(branchID, categoryID int64) ([]models.Vehicle, error) {
	q := `SELECT id, branch_id, category_id, license_plate, status
		FROM vehicles WHERE branch_id = ? AND status = ?`
	args := []any{branchID, string(domain.VehicleAvailable)}
	if categoryID > 0 {
		q += ` AND category_id = ?`
		args = append(args, categoryID)
	}
	q += ` ORDER BY id`

	rows, err := r.DB.Query(q, args...)
	if err != nil {
		return nil, domain.Internal("list vehicles", err)
	}
	defer rows.Close()

	var out []models.Vehicle
	for rows.Next() {
		var v models.Vehicle
		var status string
		if err := rows.Scan(&v.ID, &v.BranchID, &v.CategoryID, &v.LicensePlate, &status); err != nil {
			return nil, domain.Internal("scan vehicle", err)
		}
		v.Status = domain.VehicleStatus(status)
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r FleetRepo) GetVehicle(id int64) (models.Vehicle, error) {
	row := r.DB.QueryRow(`SELECT id, branch_id, category_id, license_plate, status
		FROM vehicles WHERE id = ?`, id)
	var v models.Vehicle
	var status string
	err := row.Scan(&v.ID, &v.BranchID, &v.CategoryID, &v.LicensePlate, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Vehicle{}, domain.NotFoundf("vehicle %d not found", id)
	}
	if err != nil {
		return models.Vehicle{}, domain.Internal("get vehicle", err)
	}
	v.Status = domain.VehicleStatus(status)
	return v, nil
}

// BranchDrivers lists active drivers of a branch ordered by id.
func (r FleetRepo) BranchDrivers(branchID int64) ([]models.Driver, error) {
	rows, err := r.DB.Query(`SELECT id, branch_id, full_name, phone, license_number,
		license_class, license_expiry, active
		FROM drivers WHERE branch_id = ? AND active = 1 ORDER BY id`, branchID)
	if err != nil {
		return nil, domain.Internal("list drivers", err)
	}
	defer rows.Close()

	var out []models.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r FleetRepo) GetDriver(id int64) (models.Driver, error) {
	row := r.DB.QueryRow(`SELECT id, branch_id, full_name, phone, license_number,
		license_class, license_expiry, active FROM drivers WHERE id = ?`, id)
	d, err := scanDriver(row)
	if err != nil {
		var ne *domain.InternalError
		if errors.As(err, &ne) && errors.Is(ne.Err, sql.ErrNoRows) {
			return models.Driver{}, domain.NotFoundf("driver %d not found", id)
		}
		return models.Driver{}, err
	}
	return d, nil
}

func scanDriver(row interface{ Scan(...any) error }) (models.Driver, error) {
	var d models.Driver
	var expiry sql.NullTime
	if err := row.Scan(&d.ID, &d.BranchID, &d.FullName, &d.Phone,
		&d.LicenseNumber, &d.LicenseClass, &expiry, &d.Active); err != nil {
		return models.Driver{}, domain.Internal("scan driver", err)
	}
	if expiry.Valid {
		d.LicenseExpiry = &expiry.Time
	}
	return d, nil
}

// HasApprovedDayOff reports whether the driver has an approved leave
// covering the given calendar day.
func (r FleetRepo) HasApprovedDayOff(driverID int64, day time.Time) (bool, error) {
	var n int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM driver_day_offs
		WHERE driver_id = ? AND status = ? AND start_date <= ? AND end_date >= ?`,
		driverID, domain.DayOffApproved, day, day).Scan(&n)
	if err != nil {
		return false, domain.Internal("check day off", err)
	}
	return n > 0, nil
}

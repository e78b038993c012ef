package models

import (
	"time"

	"fleetbook/internal/domain"
)

// Branch is an operating location owning its own fleet and drivers.
type Branch struct {
	ID      int64
	Name    string
	Address string
	Phone   string
	Active  bool
}

// Customer is the booking party.
type Customer struct {
	ID       int64
	FullName string
	Phone    string
	Email    string
	Address  string
}

// Vehicle is a single unit of the fleet, always tied to one branch and
// one category.
type Vehicle struct {
	ID           int64
	BranchID     int64
	CategoryID   int64
	LicensePlate string
	Status       domain.VehicleStatus
}

// Driver is an employed driver. LicenseExpiry is a date; a nil value is
// treated as unknown and excluded from dispatch.
type Driver struct {
	ID            int64
	BranchID      int64
	FullName      string
	Phone         string
	LicenseNumber string
	LicenseClass  string
	LicenseExpiry *time.Time
	Active        bool
}

// DriverDayOff is a leave request covering whole calendar days,
// inclusive on both ends. Only APPROVED requests block dispatch.
type DriverDayOff struct {
	ID        int64
	DriverID  int64
	StartDate time.Time
	EndDate   time.Time
	Status    string
}

// Covers reports whether the day-off spans the given calendar day.
func (d DriverDayOff) Covers(day time.Time) bool {
	y, m, dd := day.Date()
	t := time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
	sy, sm, sd := d.StartDate.Date()
	start := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	ey, em, ed := d.EndDate.Date()
	end := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	return !t.Before(start) && !t.After(end)
}

package models

import (
	"time"

	"fleetbook/internal/domain"
)

// Trip is one leg of a booking with its own schedule and route.
type Trip struct {
	ID            int64
	BookingID     int64
	StartTime     *time.Time
	EndTime       *time.Time
	StartLocation string
	EndLocation   string
	DistanceKm    float64
	Status        domain.TripStatus
}

// Overlaps reports whether two trips occupy intersecting time windows.
// A trip with a missing start or end never overlaps anything.
func (t Trip) Overlaps(other Trip) bool {
	return WindowsOverlap(t.StartTime, t.EndTime, other.StartTime, other.EndTime)
}

// WindowsOverlap is the half-open interval test: [s1,e1) and [s2,e2)
// intersect iff s1 < e2 && s2 < e1. Nil endpoints mean no overlap.
func WindowsOverlap(s1, e1, s2, e2 *time.Time) bool {
	if s1 == nil || e1 == nil || s2 == nil || e2 == nil {
		return false
	}
	return s1.Before(*e2) && s2.Before(*e1)
}

// TripDriver binds a driver to a trip. A trip holds at most one
// driver binding at a time.
type TripDriver struct {
	ID         int64
	TripID     int64
	DriverID   int64
	Note       string
	AssignedAt time.Time
}

// TripVehicle binds a vehicle to a trip, same single-binding rule.
type TripVehicle struct {
	ID         int64
	TripID     int64
	VehicleID  int64
	Note       string
	AssignedAt time.Time
}

package domain

import "strings"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending       BookingStatus = "PENDING"
	BookingQuotationSent BookingStatus = "QUOTATION_SENT"
	BookingConfirmed     BookingStatus = "CONFIRMED"
	BookingAssigned      BookingStatus = "ASSIGNED"
	BookingInProgress    BookingStatus = "INPROGRESS"
	BookingCompleted     BookingStatus = "COMPLETED"
	BookingCancelled     BookingStatus = "CANCELLED"
)

// bookingTransitions is the set of legal forward moves. Cancellation is
// handled separately because it is allowed from every non-terminal state.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:       {BookingQuotationSent, BookingConfirmed, BookingCancelled},
	BookingQuotationSent: {BookingConfirmed, BookingCancelled},
	BookingConfirmed:     {BookingAssigned, BookingCancelled},
	BookingAssigned:      {BookingInProgress, BookingCancelled},
	BookingInProgress:    {BookingCompleted, BookingCancelled},
	BookingCompleted:     {},
	BookingCancelled:     {},
}

// CanTransition reports whether moving from -> to is a legal booking move.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// ParseBookingStatus normalizes free-form client input. Blank or unknown
// values collapse to PENDING rather than failing the request; hyphens and
// spaces are treated as underscores ("quotation-sent" == QUOTATION_SENT)
// and IN_PROGRESS is accepted as a synonym for INPROGRESS.
func ParseBookingStatus(raw string) BookingStatus {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return BookingPending
	}
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	if s == "IN_PROGRESS" {
		s = string(BookingInProgress)
	}
	switch BookingStatus(s) {
	case BookingPending, BookingQuotationSent, BookingConfirmed,
		BookingAssigned, BookingInProgress, BookingCompleted, BookingCancelled:
		return BookingStatus(s)
	}
	return BookingPending
}

// TripStatus is the lifecycle state of a single trip leg.
type TripStatus string

const (
	TripScheduled TripStatus = "SCHEDULED"
	TripAssigned  TripStatus = "ASSIGNED"
	TripOngoing   TripStatus = "ONGOING"
	TripCompleted TripStatus = "COMPLETED"
	TripCancelled TripStatus = "CANCELLED"
)

// Active reports whether the trip still occupies its driver and vehicle.
func (s TripStatus) Active() bool {
	return s == TripScheduled || s == TripAssigned || s == TripOngoing
}

// ParseTripStatus mirrors ParseBookingStatus for trips. Unknown input
// falls back to SCHEDULED.
func ParseTripStatus(raw string) TripStatus {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return TripScheduled
	}
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	switch TripStatus(s) {
	case TripScheduled, TripAssigned, TripOngoing, TripCompleted, TripCancelled:
		return TripStatus(s)
	}
	return TripScheduled
}

// VehicleStatus is the operational state of a fleet vehicle.
type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "AVAILABLE"
	VehicleInUse       VehicleStatus = "INUSE"
	VehicleMaintenance VehicleStatus = "MAINTENANCE"
	VehicleInactive    VehicleStatus = "INACTIVE"
)

// DayOffApproved is the only day-off state that blocks dispatch.
const DayOffApproved = "APPROVED"

// Hire type codes stored on bookings. An empty code means "not chosen",
// which the pricing engine resolves from the trip shape.
const (
	HireOneWay    = "ONE_WAY"
	HireRoundTrip = "ROUND_TRIP"
	HireDaily     = "DAILY"
	HireMultiDay  = "MULTI_DAY"
)

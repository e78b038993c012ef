package domain

import "testing"

func TestParseBookingStatus(t *testing.T) {
	cases := []struct {
		in   string
		want BookingStatus
	}{
		{"CONFIRMED", BookingConfirmed},
		{"confirmed", BookingConfirmed},
		{"  Quotation-Sent ", BookingQuotationSent},
		{"quotation sent", BookingQuotationSent},
		{"", BookingPending},
		{"garbage", BookingPending},
		{"in_progress", BookingInProgress},
		{"IN PROGRESS", BookingInProgress},
		{"in-progress", BookingInProgress},
		{"inprogress", BookingInProgress},
	}
	for _, tc := range cases {
		if got := ParseBookingStatus(tc.in); got != tc.want {
			t.Errorf("ParseBookingStatus(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to BookingStatus }{
		{BookingPending, BookingQuotationSent},
		{BookingPending, BookingConfirmed},
		{BookingQuotationSent, BookingConfirmed},
		{BookingConfirmed, BookingAssigned},
		{BookingAssigned, BookingInProgress},
		{BookingInProgress, BookingCompleted},
		{BookingPending, BookingCancelled},
		{BookingInProgress, BookingCancelled},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}

	blocked := []struct{ from, to BookingStatus }{
		{BookingPending, BookingCompleted},
		{BookingConfirmed, BookingInProgress},
		{BookingCompleted, BookingCancelled},
		{BookingCancelled, BookingPending},
		{BookingCompleted, BookingPending},
	}
	for _, tc := range blocked {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be blocked", tc.from, tc.to)
		}
	}
}

func TestTripStatusActive(t *testing.T) {
	for _, st := range []TripStatus{TripScheduled, TripAssigned, TripOngoing} {
		if !st.Active() {
			t.Errorf("%s should be active", st)
		}
	}
	for _, st := range []TripStatus{TripCompleted, TripCancelled} {
		if st.Active() {
			t.Errorf("%s should not be active", st)
		}
	}
}

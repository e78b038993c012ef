package utils

import "time"

// TruncateToDay drops the time-of-day component, keeping the location.
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether both instants fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// CalendarDays counts the days a window spans, inclusive: a trip from
// Monday evening to Tuesday morning is 2 days. Never less than 1.
func CalendarDays(start, end time.Time) int {
	days := int(TruncateToDay(end).Sub(TruncateToDay(start)).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

// SameISOWeek reports whether both instants fall in the same ISO week.
func SameISOWeek(a, b time.Time) bool {
	ay, aw := a.ISOWeek()
	by, bw := b.ISOWeek()
	return ay == by && aw == bw
}

// HoursUntil returns the signed number of hours from now until t.
func HoursUntil(now, t time.Time) float64 {
	return t.Sub(now).Hours()
}

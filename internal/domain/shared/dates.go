package shared

import "time"

// DateLayout is the calendar-date format used on the wire and in storage keys
const DateLayout = "2006-01-02"

// Clock returns the current instant. Services take one so schedules and series are
// deterministic under test.
type Clock func() time.Time

// DateOf truncates t to its calendar date, expressed as midnight UTC.
// The year/month/day are read in t's own location before conversion.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether a and b fall on the same calendar date
func SameDate(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}

package schedule

import (
	"time"
)

// Clock supplies the current time to the scheduling core. Window and
// cadence computations never read the wall clock directly so tests can
// fix "today" deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the server wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// DateOf truncates a time to calendar-date granularity (midnight UTC).
// All schedule dates are stored and compared at this granularity.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the clock's current date at day granularity.
func Today(c Clock) time.Time {
	return DateOf(c.Now())
}

// ParseDate parses a YYYY-MM-DD request value into a schedule date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(t), nil
}

// daysBetween returns the whole calendar days from a to b (negative
// when b is before a). Both arguments are expected at day granularity.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

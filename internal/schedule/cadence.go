package schedule

import (
	"time"
)

const (
	// DefaultCadenceDays is the checkup interval for PD patients.
	DefaultCadenceDays = 28
	// DefaultHorizonDays is the seeding horizon at patient registration.
	DefaultHorizonDays = 365
)

// Cadence computes checkup dates on a fixed calendar interval.
type Cadence struct {
	IntervalDays int
	HorizonDays  int
}

// DefaultCadence returns the 28-day / one-year cadence.
func DefaultCadence() Cadence {
	return Cadence{IntervalDays: DefaultCadenceDays, HorizonDays: DefaultHorizonDays}
}

// Next returns the checkup date following d: exactly d + IntervalDays,
// calendar arithmetic, not business-day aware. A zero date is rejected
// rather than guessed at.
func (c Cadence) Next(d time.Time) (time.Time, error) {
	if d.IsZero() {
		return time.Time{}, ErrValidation("appointment date must not be empty")
	}
	return DateOf(d).AddDate(0, 0, c.IntervalDays), nil
}

// Seed returns the full set of checkup dates for a newly registered
// patient: the start date itself plus every cadence step whose offset
// stays within the horizon. With the defaults that is day 0 through
// day 364, fourteen occurrences.
func (c Cadence) Seed(start time.Time) ([]time.Time, error) {
	if start.IsZero() {
		return nil, ErrValidation("start date must not be empty")
	}
	var dates []time.Time
	for offset := 0; offset < c.HorizonDays; offset += c.IntervalDays {
		dates = append(dates, DateOf(start).AddDate(0, 0, offset))
	}
	return dates, nil
}

package reservation

import (
	"errors"
	"time"
)

var (
	ErrDateInPast      = errors.New("date is in the past")
	ErrNotServiceDay   = errors.New("date is not a service day")
	ErrBeforeService   = errors.New("date is before service start")
	ErrZeroServiceDate = errors.New("service date is required")
)

// ServiceDate is a calendar day in the program timezone. Time-of-day is
// always truncated so two bookings on the same day compare equal.
type ServiceDate struct {
	day time.Time
}

func NewServiceDate(t time.Time) (ServiceDate, error) {
	if t.IsZero() {
		return ServiceDate{}, ErrZeroServiceDate
	}
	y, m, d := t.Date()
	return ServiceDate{day: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}, nil
}

func MustServiceDate(t time.Time) ServiceDate {
	sd, err := NewServiceDate(t)
	if err != nil {
		panic(err)
	}
	return sd
}

func (d ServiceDate) Time() time.Time {
	return d.day
}

func (d ServiceDate) String() string {
	return d.day.Format(time.DateOnly)
}

func (d ServiceDate) Equal(other ServiceDate) bool {
	return d.day.Equal(other.day)
}

func (d ServiceDate) Before(other ServiceDate) bool {
	return d.day.Before(other.day)
}

// The program runs Monday through Friday.
func (d ServiceDate) IsServiceDay() bool {
	switch d.day.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

func (d ServiceDate) Next() ServiceDate {
	return ServiceDate{day: d.day.AddDate(0, 0, 1)}
}

// NextServiceDay returns the first service day strictly after d.
func (d ServiceDate) NextServiceDay() ServiceDate {
	next := d.Next()
	for !next.IsServiceDay() {
		next = next.Next()
	}
	return next
}

// ValidateBookable rejects past dates, weekends, and dates before the
// program opened. "Past" is relative to now truncated to its own day, so
// same-day bookings remain allowed.
func (d ServiceDate) ValidateBookable(now time.Time, serviceStart time.Time) error {
	today, _ := NewServiceDate(now)
	if d.Before(today) {
		return ErrDateInPast
	}
	if !d.IsServiceDay() {
		return ErrNotServiceDay
	}
	if !serviceStart.IsZero() {
		start, _ := NewServiceDate(serviceStart)
		if d.Before(start) {
			return ErrBeforeService
		}
	}
	return nil
}

package models

import (
	"fmt"
	"time"
)

// dateLayout is the storage form of a civil date.
const dateLayout = "2006-01-02"

// Date is a civil date (YYYY-MM-DD) with no time-of-day component. Streak
// logic works on whole days in the caller's local day boundary, so dates are
// compared and stored as plain day strings rather than timestamps.
type Date string

// NewDate truncates t to its calendar day in t's location.
func NewDate(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

// ParseDate validates and normalizes a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return NewDate(t), nil
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d == ""
}

// Time returns midnight of the date in UTC. Zero dates map to the zero time.
func (d Date) Time() time.Time {
	if d.IsZero() {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays returns the date shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return NewDate(d.Time().AddDate(0, 0, n))
}

// DaysSince returns the number of whole days from other to d. Negative when
// d is earlier than other.
func (d Date) DaysSince(other Date) int {
	return int(d.Time().Sub(other.Time()).Hours() / 24)
}

// Before reports whether d is an earlier calendar day than other. The string
// form orders lexicographically.
func (d Date) Before(other Date) bool {
	return d < other
}

func (d Date) String() string {
	return string(d)
}

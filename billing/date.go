/*
date.go - Calendar date abstraction for the billing engine

PURPOSE:
  The engine works exclusively at day granularity. Date wraps time.Time
  normalized to UTC midnight so comparisons and day arithmetic never leak
  timezone or sub-day precision into the due-date logic.

DESIGN:
  - Dates are values; every operation returns a new Date.
  - The engine never reads the wall clock. Today() exists for the outer
    layers (API, CLI); everything inside the engine takes an explicit
    reference date.

SEE ALSO:
  - cycle.go: month arithmetic built on Date
  - reminder.go: urgency classification relative to an explicit "today"
*/
package billing

import "time"

// DateFormat is the canonical wire/storage format for dates.
const DateFormat = "2006-01-02"

// Date is a calendar date at day granularity, always UTC.
type Date struct {
	Time time.Time
}

// NewDate creates a Date from year, month, day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// Today returns the current date in UTC. For use by callers only; the
// engine itself always receives dates explicitly.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), now.Month(), now.Day())
}

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Comparison
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d.normalize().Equal(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

// Arithmetic
func (d Date) AddDays(n int) Date {
	return Date{Time: d.normalize().AddDate(0, 0, n)}
}

// Properties
func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }
func (d Date) IsZero() bool      { return d.Time.IsZero() }

func (d Date) String() string {
	return d.normalize().Format(DateFormat)
}

// DaysBetween returns the number of whole days from one date to another.
// Negative when `to` is before `from`.
func DaysBetween(from, to Date) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

// daysInMonth returns the number of days in the given month, leap-aware.
func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

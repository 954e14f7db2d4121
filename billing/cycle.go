/*
cycle.go - Due-date advancement across billing cycles

PURPOSE:
  NextDueDate is the leaf dependency of the whole engine: given a due date
  and a cycle, it computes the next due date. Day-based cycles are plain
  offsets; month-based cycles use calendar-aware month addition with
  day-of-month clamping.

CLAMPING:
  Adding months preserves the day-of-month when the target month has it,
  and clamps to the last valid day otherwise:
    Jan 31 + 1 month -> Feb 28 (Feb 29 in a leap year)
    Jan 31 + 3 months -> Apr 30
  A clamped date becomes the new anchor: advancing Feb 28 by a month gives
  Mar 28, not Mar 31. This matches the reference schedule and is pinned by
  tests.

ONE-TIME BILLS:
  one_time has no next due date. PaymentLifecycle never asks for one;
  a caller that does gets ErrCycleNotAdvanceable, which is a programmer
  error, not a user-facing condition.

SEE ALSO:
  - date.go: Date arithmetic and daysInMonth
  - lifecycle.go: the only intended caller
*/
package billing

import "time"

// monthsFor returns the month count for month-based cycles, or 0 for
// day-based and non-advanceable cycles.
func monthsFor(c Cycle) int {
	switch c {
	case CycleMonthly:
		return 1
	case CycleQuarterly:
		return 3
	case CycleSemiannual:
		return 6
	case CycleAnnual:
		return 12
	}
	return 0
}

// NextDueDate advances a due date by one billing cycle.
// Calling it with CycleOneTime or an unknown cycle is a caller error.
func NextDueDate(current Date, cycle Cycle) (Date, error) {
	switch cycle {
	case CycleWeekly:
		return current.AddDays(7), nil
	case CycleBiweekly:
		return current.AddDays(14), nil
	case CycleMonthly, CycleQuarterly, CycleSemiannual, CycleAnnual:
		return addMonths(current, monthsFor(cycle)), nil
	case CycleOneTime:
		return Date{}, ErrCycleNotAdvanceable
	default:
		return Date{}, &UnknownCycleError{Cycle: cycle}
	}
}

// addMonths adds months to a date, carrying overflow into the year and
// clamping the day-of-month to the last valid day of the target month.
func addMonths(d Date, months int) Date {
	// Zero-based month arithmetic so December+1 carries cleanly.
	m := int(d.Month()) - 1 + months
	year := d.Year() + m/12
	month := time.Month(m%12 + 1)

	day := d.Day()
	if max := daysInMonth(year, month); day > max {
		day = max
	}
	return NewDate(year, month, day)
}

/*
reminder.go - Per-bill urgency classification

PURPOSE:
  Classify maps (due date, reminder window, today) to exactly one urgency
  level. The checks form a total, non-overlapping partition, so a bill has
  one status for a given reference date, full stop.

PARTITION (checked in order):
  due <  today                      -> OVERDUE
  due == today                      -> DUE_TODAY
  0 < days-until <= 3               -> DUE_SOON
  3 < days-until <= reminder window -> UPCOMING
  otherwise                         -> NOT_DUE

  `today` is an explicit parameter, never read from a clock, so the
  classifier is deterministic and timezone-agnostic.

SEE ALSO:
  - scanner.go: applies Classify across a collection
*/
package billing

// Urgency is the classification of a bill relative to a reference date.
type Urgency string

const (
	UrgencyOverdue  Urgency = "overdue"
	UrgencyDueToday Urgency = "due_today"
	UrgencyDueSoon  Urgency = "due_soon"
	UrgencyUpcoming Urgency = "upcoming"
	UrgencyNotDue   Urgency = "not_due"
)

// dueSoonDays is the fixed inner window for DUE_SOON, regardless of the
// bill's own reminder window.
const dueSoonDays = 3

// Classify returns the urgency of a due date relative to today, given the
// bill's reminder window in days.
func Classify(due Date, reminderDays int, today Date) Urgency {
	if due.Before(today) {
		return UrgencyOverdue
	}
	if due.Equal(today) {
		return UrgencyDueToday
	}
	days := DaysBetween(today, due)
	if days <= dueSoonDays {
		return UrgencyDueSoon
	}
	if days <= reminderDays {
		return UrgencyUpcoming
	}
	return UrgencyNotDue
}

// NeedsAttention reports whether the urgency should surface a bill in a
// per-bill due scan.
func (u Urgency) NeedsAttention() bool {
	return u != UrgencyNotDue
}

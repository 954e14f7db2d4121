/*
scanner.go - Due-bill scan across a collection

PURPOSE:
  Applies the reminder classifier (or a fixed global window) to every
  unpaid bill in a collection and produces a sorted, filtered report.
  Output is a value; the scanner never mutates its input.

MODES:
  Per-bill:      each bill is judged by its own ReminderDays.
  Fixed-window:  a caller-supplied window overrides every bill's
                 ReminderDays for this scan only. Overdue bills are always
                 included regardless of window.

ORDERING:
  Ascending by due date; ties broken by name, case-insensitive.

SEE ALSO:
  - reminder.go: the per-bill classifier
*/
package billing

import (
	"sort"
	"strings"
)

// ScanEntry pairs a bill with its computed urgency for one scan.
type ScanEntry struct {
	Bill         BillRecord
	Urgency      Urgency
	DaysUntilDue int // negative when overdue
}

// ScanPerBill reports every unpaid bill whose own reminder window makes it
// need attention as of today.
func ScanPerBill(bills Collection, today Date) []ScanEntry {
	var entries []ScanEntry
	for _, b := range bills {
		if b.Paid {
			continue
		}
		u := Classify(b.DueDate, b.ReminderDays, today)
		if !u.NeedsAttention() {
			continue
		}
		entries = append(entries, ScanEntry{
			Bill:         b,
			Urgency:      u,
			DaysUntilDue: DaysBetween(today, b.DueDate),
		})
	}
	sortEntries(entries)
	return entries
}

// ScanWindow reports every unpaid bill due within windowDays of today.
// The window overrides each bill's ReminderDays for this scan only; the
// bills themselves are untouched. Overdue bills are always included.
func ScanWindow(bills Collection, today Date, windowDays int) []ScanEntry {
	var entries []ScanEntry
	for _, b := range bills {
		if b.Paid {
			continue
		}
		days := DaysBetween(today, b.DueDate)
		if days > windowDays {
			continue
		}
		entries = append(entries, ScanEntry{
			Bill:         b,
			Urgency:      Classify(b.DueDate, windowDays, today),
			DaysUntilDue: days,
		})
	}
	sortEntries(entries)
	return entries
}

func sortEntries(entries []ScanEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Bill, entries[j].Bill
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
}

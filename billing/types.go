/*
Package billing provides the recurring-bill lifecycle and due-date engine.

PURPOSE:
  This package answers two questions about a collection of bills:
  "which bills need attention soon?" and "what happens to a bill's
  schedule when it is paid?". Everything here is a pure or
  locally-mutating computation: no I/O, no clock reads, no shared state
  between calls.

KEY CONCEPTS IN THIS FILE (types.go):
  - Cycle: closed enumeration of recurrence patterns
  - BillRecord: the unit of work the engine operates on
  - Payload: opaque secondary attributes carried through unchanged
  - Collection: a value-semantics bill list

DESIGN PRINCIPLES:
  1. Explicit inputs: every operation receives its reference date
  2. Value semantics: operations return new records, never mutate shared state
  3. Closed enums: cycles are exhaustively matched, never string-compared ad hoc

SEE ALSO:
  - cycle.go: due-date advancement
  - scanner.go: due-bill classification across a collection
  - lifecycle.go: payment transitions and the staged batch
*/
package billing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CYCLE - Closed enumeration of billing recurrence patterns
// =============================================================================

// Cycle is a billing recurrence pattern. The set is closed: CycleCalculator
// matches exhaustively, so an unknown value is an error, never a fallthrough.
type Cycle string

const (
	CycleWeekly     Cycle = "weekly"
	CycleBiweekly   Cycle = "biweekly"
	CycleMonthly    Cycle = "monthly"
	CycleQuarterly  Cycle = "quarterly"
	CycleSemiannual Cycle = "semiannual"
	CycleAnnual     Cycle = "annual"
	CycleOneTime    Cycle = "one_time"
)

// AllCycles lists every valid cycle, in menu order.
func AllCycles() []Cycle {
	return []Cycle{
		CycleWeekly,
		CycleBiweekly,
		CycleMonthly,
		CycleQuarterly,
		CycleSemiannual,
		CycleAnnual,
		CycleOneTime,
	}
}

// Valid reports whether c is one of the closed enum values.
func (c Cycle) Valid() bool {
	switch c {
	case CycleWeekly, CycleBiweekly, CycleMonthly, CycleQuarterly,
		CycleSemiannual, CycleAnnual, CycleOneTime:
		return true
	}
	return false
}

// Recurring reports whether bills with this cycle come back after payment.
func (c Cycle) Recurring() bool {
	return c.Valid() && c != CycleOneTime
}

// Description returns a human-readable description of the cycle.
func (c Cycle) Description() string {
	switch c {
	case CycleWeekly:
		return "Every 7 days"
	case CycleBiweekly:
		return "Every 14 days"
	case CycleMonthly:
		return "Every month"
	case CycleQuarterly:
		return "Every 3 months"
	case CycleSemiannual:
		return "Every 6 months"
	case CycleAnnual:
		return "Every 12 months"
	case CycleOneTime:
		return "One-time payment (no recurrence)"
	default:
		return "Unknown cycle"
	}
}

// =============================================================================
// BILL RECORD - The unit of work
// =============================================================================

// BillID uniquely identifies a bill within a collection.
type BillID string

// DefaultReminderDays is applied at the input boundary when a record
// predates the reminder_days field. The engine itself never defaults it.
const DefaultReminderDays = 7

// Payload holds the secondary attributes of a bill. The engine carries a
// Payload through every transition unchanged and never interprets it.
type Payload struct {
	Category      string
	PaymentMethod string
	Amount        decimal.Decimal
	WebPage       string
	CompanyEmail  string
	SupportPhone  string
	AccountNumber string
}

// BillRecord is a financial obligation with a due date and a recurrence
// pattern. Invariants maintained by the engine:
//   - DueDate is always a valid calendar date after any transformation
//   - ReminderDays stays within [1,365]
//   - A one_time bill with Paid == true is never mutated again
type BillRecord struct {
	ID           BillID
	Name         string
	DueDate      Date
	Cycle        Cycle
	ReminderDays int
	Paid         bool
	Payload      Payload
}

// Terminal reports whether the bill is in a state Pay can no longer leave:
// a paid one_time bill, or a recurring bill that was permanently retired.
func (b BillRecord) Terminal() bool {
	return b.Paid
}

// =============================================================================
// COLLECTION - Value-semantics bill list
// =============================================================================

// Collection is a list of bills passed into and returned from engine
// operations. No component holds implicit ownership of a shared list.
type Collection []BillRecord

// Clone returns a deep copy. Payloads are plain values, so copying the
// slice elements is sufficient.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	copy(out, c)
	return out
}

// FindByID returns the index of the bill with the given ID, or -1.
func (c Collection) FindByID(id BillID) int {
	for i := range c {
		if c[i].ID == id {
			return i
		}
	}
	return -1
}

// FindByName returns the index of the bill whose name matches
// case-insensitively, or -1. Names are unique within a collection.
func (c Collection) FindByName(name string) int {
	for i := range c {
		if strings.EqualFold(c[i].Name, name) {
			return i
		}
	}
	return -1
}

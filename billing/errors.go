/*
errors.go - Centralized error types for the billing engine

PURPOSE:
  All engine errors in one place. Two categories:

  1. Programmer errors - wrong call sequencing (ErrCycleNotAdvanceable,
     ErrUnknownCycle). Never reachable through correct use; treated as
     defects, not runtime conditions to recover from.
  2. Client errors - user-triggered and always surfaced, never swallowed
     (terminal bill payment, unknown bill in a batch, batch rejection).

USAGE:
  Callers match with errors.Is / errors.As:

    if errors.Is(err, billing.ErrTerminalBill) { ... }

    var batchErr *billing.BatchError
    if errors.As(err, &batchErr) {
        for _, f := range batchErr.Failures { ... }
    }

SEE ALSO:
  - lifecycle.go: produces TerminalPaymentError and BatchError
  - api: maps IsClientError to 4xx responses
*/
package billing

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrCycleNotAdvanceable is returned when NextDueDate is called for a
	// one_time cycle. Programmer error: the lifecycle never does this.
	ErrCycleNotAdvanceable = errors.New("one_time cycle has no next due date")

	// ErrUnknownCycle is returned for a cycle outside the closed enum.
	ErrUnknownCycle = errors.New("unknown billing cycle")

	// ErrTerminalBill is returned when Pay is called on a bill already in
	// a terminal paid state.
	ErrTerminalBill = errors.New("bill is in a terminal paid state")

	// ErrBillNotFound is returned when a staged intent or lookup references
	// a bill that is not in the collection.
	ErrBillNotFound = errors.New("bill not found")

	// ErrDuplicateName is returned when inserting a bill whose name is
	// already taken, case-insensitively.
	ErrDuplicateName = errors.New("bill name already exists")

	// ErrAlreadyStaged is returned when the same bill is staged twice in
	// one batch.
	ErrAlreadyStaged = errors.New("bill already staged in this batch")

	// ErrNotStaged is returned when unstaging a bill that was never staged.
	ErrNotStaged = errors.New("bill not staged in this batch")

	// ErrBatchRejected is the sentinel wrapped by BatchError.
	ErrBatchRejected = errors.New("payment batch rejected")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// UnknownCycleError reports a cycle value outside the closed enumeration.
type UnknownCycleError struct {
	Cycle Cycle
}

func (e *UnknownCycleError) Error() string {
	return fmt.Sprintf("unknown billing cycle %q", string(e.Cycle))
}

func (e *UnknownCycleError) Unwrap() error { return ErrUnknownCycle }

// TerminalPaymentError reports a Pay call against a bill that can no
// longer transition.
type TerminalPaymentError struct {
	BillID BillID
	Name   string
}

func (e *TerminalPaymentError) Error() string {
	return fmt.Sprintf("bill %q (%s) is already paid and terminal", e.Name, e.BillID)
}

func (e *TerminalPaymentError) Unwrap() error { return ErrTerminalBill }

// IntentFailure records why a single staged intent could not be applied.
type IntentFailure struct {
	BillID BillID
	Err    error
}

// BatchError is returned by PaymentBatch.Apply when any staged intent
// fails. The batch is all-or-nothing: no bill was modified.
type BatchError struct {
	Total    int // number of staged intents evaluated
	Failures []IntentFailure
}

func (e *BatchError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = fmt.Sprintf("%s: %v", f.BillID, f.Err)
	}
	return fmt.Sprintf("payment batch rejected (%d of %d intents failed): %s",
		len(e.Failures), e.Total, strings.Join(parts, "; "))
}

func (e *BatchError) Unwrap() error { return ErrBatchRejected }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is due to invalid caller input
// rather than a defect.
func IsClientError(err error) bool {
	return errors.Is(err, ErrTerminalBill) ||
		errors.Is(err, ErrBillNotFound) ||
		errors.Is(err, ErrDuplicateName) ||
		errors.Is(err, ErrAlreadyStaged) ||
		errors.Is(err, ErrNotStaged) ||
		errors.Is(err, ErrBatchRejected)
}

// IsNotFound reports whether the error indicates a missing bill.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBillNotFound)
}

/*
lifecycle.go - Payment state transitions and the staged batch

PURPOSE:
  Pay is the only engine operation that changes a bill's schedule. The
  engine uses the in-place model: paying a recurring bill advances its due
  date and leaves Paid == false, so callers never observe a recurring bill
  in the paid state. A paid recurring bill therefore means "permanently
  retired" (see Retire), and is terminal exactly like a paid one_time
  bill.

TRANSITIONS:
  one_time, unpaid  -> Paid = true (terminal)
  recurring, unpaid -> DueDate advanced one cycle, Paid stays false
  any paid bill     -> TerminalPaymentError, never a silent no-op

STAGED COMMIT:
  Interactive callers check off several bills and apply them together.
  PaymentBatch records pay intents against a snapshot; Apply evaluates
  every intent and either returns a fully transitioned collection or a
  BatchError with nothing written. Discarding intents before Apply leaves
  the source collection untouched by construction, since the batch only
  ever works on its own copy.

SEE ALSO:
  - cycle.go: due-date advancement consulted by Pay
  - store.go: ReplaceAll gives the committed collection an atomic home
*/
package billing

// Pay applies one payment to a bill and returns the updated record.
// The input is taken by value; the caller's record is never mutated.
func Pay(bill BillRecord) (BillRecord, error) {
	if bill.Terminal() {
		return bill, &TerminalPaymentError{BillID: bill.ID, Name: bill.Name}
	}
	if bill.Cycle == CycleOneTime {
		bill.Paid = true
		return bill, nil
	}
	next, err := NextDueDate(bill.DueDate, bill.Cycle)
	if err != nil {
		return bill, err
	}
	bill.DueDate = next
	bill.Paid = false
	return bill, nil
}

// Retire permanently marks a recurring bill paid, stopping recurrence.
// The bill becomes terminal and no longer appears in due scans.
func Retire(bill BillRecord) (BillRecord, error) {
	if bill.Terminal() {
		return bill, &TerminalPaymentError{BillID: bill.ID, Name: bill.Name}
	}
	bill.Paid = true
	return bill, nil
}

// =============================================================================
// PAYMENT BATCH - Staged intents with all-or-nothing apply
// =============================================================================

// PaymentBatch accumulates pay intents against a snapshot of a collection
// without touching the underlying bills. Apply performs all transitions
// together or none at all.
type PaymentBatch struct {
	snapshot Collection
	intents  []BillID
	staged   map[BillID]bool
}

// NewPaymentBatch snapshots the collection. Later changes to the source
// collection are not visible to the batch.
func NewPaymentBatch(bills Collection) *PaymentBatch {
	return &PaymentBatch{
		snapshot: bills.Clone(),
		staged:   make(map[BillID]bool),
	}
}

// Stage records a pay intent for the given bill.
func (pb *PaymentBatch) Stage(id BillID) error {
	if pb.snapshot.FindByID(id) < 0 {
		return ErrBillNotFound
	}
	if pb.staged[id] {
		return ErrAlreadyStaged
	}
	pb.staged[id] = true
	pb.intents = append(pb.intents, id)
	return nil
}

// Unstage discards a previously staged intent.
func (pb *PaymentBatch) Unstage(id BillID) error {
	if !pb.staged[id] {
		return ErrNotStaged
	}
	delete(pb.staged, id)
	for i, staged := range pb.intents {
		if staged == id {
			pb.intents = append(pb.intents[:i], pb.intents[i+1:]...)
			break
		}
	}
	return nil
}

// Staged reports whether a pay intent is currently recorded for the bill.
func (pb *PaymentBatch) Staged(id BillID) bool {
	return pb.staged[id]
}

// Pending returns the staged bill IDs in staging order.
func (pb *PaymentBatch) Pending() []BillID {
	out := make([]BillID, len(pb.intents))
	copy(out, pb.intents)
	return out
}

// Discard drops every staged intent. The snapshot stays usable for a new
// round of staging.
func (pb *PaymentBatch) Discard() {
	pb.intents = nil
	pb.staged = make(map[BillID]bool)
}

// Apply performs every staged transition against a copy of the snapshot.
// All-or-nothing: if any intent fails, no bill is modified and the caller
// gets a BatchError listing every failing intent. The staged intents are
// kept on failure so the caller can inspect and correct them.
// On success the intents are cleared and the transitioned collection is
// returned as a value, ready for an atomic whole-collection write.
func (pb *PaymentBatch) Apply() (Collection, error) {
	result := pb.snapshot.Clone()

	var failures []IntentFailure
	for _, id := range pb.intents {
		idx := result.FindByID(id)
		if idx < 0 {
			failures = append(failures, IntentFailure{BillID: id, Err: ErrBillNotFound})
			continue
		}
		paid, err := Pay(result[idx])
		if err != nil {
			failures = append(failures, IntentFailure{BillID: id, Err: err})
			continue
		}
		result[idx] = paid
	}

	if len(failures) > 0 {
		return nil, &BatchError{Total: len(pb.intents), Failures: failures}
	}

	pb.snapshot = result.Clone()
	pb.intents = nil
	pb.staged = make(map[BillID]bool)
	return result, nil
}

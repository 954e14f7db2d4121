/*
store.go - Persistence interface for bill collections

PURPOSE:
  Defines the boundary between the engine and storage. The engine itself
  persists nothing; it returns values that the caller hands to a Store.

ATOMIC REPLACE:
  ReplaceAll swaps the entire collection in one atomic operation. The
  staged payment batch depends on this: a committed batch must never leave
  some bills advanced and others not if the process dies mid-write.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite store
  - store: in-memory store for tests and dev

SEE ALSO:
  - lifecycle.go: PaymentBatch.Apply produces the collection ReplaceAll writes
*/
package billing

import "context"

// Store handles persistence of bill records.
type Store interface {
	// List returns the whole collection, ordered by due date then name.
	List(ctx context.Context) (Collection, error)

	// Get returns a single bill. Returns ErrBillNotFound if absent.
	Get(ctx context.Context, id BillID) (BillRecord, error)

	// Insert adds a new bill. The name must be unique, case-insensitive.
	Insert(ctx context.Context, bill BillRecord) error

	// Update replaces an existing bill wholesale.
	Update(ctx context.Context, bill BillRecord) error

	// Delete removes a bill. Returns ErrBillNotFound if absent.
	Delete(ctx context.Context, id BillID) error

	// ReplaceAll atomically replaces the entire collection.
	// Either every record is written or none is.
	ReplaceAll(ctx context.Context, bills Collection) error
}

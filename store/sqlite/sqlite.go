/*
Package sqlite provides a SQLite-backed implementation of billing.Store.

PURPOSE:
  Persists the bill collection. The engine never touches this package; it
  returns values, and the caller hands them here.

ATOMIC REPLACE:
  ReplaceAll runs DELETE + INSERTs inside one transaction, giving the
  staged payment batch its "replace whole collection" commit: a crash
  mid-write leaves the previous collection intact, never a half-advanced
  mix.

KEY TABLE:
  bills: one row per bill, schema adapted from the desktop tracker it
  replaces. Contact/account payload columns are stored verbatim and never
  interpreted.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

NAME UNIQUENESS:
  Enforced case-insensitively by a unique index on lower(name), mirroring
  the engine's collection invariant.

USAGE:
  store, err := sqlite.New("./data/bills.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - billing/store.go: interface definition
  - store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/bill-engine/billing"
)

// Store implements billing.Store using SQLite.
type Store struct {
	db *sql.DB
}

// Compile-time check that Store implements billing.Store.
var _ billing.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS bills (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		due_date TEXT NOT NULL,
		billing_cycle TEXT NOT NULL,
		reminder_days INTEGER NOT NULL,
		paid INTEGER NOT NULL DEFAULT 0,

		-- Opaque payload, stored verbatim
		category TEXT,
		payment_method TEXT,
		amount TEXT,
		web_page TEXT,
		company_email TEXT,
		support_phone TEXT,
		account_number TEXT
	);

	-- Names are unique within the collection, case-insensitive
	CREATE UNIQUE INDEX IF NOT EXISTS idx_bills_name_unique
		ON bills(lower(name));

	-- Due-date ordering is the hot read path
	CREATE INDEX IF NOT EXISTS idx_bills_due_date
		ON bills(due_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

const billColumns = `id, name, due_date, billing_cycle, reminder_days, paid,
	category, payment_method, amount, web_page, company_email, support_phone, account_number`

// =============================================================================
// READS
// =============================================================================

// List returns the whole collection, ordered by due date then name.
func (s *Store) List(ctx context.Context) (billing.Collection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+billColumns+` FROM bills ORDER BY due_date, lower(name)`)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var bills billing.Collection
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}
	return bills, rows.Err()
}

// Get returns a single bill by ID.
func (s *Store) Get(ctx context.Context, id billing.BillID) (billing.BillRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = ?`, string(id))

	bill, err := scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return billing.BillRecord{}, billing.ErrBillNotFound
	}
	return bill, err
}

// =============================================================================
// WRITES
// =============================================================================

// Insert adds a new bill. The name must be unique, case-insensitive.
func (s *Store) Insert(ctx context.Context, bill billing.BillRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bills (`+billColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		billArgs(bill)...)
	if isUniqueViolation(err) {
		return billing.ErrDuplicateName
	}
	return err
}

// Update replaces an existing bill wholesale.
func (s *Store) Update(ctx context.Context, bill billing.BillRecord) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE bills SET name = ?, due_date = ?, billing_cycle = ?, reminder_days = ?, paid = ?,
			category = ?, payment_method = ?, amount = ?, web_page = ?,
			company_email = ?, support_phone = ?, account_number = ?
		 WHERE id = ?`,
		bill.Name, bill.DueDate.String(), string(bill.Cycle), bill.ReminderDays, boolToInt(bill.Paid),
		bill.Payload.Category, bill.Payload.PaymentMethod, amountString(bill.Payload.Amount),
		bill.Payload.WebPage, bill.Payload.CompanyEmail, bill.Payload.SupportPhone,
		bill.Payload.AccountNumber, string(bill.ID))
	if isUniqueViolation(err) {
		return billing.ErrDuplicateName
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return billing.ErrBillNotFound
	}
	return nil
}

// Delete removes a bill.
func (s *Store) Delete(ctx context.Context, id billing.BillID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bills WHERE id = ?`, string(id))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return billing.ErrBillNotFound
	}
	return nil
}

// ReplaceAll atomically replaces the entire collection.
func (s *Store) ReplaceAll(ctx context.Context, bills billing.Collection) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bills`); err != nil {
		return fmt.Errorf("failed to clear bills: %w", err)
	}
	for _, bill := range bills {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO bills (`+billColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			billArgs(bill)...); err != nil {
			if isUniqueViolation(err) {
				return billing.ErrDuplicateName
			}
			return fmt.Errorf("failed to insert bill %s: %w", bill.ID, err)
		}
	}

	return tx.Commit()
}

// =============================================================================
// ROW MAPPING
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (billing.BillRecord, error) {
	var (
		bill    billing.BillRecord
		id      string
		dueDate string
		cycle   string
		paid    int

		category, paymentMethod, amount, webPage,
		companyEmail, supportPhone, accountNumber sql.NullString
	)

	err := row.Scan(&id, &bill.Name, &dueDate, &cycle, &bill.ReminderDays, &paid,
		&category, &paymentMethod, &amount, &webPage,
		&companyEmail, &supportPhone, &accountNumber)
	if err != nil {
		return billing.BillRecord{}, err
	}

	bill.ID = billing.BillID(id)
	bill.Cycle = billing.Cycle(cycle)
	bill.Paid = paid != 0

	bill.DueDate, err = billing.ParseDate(dueDate)
	if err != nil {
		return billing.BillRecord{}, fmt.Errorf("corrupt due date %q for bill %s: %w", dueDate, id, err)
	}

	bill.Payload = billing.Payload{
		Category:      category.String,
		PaymentMethod: paymentMethod.String,
		WebPage:       webPage.String,
		CompanyEmail:  companyEmail.String,
		SupportPhone:  supportPhone.String,
		AccountNumber: accountNumber.String,
	}
	if amount.Valid && amount.String != "" {
		bill.Payload.Amount, err = decimal.NewFromString(amount.String)
		if err != nil {
			return billing.BillRecord{}, fmt.Errorf("corrupt amount %q for bill %s: %w", amount.String, id, err)
		}
	}
	return bill, nil
}

func billArgs(bill billing.BillRecord) []any {
	return []any{
		string(bill.ID), bill.Name, bill.DueDate.String(), string(bill.Cycle),
		bill.ReminderDays, boolToInt(bill.Paid),
		bill.Payload.Category, bill.Payload.PaymentMethod, amountString(bill.Payload.Amount),
		bill.Payload.WebPage, bill.Payload.CompanyEmail, bill.Payload.SupportPhone,
		bill.Payload.AccountNumber,
	}
}

func amountString(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

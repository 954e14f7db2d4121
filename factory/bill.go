/*
Package factory provides JSON to Go bill conversion.

PURPOSE:
  Converts JSON bill definitions into validated billing.BillRecord values.
  This is the input-validation collaborator of the engine: by the time a
  record leaves this package, its due date is a real calendar date, its
  cycle is one of the closed enum values, and its reminder window is in
  [1,365]. The engine trusts these invariants and never re-validates.

VERSIONED DEFAULTING:
  Records loaded from older installations may miss fields or use legacy
  cycle spellings. Defaulting is an explicit, versioned step performed
  here, once, at the boundary:

    schema_version <= 1:  missing billing_cycle  -> monthly
                          missing reminder_days  -> 7
                          legacy cycle spellings -> normalized
    schema_version 2:     all fields required, legacy spellings rejected

  The engine itself never guesses a missing field.

JSON SCHEMA:
  {
    "schema_version": 2,
    "name": "Electric",
    "due_date": "2025-03-01",
    "billing_cycle": "monthly",
    "reminder_days": 7,
    "paid": false,
    "category": "Utilities",
    "payment_method": "Auto-Pay",
    "amount": "84.50",
    "web_page": "https://example.com",
    "account_number": "ACCT-1"
  }

SEE ALSO:
  - billing/types.go: the record this factory produces
  - store/sqlite: persists what this factory validated
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/bill-engine/billing"
)

// CurrentSchemaVersion is the version written by this release.
const CurrentSchemaVersion = 2

// MaxNameLength bounds bill names.
const MaxNameLength = 100

// unsafeNameChars are rejected in bill names. Pipes and angle brackets
// collide with the export format; control characters break display.
const unsafeNameChars = "|<>;&\n\r\t"

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// BillJSON is the JSON representation of a bill or bill template.
type BillJSON struct {
	SchemaVersion int    `json:"schema_version,omitempty"`
	ID            string `json:"id,omitempty"`
	Name          string `json:"name"`
	DueDate       string `json:"due_date"`
	BillingCycle  string `json:"billing_cycle,omitempty"`
	ReminderDays  *int   `json:"reminder_days,omitempty"`
	Paid          bool   `json:"paid,omitempty"`

	// Opaque payload fields, carried through unchanged by the engine.
	Category      string `json:"category,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Amount        string `json:"amount,omitempty"`
	WebPage       string `json:"web_page,omitempty"`
	CompanyEmail  string `json:"company_email,omitempty"`
	SupportPhone  string `json:"support_phone,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
}

// legacyCycleNames maps spellings used by old installations to the closed
// enum. Applied only for schema_version <= 1.
var legacyCycleNames = map[string]billing.Cycle{
	"bi-weekly":     billing.CycleBiweekly,
	"semi-annually": billing.CycleSemiannual,
	"annually":      billing.CycleAnnual,
	"one-time":      billing.CycleOneTime,
}

// =============================================================================
// BILL FACTORY
// =============================================================================

// BillFactory converts JSON bills to validated records.
type BillFactory struct{}

// NewBillFactory creates a new bill factory.
func NewBillFactory() *BillFactory {
	return &BillFactory{}
}

// ParseBill parses a JSON string into a validated BillRecord.
func (f *BillFactory) ParseBill(jsonStr string) (billing.BillRecord, error) {
	var bj BillJSON
	if err := json.Unmarshal([]byte(jsonStr), &bj); err != nil {
		return billing.BillRecord{}, fmt.Errorf("failed to parse bill JSON: %w", err)
	}
	return f.FromJSON(bj)
}

// FromJSON converts BillJSON to a validated BillRecord, applying the
// versioned defaulting step for records from older schemas.
func (f *BillFactory) FromJSON(bj BillJSON) (billing.BillRecord, error) {
	name := strings.TrimSpace(bj.Name)
	if err := ValidateName(name); err != nil {
		return billing.BillRecord{}, err
	}

	due, err := billing.ParseDate(bj.DueDate)
	if err != nil {
		return billing.BillRecord{}, fmt.Errorf("invalid due date %q: %w", bj.DueDate, err)
	}

	cycle, err := parseCycle(bj.BillingCycle, bj.SchemaVersion)
	if err != nil {
		return billing.BillRecord{}, err
	}

	reminder, err := parseReminderDays(bj.ReminderDays, bj.SchemaVersion)
	if err != nil {
		return billing.BillRecord{}, err
	}

	payload, err := parsePayload(bj)
	if err != nil {
		return billing.BillRecord{}, err
	}

	id := billing.BillID(bj.ID)
	if id == "" {
		id = billing.BillID(uuid.NewString())
	}

	return billing.BillRecord{
		ID:           id,
		Name:         name,
		DueDate:      due,
		Cycle:        cycle,
		ReminderDays: reminder,
		Paid:         bj.Paid,
		Payload:      payload,
	}, nil
}

// FromTemplate instantiates a new unpaid bill from a template record,
// keeping everything but identity, due date and paid state.
func (f *BillFactory) FromTemplate(tpl billing.BillRecord, due billing.Date) billing.BillRecord {
	tpl.ID = billing.BillID(uuid.NewString())
	tpl.DueDate = due
	tpl.Paid = false
	return tpl
}

// ValidateName checks the bill-name rules: non-empty, at most
// MaxNameLength characters, no unsafe characters.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("bill name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("bill name too long: %d characters (max %d)", len(name), MaxNameLength)
	}
	if i := strings.IndexAny(name, unsafeNameChars); i >= 0 {
		return fmt.Errorf("bill name contains unsafe character %q", name[i])
	}
	return nil
}

// =============================================================================
// FIELD PARSING
// =============================================================================

func parseCycle(raw string, schemaVersion int) (billing.Cycle, error) {
	s := strings.ToLower(strings.TrimSpace(raw))

	if schemaVersion <= 1 {
		if s == "" {
			return billing.CycleMonthly, nil
		}
		if normalized, ok := legacyCycleNames[s]; ok {
			return normalized, nil
		}
	}

	c := billing.Cycle(s)
	if !c.Valid() {
		return "", fmt.Errorf("invalid billing cycle %q", raw)
	}
	return c, nil
}

func parseReminderDays(raw *int, schemaVersion int) (int, error) {
	if raw == nil {
		if schemaVersion <= 1 {
			return billing.DefaultReminderDays, nil
		}
		return 0, fmt.Errorf("reminder_days is required")
	}
	if *raw < 1 || *raw > 365 {
		return 0, fmt.Errorf("reminder_days must be in [1,365], got %d", *raw)
	}
	return *raw, nil
}

func parsePayload(bj BillJSON) (billing.Payload, error) {
	p := billing.Payload{
		Category:      bj.Category,
		PaymentMethod: bj.PaymentMethod,
		WebPage:       bj.WebPage,
		CompanyEmail:  bj.CompanyEmail,
		SupportPhone:  bj.SupportPhone,
		AccountNumber: bj.AccountNumber,
	}
	if bj.Amount != "" {
		amount, err := decimal.NewFromString(bj.Amount)
		if err != nil {
			return billing.Payload{}, fmt.Errorf("invalid amount %q: %w", bj.Amount, err)
		}
		p.Amount = amount
	}
	return p, nil
}

// ToJSON converts a record back to its current-schema JSON form, for
// export and for storage layers that persist JSON.
func ToJSON(b billing.BillRecord) BillJSON {
	reminder := b.ReminderDays
	bj := BillJSON{
		SchemaVersion: CurrentSchemaVersion,
		ID:            string(b.ID),
		Name:          b.Name,
		DueDate:       b.DueDate.String(),
		BillingCycle:  string(b.Cycle),
		ReminderDays:  &reminder,
		Paid:          b.Paid,
		Category:      b.Payload.Category,
		PaymentMethod: b.Payload.PaymentMethod,
		WebPage:       b.Payload.WebPage,
		CompanyEmail:  b.Payload.CompanyEmail,
		SupportPhone:  b.Payload.SupportPhone,
		AccountNumber: b.Payload.AccountNumber,
	}
	if !b.Payload.Amount.IsZero() {
		bj.Amount = b.Payload.Amount.String()
	}
	return bj
}

/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Bill input validation lives in the factory package, not here. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/bill.go: BillJSON is the create/update body
*/
package api

import (
	"github.com/warp/bill-engine/billing"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// BillDTO represents a bill in API responses.
type BillDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DueDate      string `json:"due_date"`
	BillingCycle string `json:"billing_cycle"`
	ReminderDays int    `json:"reminder_days"`
	Paid         bool   `json:"paid"`

	Category      string `json:"category,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Amount        string `json:"amount,omitempty"`
	WebPage       string `json:"web_page,omitempty"`
	CompanyEmail  string `json:"company_email,omitempty"`
	SupportPhone  string `json:"support_phone,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
}

// DueBillDTO is a scan result entry.
type DueBillDTO struct {
	Bill         BillDTO `json:"bill"`
	Urgency      string  `json:"urgency"`
	DaysUntilDue int     `json:"days_until_due"`
}

// PayBillRequest selects the payment operation for a single bill.
// Operation "pay" (default) advances recurring bills; "retire" stops
// recurrence permanently.
type PayBillRequest struct {
	Operation string `json:"operation,omitempty"`
}

// BatchPayRequest stages a set of pay intents and applies them together.
type BatchPayRequest struct {
	BillIDs []string `json:"bill_ids"`
}

// BatchFailureDTO reports one rejected intent of a failed batch.
type BatchFailureDTO struct {
	BillID string `json:"bill_id"`
	Reason string `json:"reason"`
}

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error    string            `json:"error"`
	Details  string            `json:"details,omitempty"`
	Failures []BatchFailureDTO `json:"failures,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toBillDTO(b billing.BillRecord) BillDTO {
	dto := BillDTO{
		ID:            string(b.ID),
		Name:          b.Name,
		DueDate:       b.DueDate.String(),
		BillingCycle:  string(b.Cycle),
		ReminderDays:  b.ReminderDays,
		Paid:          b.Paid,
		Category:      b.Payload.Category,
		PaymentMethod: b.Payload.PaymentMethod,
		WebPage:       b.Payload.WebPage,
		CompanyEmail:  b.Payload.CompanyEmail,
		SupportPhone:  b.Payload.SupportPhone,
		AccountNumber: b.Payload.AccountNumber,
	}
	if !b.Payload.Amount.IsZero() {
		dto.Amount = b.Payload.Amount.String()
	}
	return dto
}

func toBillDTOs(bills billing.Collection) []BillDTO {
	dtos := make([]BillDTO, len(bills))
	for i, b := range bills {
		dtos[i] = toBillDTO(b)
	}
	return dtos
}

func toDueBillDTOs(entries []billing.ScanEntry) []DueBillDTO {
	dtos := make([]DueBillDTO, len(entries))
	for i, e := range entries {
		dtos[i] = DueBillDTO{
			Bill:         toBillDTO(e.Bill),
			Urgency:      string(e.Urgency),
			DaysUntilDue: e.DaysUntilDue,
		}
	}
	return dtos
}

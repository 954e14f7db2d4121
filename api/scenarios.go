/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Provides pre-built bill collections that populate the store with
  realistic data for demos and manual testing. Each scenario replaces the
  whole collection.

AVAILABLE SCENARIOS:
  starter-household:  A typical mixed household bill set
  overdue-mix:        Bills spread across every urgency level
  cycle-showcase:     One bill per billing cycle, including month-end
                      dates that exercise clamping

NOTE:
  Scenarios replace all stored bills. Only use in development/demo
  environments.

SEE ALSO:
  - handlers.go: shares the Handler dependencies
  - factory/bill.go: scenario bills go through normal validation
*/
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/warp/bill-engine/billing"
	"github.com/warp/bill-engine/factory"
)

// ScenarioDTO describes a loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

var scenarios = []ScenarioDTO{
	{
		ID:          "starter-household",
		Name:        "Starter Household",
		Description: "A typical mixed bill set: rent, utilities, subscriptions, annual insurance",
	},
	{
		ID:          "overdue-mix",
		Name:        "Overdue Mix",
		Description: "Bills at every urgency level relative to today",
	},
	{
		ID:          "cycle-showcase",
		Name:        "Cycle Showcase",
		Description: "One bill per billing cycle, with month-end due dates that exercise clamping",
	},
}

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"scenarios": scenarios})
}

// LoadScenario replaces the stored collection with a scenario's bills.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var body LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	defs, ok := scenarioBills(body.ScenarioID, h.today())
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown scenario: "+body.ScenarioID, nil)
		return
	}

	var bills billing.Collection
	for _, def := range defs {
		bill, err := h.Factory.FromJSON(def)
		if err != nil {
			writeError(w, http.StatusInternalServerError,
				fmt.Sprintf("Scenario bill %q is invalid", def.Name), err)
			return
		}
		bills = append(bills, bill)
	}

	if err := h.Store.ReplaceAll(r.Context(), bills); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	slog.Info("scenario loaded", "scenario", body.ScenarioID, "bills", len(bills))
	writeJSON(w, http.StatusOK, map[string]any{
		"scenario": body.ScenarioID,
		"bills":    toBillDTOs(bills),
	})
}

func scenarioBills(id string, today billing.Date) ([]factory.BillJSON, bool) {
	reminder := func(days int) *int { return &days }
	due := func(offsetDays int) string { return today.AddDays(offsetDays).String() }

	switch id {
	case "starter-household":
		return []factory.BillJSON{
			{SchemaVersion: 2, Name: "Rent", DueDate: due(12), BillingCycle: "monthly", ReminderDays: reminder(14), Category: "Housing", PaymentMethod: "Bank Transfer", Amount: "1450.00"},
			{SchemaVersion: 2, Name: "Electric", DueDate: due(6), BillingCycle: "monthly", ReminderDays: reminder(7), Category: "Utilities", PaymentMethod: "Auto-Pay", Amount: "86.20"},
			{SchemaVersion: 2, Name: "Water", DueDate: due(20), BillingCycle: "quarterly", ReminderDays: reminder(10), Category: "Utilities", Amount: "104.50"},
			{SchemaVersion: 2, Name: "Internet", DueDate: due(3), BillingCycle: "monthly", ReminderDays: reminder(7), Category: "Utilities", PaymentMethod: "Credit Card", Amount: "59.99", WebPage: "https://isp.example.com"},
			{SchemaVersion: 2, Name: "Car Insurance", DueDate: due(45), BillingCycle: "semiannual", ReminderDays: reminder(21), Category: "Insurance", Amount: "412.00"},
			{SchemaVersion: 2, Name: "Streaming", DueDate: due(9), BillingCycle: "monthly", ReminderDays: reminder(3), Category: "Entertainment", Amount: "15.49"},
			{SchemaVersion: 2, Name: "Property Tax", DueDate: due(80), BillingCycle: "annual", ReminderDays: reminder(30), Category: "Taxes", Amount: "2310.00"},
		}, true

	case "overdue-mix":
		return []factory.BillJSON{
			{SchemaVersion: 2, Name: "Forgotten Gym", DueDate: due(-12), BillingCycle: "monthly", ReminderDays: reminder(7), Category: "Health", Amount: "35.00"},
			{SchemaVersion: 2, Name: "Phone", DueDate: due(0), BillingCycle: "monthly", ReminderDays: reminder(7), Category: "Utilities", Amount: "45.00"},
			{SchemaVersion: 2, Name: "Trash Pickup", DueDate: due(2), BillingCycle: "monthly", ReminderDays: reminder(7), Category: "Utilities", Amount: "28.75"},
			{SchemaVersion: 2, Name: "HOA Dues", DueDate: due(6), BillingCycle: "monthly", ReminderDays: reminder(7), Category: "Housing", Amount: "220.00"},
			{SchemaVersion: 2, Name: "Umbrella Policy", DueDate: due(120), BillingCycle: "annual", ReminderDays: reminder(14), Category: "Insurance", Amount: "380.00"},
		}, true

	case "cycle-showcase":
		// Month-end anchor dates so repeated payments exercise clamping.
		return []factory.BillJSON{
			{SchemaVersion: 2, Name: "Weekly Cleaner", DueDate: due(4), BillingCycle: "weekly", ReminderDays: reminder(2), Amount: "60.00"},
			{SchemaVersion: 2, Name: "Biweekly Lawn", DueDate: due(8), BillingCycle: "biweekly", ReminderDays: reminder(3), Amount: "40.00"},
			{SchemaVersion: 2, Name: "Month-End Card", DueDate: endOfMonth(today), BillingCycle: "monthly", ReminderDays: reminder(7), Amount: "310.22"},
			{SchemaVersion: 2, Name: "Quarterly Pest Control", DueDate: endOfMonth(today), BillingCycle: "quarterly", ReminderDays: reminder(10), Amount: "95.00"},
			{SchemaVersion: 2, Name: "Semiannual Dental", DueDate: due(60), BillingCycle: "semiannual", ReminderDays: reminder(14), Amount: "180.00"},
			{SchemaVersion: 2, Name: "Annual Domain", DueDate: due(200), BillingCycle: "annual", ReminderDays: reminder(14), Amount: "12.99"},
			{SchemaVersion: 2, Name: "Passport Renewal", DueDate: due(300), BillingCycle: "one_time", ReminderDays: reminder(30), Amount: "130.00"},
		}, true
	}
	return nil, false
}

func endOfMonth(d billing.Date) string {
	firstOfNext := billing.NewDate(d.Year(), d.Month()+1, 1)
	return firstOfNext.AddDays(-1).String()
}

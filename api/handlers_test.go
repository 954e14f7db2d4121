/*
handlers_test.go - Unit tests for API handlers

Tests for:
- Bill CRUD (create, get, update, delete, duplicate names)
- Due-bill scan (per-bill reminder windows and ?days= fixed window)
- Payment lifecycle (pay, retire, terminal rejection)
- Batch payment (all-or-nothing apply and failure reporting)
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/bill-engine/billing"
	"github.com/warp/bill-engine/store"
	"github.com/warp/bill-engine/factory"
)

// testToday is the pinned reference date for every test.
var testToday = billing.NewDate(2025, time.March, 15)

func newTestRouter(t *testing.T) (http.Handler, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	h := NewHandler(mem)
	h.Now = func() billing.Date { return testToday }
	return NewRouter(h, NewMetrics()), mem
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func billBody(name, dueDate, cycle string, reminderDays int) factory.BillJSON {
	return factory.BillJSON{
		SchemaVersion: factory.CurrentSchemaVersion,
		Name:          name,
		DueDate:       dueDate,
		BillingCycle:  cycle,
		ReminderDays:  &reminderDays,
		Amount:        "42.50",
	}
}

// =============================================================================
// BILL CRUD
// =============================================================================

func TestCreateBill_AndGet(t *testing.T) {
	router, _ := newTestRouter(t)

	// WHEN: Creating a bill
	rec := doJSON(t, router, http.MethodPost, "/api/bills/", billBody("Electric", "2025-03-20", "monthly", 7))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decodeBody[BillDTO](t, rec)
	assert.NotEmpty(t, created.ID, "server assigns identity")
	assert.Equal(t, "Electric", created.Name)
	assert.Equal(t, "monthly", created.BillingCycle)
	assert.False(t, created.Paid)

	// THEN: It is retrievable by its assigned ID
	rec = doJSON(t, router, http.MethodGet, "/api/bills/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fetched := decodeBody[BillDTO](t, rec)
	assert.Equal(t, created, fetched)
}

func TestCreateBill_ClientIDIgnored(t *testing.T) {
	router, _ := newTestRouter(t)

	body := billBody("Water", "2025-04-01", "quarterly", 10)
	body.ID = "client-chosen-id"

	rec := doJSON(t, router, http.MethodPost, "/api/bills/", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decodeBody[BillDTO](t, rec)
	assert.NotEqual(t, "client-chosen-id", created.ID)
}

func TestCreateBill_Invalid(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name string
		body factory.BillJSON
	}{
		{"empty name", billBody("", "2025-03-20", "monthly", 7)},
		{"bad due date", billBody("X", "2025-02-30", "monthly", 7)},
		{"unknown cycle", billBody("X", "2025-03-20", "fortnightly", 7)},
		{"reminder out of range", billBody("X", "2025-03-20", "monthly", 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/bills/", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateBill_DuplicateName(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/bills/", billBody("Rent", "2025-03-20", "monthly", 7))
	require.Equal(t, http.StatusCreated, rec.Code)

	// Same name, different case, still a conflict
	rec = doJSON(t, router, http.MethodPost, "/api/bills/", billBody("RENT", "2025-04-01", "monthly", 7))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateBill(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/bills/", billBody("Internet", "2025-03-20", "monthly", 7))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[BillDTO](t, rec)

	// WHEN: Updating the reminder window
	rec = doJSON(t, router, http.MethodPut, "/api/bills/"+created.ID,
		billBody("Internet", "2025-03-20", "monthly", 14))
	require.Equal(t, http.StatusOK, rec.Code)

	updated := decodeBody[BillDTO](t, rec)
	assert.Equal(t, created.ID, updated.ID, "URL wins over body for identity")
	assert.Equal(t, 14, updated.ReminderDays)
}

func TestUpdateBill_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/api/bills/no-such-id",
		billBody("Ghost", "2025-03-20", "monthly", 7))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteBill(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/bills/", billBody("Gym", "2025-03-20", "monthly", 7))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[BillDTO](t, rec)

	rec = doJSON(t, router, http.MethodDelete, "/api/bills/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/bills/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/bills/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListBills_OrderedByDueDate(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, b := range []factory.BillJSON{
		billBody("Zeta", "2025-03-18", "monthly", 7),
		billBody("Alpha", "2025-03-25", "monthly", 7),
		billBody("Beta", "2025-03-18", "monthly", 7),
	} {
		rec := doJSON(t, router, http.MethodPost, "/api/bills/", b)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/bills/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[struct {
		Bills []BillDTO `json:"bills"`
	}](t, rec)
	require.Len(t, resp.Bills, 3)
	assert.Equal(t, "Beta", resp.Bills[0].Name)
	assert.Equal(t, "Zeta", resp.Bills[1].Name)
	assert.Equal(t, "Alpha", resp.Bills[2].Name)
}

// =============================================================================
// DUE SCAN
// =============================================================================

type dueResponse struct {
	AsOf     string       `json:"as_of"`
	DueBills []DueBillDTO `json:"due_bills"`
}

func TestListDueBills_PerBillWindows(t *testing.T) {
	// GIVEN: Bills with different reminder windows around the pinned date
	router, _ := newTestRouter(t)

	for _, b := range []factory.BillJSON{
		billBody("Overdue", "2025-03-10", "monthly", 7),    // 5 days late
		billBody("Today", "2025-03-15", "monthly", 7),      // due today
		billBody("Soon", "2025-03-17", "monthly", 7),       // in 2 days
		billBody("Inside", "2025-03-21", "monthly", 7),     // in 6 days, window 7
		billBody("Outside", "2025-03-21", "monthly", 3),    // in 6 days, window 3
		billBody("Far", "2025-06-01", "monthly", 7),        // months out
	} {
		rec := doJSON(t, router, http.MethodPost, "/api/bills/", b)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	// WHEN: Scanning with each bill's own reminder window
	rec := doJSON(t, router, http.MethodGet, "/api/bills/due", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[dueResponse](t, rec)

	// THEN: Only bills inside their own window appear, ordered by due date
	assert.Equal(t, "2025-03-15", resp.AsOf)
	require.Len(t, resp.DueBills, 4)
	assert.Equal(t, "Overdue", resp.DueBills[0].Bill.Name)
	assert.Equal(t, string(billing.UrgencyOverdue), resp.DueBills[0].Urgency)
	assert.Equal(t, -5, resp.DueBills[0].DaysUntilDue)
	assert.Equal(t, "Today", resp.DueBills[1].Bill.Name)
	assert.Equal(t, string(billing.UrgencyDueToday), resp.DueBills[1].Urgency)
	assert.Equal(t, "Soon", resp.DueBills[2].Bill.Name)
	assert.Equal(t, string(billing.UrgencyDueSoon), resp.DueBills[2].Urgency)
	assert.Equal(t, "Inside", resp.DueBills[3].Bill.Name)
	assert.Equal(t, string(billing.UrgencyUpcoming), resp.DueBills[3].Urgency)
}

func TestListDueBills_FixedWindowOverride(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, b := range []factory.BillJSON{
		billBody("Short", "2025-03-21", "monthly", 3), // outside its own 3-day window
		billBody("Long", "2025-03-30", "monthly", 30), // inside its own 30-day window
	} {
		rec := doJSON(t, router, http.MethodPost, "/api/bills/", b)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	// WHEN: Forcing a 10-day window for this scan
	rec := doJSON(t, router, http.MethodGet, "/api/bills/due?days=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[dueResponse](t, rec)

	// THEN: The fixed window overrides every bill's own setting
	require.Len(t, resp.DueBills, 1)
	assert.Equal(t, "Short", resp.DueBills[0].Bill.Name)
}

func TestListDueBills_BadDaysParam(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, q := range []string{"days=abc", "days=-1"} {
		rec := doJSON(t, router, http.MethodGet, "/api/bills/due?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

// =============================================================================
// PAYMENT LIFECYCLE
// =============================================================================

func TestPayBill_RecurringAdvances(t *testing.T) {
	// GIVEN: A monthly bill anchored to a month-end date
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/bills/", billBody("Card", "2025-01-31", "monthly", 7))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[BillDTO](t, rec)

	// WHEN: Paying it
	rec = doJSON(t, router, http.MethodPost, "/api/bills/"+created.ID+"/pay", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// THEN: Same record, due date clamped forward, still unpaid
	paid := decodeBody[BillDTO](t, rec)
	assert.Equal(t, created.ID, paid.ID)
	assert.Equal(t, "2025-02-28", paid.DueDate)
	assert.False(t, paid.Paid)
}

func TestPayBill_OneTimeBecomesTerminal(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/bills/", billBody("Passport", "2025-04-01", "one_time", 14))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[BillDTO](t, rec)

	// First payment settles it
	rec = doJSON(t, router, http.MethodPost, "/api/bills/"+created.ID+"/pay", PayBillRequest{Operation: "pay"})
	require.Equal(t, http.StatusOK, rec.Code)
	paid := decodeBody[BillDTO](t, rec)
	assert.True(t, paid.Paid)
	assert.Equal(t, "2025-04-01", paid.DueDate, "due date does not move for one-time bills")

	// Second payment is rejected
	rec = doJSON(t, router, http.MethodPost, "/api/bills/"+created.ID+"/pay", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPayBill_Retire(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/bills/", billBody("Old Sub", "2025-03-20", "monthly", 7))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[BillDTO](t, rec)

	rec = doJSON(t, router, http.MethodPost, "/api/bills/"+created.ID+"/pay", PayBillRequest{Operation: "retire"})
	require.Equal(t, http.StatusOK, rec.Code)

	retired := decodeBody[BillDTO](t, rec)
	assert.True(t, retired.Paid)
	assert.Equal(t, created.DueDate, retired.DueDate, "retiring never moves the due date")

	// Retired bills no longer show up in scans
	rec = doJSON(t, router, http.MethodGet, "/api/bills/due", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[dueResponse](t, rec)
	assert.Empty(t, resp.DueBills)
}

func TestPayBill_UnknownOperation(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/bills/", billBody("X", "2025-03-20", "monthly", 7))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[BillDTO](t, rec)

	rec = doJSON(t, router, http.MethodPost, "/api/bills/"+created.ID+"/pay", PayBillRequest{Operation: "refund"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPayBill_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/bills/no-such-id/pay", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// BATCH PAYMENT
// =============================================================================

func TestBatchPay_Success(t *testing.T) {
	router, _ := newTestRouter(t)

	var ids []string
	for _, b := range []factory.BillJSON{
		billBody("A", "2025-01-31", "monthly", 7),
		billBody("B", "2025-03-20", "weekly", 3),
	} {
		rec := doJSON(t, router, http.MethodPost, "/api/bills/", b)
		require.Equal(t, http.StatusCreated, rec.Code)
		ids = append(ids, decodeBody[BillDTO](t, rec).ID)
	}

	rec := doJSON(t, router, http.MethodPost, "/api/payments/batch", BatchPayRequest{BillIDs: ids})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeBody[struct {
		Bills []BillDTO `json:"bills"`
	}](t, rec)
	require.Len(t, resp.Bills, 2)

	byName := map[string]BillDTO{}
	for _, b := range resp.Bills {
		byName[b.Name] = b
	}
	assert.Equal(t, "2025-02-28", byName["A"].DueDate)
	assert.Equal(t, "2025-03-27", byName["B"].DueDate)
}

func TestBatchPay_AllOrNothing(t *testing.T) {
	// GIVEN: One payable bill and one already-terminal bill
	router, mem := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/bills/", billBody("Payable", "2025-03-20", "monthly", 7))
	require.Equal(t, http.StatusCreated, rec.Code)
	payable := decodeBody[BillDTO](t, rec)

	rec = doJSON(t, router, http.MethodPost, "/api/bills/", billBody("Settled", "2025-04-01", "one_time", 7))
	require.Equal(t, http.StatusCreated, rec.Code)
	settled := decodeBody[BillDTO](t, rec)
	rec = doJSON(t, router, http.MethodPost, "/api/bills/"+settled.ID+"/pay", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// WHEN: Batching both
	rec = doJSON(t, router, http.MethodPost, "/api/payments/batch",
		BatchPayRequest{BillIDs: []string{payable.ID, settled.ID}})

	// THEN: The whole batch is rejected with a per-bill failure report
	require.Equal(t, http.StatusConflict, rec.Code)
	errResp := decodeBody[ErrorResponse](t, rec)
	require.Len(t, errResp.Failures, 1)
	assert.Equal(t, settled.ID, errResp.Failures[0].BillID)

	// And the payable bill was not touched
	bills, err := mem.List(context.Background())
	require.NoError(t, err)
	i := bills.FindByID(billing.BillID(payable.ID))
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, "2025-03-20", bills[i].DueDate.String())
}

func TestBatchPay_Validation(t *testing.T) {
	router, _ := newTestRouter(t)

	// Empty intent list
	rec := doJSON(t, router, http.MethodPost, "/api/payments/batch", BatchPayRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown bill fails at staging
	rec = doJSON(t, router, http.MethodPost, "/api/payments/batch",
		BatchPayRequest{BillIDs: []string{"no-such-id"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// SCENARIOS AND PLUMBING
// =============================================================================

func TestScenarios_ListAndLoad(t *testing.T) {
	router, mem := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/scenarios/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decodeBody[struct {
		Scenarios []ScenarioDTO `json:"scenarios"`
	}](t, rec)
	require.NotEmpty(t, listed.Scenarios)

	rec = doJSON(t, router, http.MethodPost, "/api/scenarios/load",
		LoadScenarioRequest{ScenarioID: listed.Scenarios[0].ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	bills, err := mem.List(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, bills)
}

func TestScenarios_Unknown(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/scenarios/load",
		LoadScenarioRequest{ScenarioID: "no-such-scenario"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	// Generate one request, then scrape
	rec := doJSON(t, router, http.MethodGet, "/api/bills/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bills_http_requests_total")
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

/*
handlers.go - HTTP handlers for the bill engine

PURPOSE:
  Connects HTTP requests to the billing engine and the store. Handlers do
  transport concerns only: decode, delegate, encode. All date arithmetic
  and lifecycle decisions live in the billing package.

CLOCK INJECTION:
  The engine takes "today" explicitly. The handler owns a Now function so
  tests can pin the reference date; production wiring uses billing.Today.

ERROR MAPPING:
  billing.IsClientError  -> 4xx with the engine's message
  everything else        -> 500

SEE ALSO:
  - server.go: route wiring
  - dto.go: request/response types
*/
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/warp/bill-engine/billing"
	"github.com/warp/bill-engine/factory"
)

// Handler holds the dependencies for all API endpoints.
type Handler struct {
	Store   billing.Store
	Factory *factory.BillFactory

	// Now supplies the reference date for scans and defaults to
	// billing.Today. Tests override it.
	Now func() billing.Date
}

// NewHandler creates a handler with production defaults.
func NewHandler(store billing.Store) *Handler {
	return &Handler{
		Store:   store,
		Factory: factory.NewBillFactory(),
		Now:     billing.Today,
	}
}

func (h *Handler) today() billing.Date {
	if h.Now != nil {
		return h.Now()
	}
	return billing.Today()
}

// =============================================================================
// BILL CRUD
// =============================================================================

// ListBills returns the whole collection, ordered by due date then name.
func (h *Handler) ListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := h.Store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bills", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bills": toBillDTOs(bills)})
}

// GetBill returns a single bill.
func (h *Handler) GetBill(w http.ResponseWriter, r *http.Request) {
	id := billing.BillID(chi.URLParam(r, "id"))

	bill, err := h.Store.Get(r.Context(), id)
	if billing.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "Bill not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get bill", err)
		return
	}
	writeJSON(w, http.StatusOK, toBillDTO(bill))
}

// CreateBill validates and stores a new bill.
func (h *Handler) CreateBill(w http.ResponseWriter, r *http.Request) {
	var body factory.BillJSON
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	body.ID = "" // identity is assigned here, never by the client

	bill, err := h.Factory.FromJSON(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid bill", err)
		return
	}

	if err := h.Store.Insert(r.Context(), bill); err != nil {
		if errors.Is(err, billing.ErrDuplicateName) {
			writeError(w, http.StatusConflict, "A bill with this name already exists", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create bill", err)
		return
	}

	slog.Info("bill created", "bill_id", bill.ID, "name", bill.Name, "cycle", bill.Cycle)
	writeJSON(w, http.StatusCreated, toBillDTO(bill))
}

// UpdateBill replaces an existing bill wholesale (explicit edit, not a
// lifecycle transition).
func (h *Handler) UpdateBill(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body factory.BillJSON
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	body.ID = id

	bill, err := h.Factory.FromJSON(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid bill", err)
		return
	}

	if err := h.Store.Update(r.Context(), bill); err != nil {
		switch {
		case billing.IsNotFound(err):
			writeError(w, http.StatusNotFound, "Bill not found", nil)
		case errors.Is(err, billing.ErrDuplicateName):
			writeError(w, http.StatusConflict, "A bill with this name already exists", err)
		default:
			writeError(w, http.StatusInternalServerError, "Failed to update bill", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, toBillDTO(bill))
}

// DeleteBill removes a bill.
func (h *Handler) DeleteBill(w http.ResponseWriter, r *http.Request) {
	id := billing.BillID(chi.URLParam(r, "id"))

	if err := h.Store.Delete(r.Context(), id); err != nil {
		if billing.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Bill not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete bill", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// DUE SCAN
// =============================================================================

// ListDueBills runs a due-bill scan. Without a query parameter each bill
// is judged by its own reminder window; ?days=N switches to a fixed
// window that overrides every bill's setting for this scan only.
func (h *Handler) ListDueBills(w http.ResponseWriter, r *http.Request) {
	bills, err := h.Store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bills", err)
		return
	}

	today := h.today()

	var entries []billing.ScanEntry
	if raw := r.URL.Query().Get("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 0 {
			writeError(w, http.StatusBadRequest, "days must be a non-negative integer", err)
			return
		}
		entries = billing.ScanWindow(bills, today, days)
	} else {
		entries = billing.ScanPerBill(bills, today)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"as_of":     today.String(),
		"due_bills": toDueBillDTOs(entries),
	})
}

// =============================================================================
// PAYMENT LIFECYCLE
// =============================================================================

// PayBill applies a single payment (or permanent retirement) to one bill.
func (h *Handler) PayBill(w http.ResponseWriter, r *http.Request) {
	id := billing.BillID(chi.URLParam(r, "id"))

	var body PayBillRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	bill, err := h.Store.Get(r.Context(), id)
	if billing.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "Bill not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get bill", err)
		return
	}

	var updated billing.BillRecord
	switch body.Operation {
	case "", "pay":
		updated, err = billing.Pay(bill)
	case "retire":
		updated, err = billing.Retire(bill)
	default:
		writeError(w, http.StatusBadRequest, "Unknown operation (use \"pay\" or \"retire\")", nil)
		return
	}
	if err != nil {
		if billing.IsClientError(err) {
			writeError(w, http.StatusConflict, "Payment rejected", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to pay bill", err)
		return
	}

	if err := h.Store.Update(r.Context(), updated); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist payment", err)
		return
	}

	slog.Info("bill paid", "bill_id", updated.ID, "operation", body.Operation,
		"next_due", updated.DueDate, "paid", updated.Paid)
	writeJSON(w, http.StatusOK, toBillDTO(updated))
}

// BatchPay stages pay intents for every listed bill and applies them as
// one all-or-nothing batch, committed with a single atomic collection
// replace.
func (h *Handler) BatchPay(w http.ResponseWriter, r *http.Request) {
	var body BatchPayRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(body.BillIDs) == 0 {
		writeError(w, http.StatusBadRequest, "bill_ids must not be empty", nil)
		return
	}

	bills, err := h.Store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bills", err)
		return
	}

	batch := billing.NewPaymentBatch(bills)
	for _, raw := range body.BillIDs {
		if err := batch.Stage(billing.BillID(raw)); err != nil {
			writeError(w, http.StatusBadRequest, "Cannot stage bill "+raw, err)
			return
		}
	}

	result, err := batch.Apply()
	if err != nil {
		var batchErr *billing.BatchError
		if errors.As(err, &batchErr) {
			resp := ErrorResponse{Error: "Payment batch rejected", Details: batchErr.Error()}
			for _, f := range batchErr.Failures {
				resp.Failures = append(resp.Failures, BatchFailureDTO{
					BillID: string(f.BillID),
					Reason: f.Err.Error(),
				})
			}
			writeJSON(w, http.StatusConflict, resp)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to apply batch", err)
		return
	}

	if err := h.Store.ReplaceAll(r.Context(), result); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to commit batch", err)
		return
	}

	slog.Info("payment batch committed", "intents", len(body.BillIDs))
	writeJSON(w, http.StatusOK, map[string]any{"bills": toBillDTOs(result)})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

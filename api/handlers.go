/*
handlers.go - HTTP handlers for the point API

PURPOSE:
  Exposes the ledger engine over REST. Handlers parse and validate the
  raw request, delegate to the engine, and serialize the outcome.

ENDPOINTS:
  GET   /point/{id}           Current balance (implicit zero if unknown)
  GET   /point/{id}/histories Transaction history, timeMillis ascending
  PATCH /point/{id}/charge    Credit points; body is a bare integer literal
  PATCH /point/{id}/use       Debit points; body is a bare integer literal

REQUEST FLOW:
  1. Parse path id / body amount
  2. Delegate to point.Service
  3. 200 with the entity on success, coded error payload otherwise

VALIDATION:
  Malformed inputs (non-integer path segment, non-integer body) are
  rejected here with P006 and never reach the engine. Semantic
  validation (positive ids and amounts, balance invariants) lives in
  the engine so every transport shares it.

SEE ALSO:
  - dto.go: response helpers and status mapping
  - server.go: router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kimdoha/point-system/point"
)

// Handler holds the handler dependencies.
type Handler struct {
	Service *point.Service
}

// NewHandler creates a handler over the given engine.
func NewHandler(service *point.Service) *Handler {
	return &Handler{Service: service}
}

// GetPoint returns the user's current balance record.
func (h *Handler) GetPoint(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	record, err := h.Service.GetPoint(r.Context(), userID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// GetHistories returns the user's transaction history, oldest first.
func (h *Handler) GetHistories(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	histories, err := h.Service.GetHistories(r.Context(), userID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, histories)
}

// Charge credits points to the user.
func (h *Handler) Charge(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}
	amount, ok := parseAmount(w, r)
	if !ok {
		return
	}

	record, err := h.Service.Charge(r.Context(), userID, amount)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// Use debits points from the user.
func (h *Handler) Use(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}
	amount, ok := parseAmount(w, r)
	if !ok {
		return
	}

	record, err := h.Service.Use(r.Context(), userID, amount)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// =============================================================================
// INPUT PARSING
// =============================================================================

// parseUserID reads the {id} path segment. On failure it writes a P006
// response and returns ok=false.
func parseUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeValidationError(w, point.CodeValidationFailed, "user id must be an integer")
		return 0, false
	}
	return userID, true
}

// parseAmount reads the request body, a bare JSON integer literal.
func parseAmount(w http.ResponseWriter, r *http.Request) (int64, bool) {
	var amount int64
	if err := json.NewDecoder(r.Body).Decode(&amount); err != nil {
		writeValidationError(w, point.CodeValidationFailed, "request body must be an integer")
		return 0, false
	}
	return amount, true
}

// Package httpapi provides the HTTP API for the procurement service.
package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/seamonger/procurement/internal/domain"
	"github.com/seamonger/procurement/internal/poller"
	"github.com/seamonger/procurement/internal/procurement"
	"github.com/seamonger/procurement/internal/store"
)

const defaultMessageLimit = 100

// Handler holds all dependencies for the HTTP handlers.
type Handler struct {
	Orchestrator *procurement.Orchestrator
	Directory    domain.Directory
	Poller       *poller.Poller
	DB           *sql.DB
	JournalRepo  *store.JournalRepo
}

// RegisterSupplierRequest is the body for POST /api/v1/suppliers.
type RegisterSupplierRequest struct {
	SupplierID string   `json:"supplier_id"`
	Specialty  string   `json:"specialty"`
	TrustScore *float64 `json:"trust_score,omitempty"`
}

// StatusResponse is a bare acknowledgement.
type StatusResponse struct {
	Status string `json:"status"`
}

// APIError is a structured error response.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// RegisterSupplier handles POST /api/v1/suppliers. The supplier is saved to the
// directory and routed under its specialty.
func (h *Handler) RegisterSupplier(w http.ResponseWriter, r *http.Request) {
	var req RegisterSupplierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIError{Code: domain.ErrInvalidPayload.Code, Message: "invalid request body"})
		return
	}
	req.SupplierID = strings.TrimSpace(req.SupplierID)
	if req.SupplierID == "" || strings.TrimSpace(req.Specialty) == "" {
		writeJSON(w, http.StatusBadRequest, APIError{Code: domain.ErrInvalidPayload.Code, Message: "supplier_id and specialty are required"})
		return
	}

	trust := domain.DefaultTrustScore
	if req.TrustScore != nil {
		trust = *req.TrustScore
	}
	s := domain.Supplier{ID: req.SupplierID, Specialty: req.Specialty, TrustScore: trust}
	if err := h.Directory.Upsert(r.Context(), s); err != nil {
		writeError(w, err)
		return
	}
	h.Orchestrator.Register(req.Specialty, req.SupplierID)

	writeJSON(w, http.StatusOK, StatusResponse{Status: "saved"})
}

// ListSuppliers handles GET /api/v1/suppliers.
func (h *Handler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.Directory.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if suppliers == nil {
		suppliers = []domain.Supplier{}
	}
	writeJSON(w, http.StatusOK, suppliers)
}

// IngestMessage handles POST /api/v1/webhooks/whatsapp. Messages from the founder
// go to the emergency-stop path; everything else is a supplier reply.
func (h *Handler) IngestMessage(w http.ResponseWriter, r *http.Request) {
	var in domain.IncomingMessage
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, APIError{Code: domain.ErrInvalidPayload.Code, Message: "invalid request body"})
		return
	}
	if in.From == "" {
		writeJSON(w, http.StatusBadRequest, APIError{Code: domain.ErrInvalidPayload.Code, Message: "from_phone is required"})
		return
	}

	if h.Orchestrator.IsFounder(in.From) {
		writeJSON(w, http.StatusOK, h.Orchestrator.HandleFounderMessage(r.Context(), in))
		return
	}

	out, err := h.Orchestrator.HandleSupplierMessage(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Poll handles POST /api/v1/poll by running one order cycle immediately.
func (h *Handler) Poll(w http.ResponseWriter, r *http.Request) {
	res, err := h.Poller.RunOnce(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// State handles GET /api/v1/state.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Orchestrator.Snapshot())
}

// ListMessages handles GET /api/v1/messages. With supplier_id it returns that
// supplier's journal oldest first; otherwise the most recent entries.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	var (
		entries []domain.JournalEntry
		err     error
	)
	if id := r.URL.Query().Get("supplier_id"); id != "" {
		entries, err = h.JournalRepo.ListBySupplier(r.Context(), h.DB, id)
	} else {
		limit := defaultMessageLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, convErr := strconv.Atoi(v)
			if convErr != nil || n <= 0 {
				writeJSON(w, http.StatusBadRequest, APIError{Code: domain.ErrInvalidPayload.Code, Message: "limit must be a positive integer"})
				return
			}
			limit = n
		}
		entries, err = h.JournalRepo.ListRecent(r.Context(), h.DB, limit)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.JournalEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		status := http.StatusInternalServerError
		switch de.Code {
		case domain.ErrSupplierNotFound.Code:
			status = http.StatusNotFound
		case domain.ErrInvalidPayload.Code, domain.ErrInvalidSupplier.Code:
			status = http.StatusBadRequest
		case domain.ErrOrderSourceFailed.Code, domain.ErrTransportFailed.Code, domain.ErrInvalidResponse.Code:
			status = http.StatusBadGateway
		}
		writeJSON(w, status, APIError{Code: de.Code, Message: de.Message})
		return
	}
	writeJSON(w, http.StatusInternalServerError, APIError{Code: -1, Message: err.Error()})
}

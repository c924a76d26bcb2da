package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/albertosilva007/triagem-platform/internal/records"
	"github.com/albertosilva007/triagem-platform/pkg/logging"
)

// RecordLister reads persisted triage records for clinical review.
type RecordLister interface {
	ListRecent(ctx context.Context, limit int) ([]records.StoredRecord, error)
	ListByNationalID(ctx context.Context, nationalID string, limit int) ([]records.StoredRecord, error)
}

// AdminRecordsHandler exposes triage records to the clinical review UI.
type AdminRecordsHandler struct {
	store  RecordLister
	logger *logging.Logger
}

// NewAdminRecordsHandler creates a new admin records handler.
func NewAdminRecordsHandler(store RecordLister, logger *logging.Logger) *AdminRecordsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminRecordsHandler{
		store:  store,
		logger: logger,
	}
}

// RecordsListResponse wraps a list of triage records.
type RecordsListResponse struct {
	Records []records.StoredRecord `json:"records"`
	Total   int                    `json:"total"`
}

// ListRecent returns the most recent triage records.
// GET /admin/records?limit=50
func (h *AdminRecordsHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"))

	recs, err := h.store.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list records", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if recs == nil {
		recs = []records.StoredRecord{}
	}

	writeJSON(w, http.StatusOK, RecordsListResponse{Records: recs, Total: len(recs)})
}

// ListByPatient returns the triage history of one patient.
// GET /admin/records/patients/{nationalID}?limit=50
func (h *AdminRecordsHandler) ListByPatient(w http.ResponseWriter, r *http.Request) {
	nationalID := strings.TrimSpace(chi.URLParam(r, "nationalID"))
	if nationalID == "" {
		jsonError(w, "missing nationalID", http.StatusBadRequest)
		return
	}

	limit := parseLimit(r.URL.Query().Get("limit"))

	recs, err := h.store.ListByNationalID(r.Context(), nationalID, limit)
	if err != nil {
		h.logger.Error("failed to list patient records", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if recs == nil {
		recs = []records.StoredRecord{}
	}

	writeJSON(w, http.StatusOK, RecordsListResponse{Records: recs, Total: len(recs)})
}

func parseLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return limit
}

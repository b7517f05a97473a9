package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/hunterlabs/hunter/internal/contracts"
	"github.com/hunterlabs/hunter/pkg/logger"
)

// ReportStore is the read side of the report repository.
type ReportStore interface {
	LatestReport(ctx context.Context) (*contracts.ReportSummary, error)
	ReportNarratives(ctx context.Context, reportID int64) ([]contracts.Narrative, error)
}

// ReportsHandler serves persisted pipeline reports.
type ReportsHandler struct {
	repo   ReportStore
	logger *logger.Logger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(repo ReportStore, log *logger.Logger) *ReportsHandler {
	return &ReportsHandler{
		repo:   repo,
		logger: log,
	}
}

// GetLatest returns the most recent report summary.
// GET /api/reports/latest
func (h *ReportsHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	latest, err := h.repo.LatestReport(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load latest report")
		writeError(w, http.StatusInternalServerError, "failed to load latest report")
		return
	}
	if latest == nil {
		writeError(w, http.StatusNotFound, "no reports yet")
		return
	}

	writeJSON(w, http.StatusOK, latest)
}

// GetNarratives returns the narratives of one report.
// GET /api/reports/{id}/narratives
func (h *ReportsHandler) GetNarratives(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reportID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid report id")
		return
	}

	narratives, err := h.repo.ReportNarratives(ctx, reportID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load narratives")
		writeError(w, http.StatusInternalServerError, "failed to load narratives")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"report_id":  reportID,
		"narratives": narratives,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scaena/internal/interfaces"
)

// RunHandler serves persisted processing runs
type RunHandler struct {
	runs   interfaces.RunStorage
	logger arbor.ILogger
}

// NewRunHandler creates a new run handler
func NewRunHandler(runs interfaces.RunStorage, logger arbor.ILogger) *RunHandler {
	return &RunHandler{
		runs:   runs,
		logger: logger,
	}
}

// ListHandler returns a paginated list of runs.
// GET /api/runs?limit=&offset=&needs_review=
func (h *RunHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit <= 0 {
		limit = 20
	}
	offset, _ := strconv.Atoi(query.Get("offset"))
	if offset < 0 {
		offset = 0
	}
	needsReview, _ := strconv.ParseBool(query.Get("needs_review"))

	opts := &interfaces.RunListOptions{
		Limit:           limit,
		Offset:          offset,
		NeedsReviewOnly: needsReview,
	}

	ctx := r.Context()
	runs, err := h.runs.ListRuns(ctx, opts)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list runs")
		WriteError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}

	total, err := h.runs.CountRuns(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to count runs")
		WriteError(w, http.StatusInternalServerError, "Failed to count runs")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"runs":   runs,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// RunRoutes dispatches /api/runs/{id} by method.
// GET /api/runs/{id}, DELETE /api/runs/{id}
func (h *RunHandler) RunRoutes(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusNotFound, "Run not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		run, err := h.runs.GetRun(r.Context(), id)
		if err != nil {
			h.logger.Warn().Err(err).Str("run_id", id).Msg("Run lookup failed")
			WriteError(w, http.StatusNotFound, "Run not found")
			return
		}
		WriteJSON(w, http.StatusOK, run)

	case http.MethodDelete:
		if err := h.runs.DeleteRun(r.Context(), id); err != nil {
			h.logger.Error().Err(err).Str("run_id", id).Msg("Failed to delete run")
			WriteError(w, http.StatusInternalServerError, "Failed to delete run")
			return
		}
		WriteSuccess(w, "Run deleted")

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scaena/internal/interfaces"
)

// TimelineHandler serves the document-processing pipeline: it accepts an
// analysis result plus narration script and returns the generated run.
type TimelineHandler struct {
	pipeline interfaces.PipelineService
	validate *validator.Validate
	logger   arbor.ILogger
}

// NewTimelineHandler creates a new timeline handler
func NewTimelineHandler(pipeline interfaces.PipelineService, logger arbor.ILogger) *TimelineHandler {
	return &TimelineHandler{
		pipeline: pipeline,
		validate: validator.New(),
		logger:   logger,
	}
}

// ProcessHandler runs the pipeline for one document.
// POST /api/timeline
func (h *TimelineHandler) ProcessHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req interfaces.PipelineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to decode timeline request")
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		h.logger.Warn().Err(err).Msg("Timeline request failed validation")
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := h.pipeline.Process(r.Context(), &req)
	if err != nil {
		h.logger.Error().Err(err).Msg("Pipeline processing failed")
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, run)
}

// TaxonomyHandler returns the active section taxonomy.
// GET /api/taxonomy
func (h *TimelineHandler) TaxonomyHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sections": h.pipeline.Taxonomy(),
	})
}

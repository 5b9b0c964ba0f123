// Package handlers provides HTTP handlers for the aggregated breakdown.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aristath/basket/internal/services"
	"github.com/rs/zerolog"
)

// Handler handles report HTTP requests
type Handler struct {
	workspace *services.Workspace
	log       zerolog.Logger
}

// NewHandler creates a new report handler
func NewHandler(workspace *services.Workspace, log zerolog.Logger) *Handler {
	return &Handler{
		workspace: workspace,
		log:       log.With().Str("handler", "report").Logger(),
	}
}

// HandleReport handles GET /api/report
// Returns the ranked breakdown with display order and reorder state.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.workspace.Report())
}

// HandleConcentration handles GET /api/report/concentration
func (h *Handler) HandleConcentration(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.workspace.Concentration())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

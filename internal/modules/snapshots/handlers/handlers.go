// Package handlers provides HTTP handlers for view snapshot history.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/aristath/basket/internal/modules/snapshots"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles snapshot HTTP requests
type Handler struct {
	repo *snapshots.Repository
	log  zerolog.Logger
}

// NewHandler creates a new snapshots handler
func NewHandler(repo *snapshots.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "snapshots").Logger(),
	}
}

// HandleList handles GET /api/snapshots
// Returns snapshot metadata newest first; ?limit= caps the page size.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := snapshots.DefaultListLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	metas, err := h.repo.List(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list snapshots")
		h.writeError(w, http.StatusInternalServerError, "Failed to list snapshots")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"snapshots": metas,
		"count":     len(metas),
	})
}

// HandleGet handles GET /api/snapshots/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid snapshot id")
		return
	}

	view, err := h.repo.Get(id)
	if err != nil {
		h.log.Error().Err(err).Int64("id", id).Msg("Failed to load snapshot")
		h.writeError(w, http.StatusInternalServerError, "Failed to load snapshot")
		return
	}
	if view == nil {
		h.writeError(w, http.StatusNotFound, "Snapshot not found")
		return
	}

	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// Package handlers provides HTTP handlers for position cache operations.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/aristath/basket/internal/services"
	"github.com/rs/zerolog"
)

// Handler handles position HTTP requests
type Handler struct {
	workspace *services.Workspace
	log       zerolog.Logger
}

// NewHandler creates a new positions handler
func NewHandler(workspace *services.Workspace, log zerolog.Logger) *Handler {
	return &Handler{
		workspace: workspace,
		log:       log.With().Str("handler", "positions").Logger(),
	}
}

// HandleList handles GET /api/positions
// Returns the cached position rows with the import metadata.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	positionList, account := h.workspace.Positions()

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"positions": positionList,
		"count":     len(positionList),
		"account":   account,
	})
}

// HandleImport handles POST /api/positions/import
// The body is a raw brokerage export document.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	result, err := h.workspace.ImportRaw(data, "api")
	if err != nil {
		h.log.Warn().Err(err).Msg("Rejected export upload")
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleRescan handles POST /api/positions/rescan
// Scans the export directory now; 204 when nothing new was found.
func (h *Handler) HandleRescan(w http.ResponseWriter, r *http.Request) {
	path, result, err := h.workspace.RescanExports()
	if err != nil {
		h.log.Error().Err(err).Msg("Export rescan failed")
		h.writeError(w, http.StatusInternalServerError, "Rescan failed")
		return
	}

	if result == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.log.Info().Str("path", path).Msg("Imported export via rescan")
	h.writeJSON(w, http.StatusOK, result)
}

// HandleAccount handles GET /api/account
// 204 until an export has been imported.
func (h *Handler) HandleAccount(w http.ResponseWriter, r *http.Request) {
	_, account := h.workspace.Positions()
	if account == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.writeJSON(w, http.StatusOK, account)
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

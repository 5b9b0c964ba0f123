// Package handlers provides HTTP handlers for group and ticker management.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aristath/basket/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles group and manual-ticker HTTP requests
type Handler struct {
	workspace *services.Workspace
	log       zerolog.Logger
}

// NewHandler creates a new groups handler
func NewHandler(workspace *services.Workspace, log zerolog.Logger) *Handler {
	return &Handler{
		workspace: workspace,
		log:       log.With().Str("handler", "groups").Logger(),
	}
}

type createRequest struct {
	Name string `json:"name"`
}

type renameRequest struct {
	Name string `json:"name"`
}

// assignRequest moves a ticker. An empty or absent group_id sends the
// ticker to the unassigned pool.
type assignRequest struct {
	Ticker  string `json:"ticker"`
	GroupID string `json:"group_id"`
}

// addTickersRequest accepts tickers as a CSV string or a JSON array.
type addTickersRequest struct {
	Tickers json.RawMessage `json:"tickers"`
}

func (req *addTickersRequest) csv() string {
	if len(req.Tickers) == 0 {
		return ""
	}

	var raw string
	if err := json.Unmarshal(req.Tickers, &raw); err == nil {
		return raw
	}

	var list []string
	if err := json.Unmarshal(req.Tickers, &list); err == nil {
		return strings.Join(list, ",")
	}

	return ""
}

// HandleList handles GET /api/groups
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.workspace.Groups())
}

// HandleCreate handles POST /api/groups
// Blank names are dropped without an error, matching the engine contract.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	group := h.workspace.CreateGroup(req.Name)
	if group == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.writeJSON(w, http.StatusCreated, group)
}

// HandleRename handles PUT /api/groups/{id}
func (h *Handler) HandleRename(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.workspace.RenameGroup(id, req.Name)
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete handles DELETE /api/groups/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	h.workspace.DeleteGroup(id)
	w.WriteHeader(http.StatusNoContent)
}

// HandleAssign handles POST /api/groups/assign
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.workspace.Assign(req.Ticker, req.GroupID)
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddTickers handles POST /api/tickers
// Returns the tickers that were actually added after normalization.
func (h *Handler) HandleAddTickers(w http.ResponseWriter, r *http.Request) {
	var req addTickersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	added := h.workspace.AddTickers(req.csv())
	if added == nil {
		added = []string{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"added": added})
}

// HandleRemoveTicker handles DELETE /api/tickers/{ticker}
func (h *Handler) HandleRemoveTicker(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	h.workspace.RemoveFromWorkspace(ticker)
	w.WriteHeader(http.StatusNoContent)
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

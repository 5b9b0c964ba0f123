// Package handlers provides HTTP handlers for engine settings management.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/aristath/basket/internal/events"
	"github.com/aristath/basket/internal/modules/settings"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler provides HTTP handlers for settings endpoints
type Handler struct {
	repo *settings.Repository
	bus  *events.Bus
	log  zerolog.Logger
}

// NewHandler creates a new settings handler
func NewHandler(repo *settings.Repository, bus *events.Bus, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		bus:  bus,
		log:  log.With().Str("handler", "settings").Logger(),
	}
}

// settingInfo is one entry in the GET /api/settings response.
type settingInfo struct {
	Value       float64 `json:"value"`
	Default     float64 `json:"default"`
	Description string  `json:"description"`
}

// updateRequest is the body for PUT /api/settings/{key}. The value may
// arrive as a JSON number or a numeric string.
type updateRequest struct {
	Value interface{} `json:"value"`
}

func (req *updateRequest) float() (float64, bool) {
	switch v := req.Value.(type) {
	case float64:
		return v, true
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// HandleGetAll handles GET /api/settings
// Returns every known setting with its effective value and default.
func (h *Handler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	response := make(map[string]settingInfo, len(settings.SettingDefaults))
	for key, rawDefault := range settings.SettingDefaults {
		def, _ := rawDefault.(float64)
		value, err := h.repo.GetFloat(key, def)
		if err != nil {
			h.log.Warn().Err(err).Str("key", key).Msg("Failed to read setting")
			value = def
		}
		response[key] = settingInfo{
			Value:       value,
			Default:     def,
			Description: settings.SettingDescriptions[key],
		}
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleUpdate handles PUT /api/settings/{key}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if _, known := settings.SettingDefaults[key]; !known {
		h.writeError(w, http.StatusNotFound, "Unknown setting")
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	value, ok := req.float()
	if !ok {
		h.writeError(w, http.StatusBadRequest, "Value must be numeric")
		return
	}

	if err := h.repo.SetFloat(key, value); err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("Failed to update setting")
		h.writeError(w, http.StatusInternalServerError, "Failed to update setting")
		return
	}

	h.log.Info().Str("key", key).Float64("value", value).Msg("Setting updated")

	if h.bus != nil {
		h.bus.Publish("settings", &events.SettingsChangedData{
			Key:   key,
			Value: strconv.FormatFloat(value, 'f', -1, 64),
		})
	}

	h.writeJSON(w, http.StatusOK, map[string]float64{key: value})
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

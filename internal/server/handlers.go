package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// handleHealth handles health check requests. Reports degraded with a 503
// when either database stops answering pings.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	code := http.StatusOK

	for _, db := range []interface {
		HealthCheck(context.Context) error
	}{s.container.WorkspaceDB, s.container.CacheDB} {
		if err := db.HealthCheck(ctx); err != nil {
			s.log.Error().Err(err).Msg("Database health check failed")
			status = "degraded"
			code = http.StatusServiceUnavailable
			break
		}
	}

	s.writeJSON(w, code, map[string]interface{}{
		"status":  status,
		"service": "basket",
		"version": "1.0.0",
	})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

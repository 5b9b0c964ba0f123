package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers report routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/report", func(r chi.Router) {
		r.Get("/", h.HandleReport)
		r.Get("/concentration", h.HandleConcentration)
	})
}

package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers position and account routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/positions", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/import", h.HandleImport)
		r.Post("/rescan", h.HandleRescan)
	})

	r.Get("/account", h.HandleAccount)
}

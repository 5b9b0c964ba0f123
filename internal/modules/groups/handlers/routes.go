package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers group and ticker routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/groups", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Post("/assign", h.HandleAssign)
		r.Put("/{id}", h.HandleRename)
		r.Delete("/{id}", h.HandleDelete)
	})

	r.Route("/tickers", func(r chi.Router) {
		r.Post("/", h.HandleAddTickers)
		r.Delete("/{ticker}", h.HandleRemoveTicker)
	})
}

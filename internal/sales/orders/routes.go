package orders

import (
	"github.com/go-chi/chi/v5"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

// MountRoutes registers sales order routes. Extra lets the invoicing module
// attach the conversion endpoint under the same prefix.
func (h *Handler) MountRoutes(r chi.Router, extra ...func(chi.Router)) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermOrdersView))
		r.Get("/", h.List)
		r.Get("/{id}", h.Show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermOrdersEdit))
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Patch("/{id}/status", h.UpdateStatus)
		r.Delete("/{id}", h.Delete)
	})
	for _, mount := range extra {
		mount(r)
	}
}

// internal/gigs/routes.go

package gigs

import (
	"github.com/go-chi/chi/v5"

	"github.com/brooklyncreativehub/hub-backend/internal/auth"
)

// RegisterRoutes mounts /api/v1/gigs and /api/v1/neighborhoods
func RegisterRoutes(r chi.Router, h *Handler, m *auth.Middleware) {
	r.Get("/api/v1/neighborhoods", h.ListNeighborhoods)

	r.Route("/api/v1/gigs", func(r chi.Router) {
		r.Get("/", h.List)

		r.Group(func(r chi.Router) {
			r.Use(m.Authenticate, auth.RequireRole(auth.RoleClient))
			r.Post("/", h.Create)
			r.Get("/mine", h.ListMine)
			r.Patch("/{id}/status", h.UpdateStatus)
		})

		r.Get("/{id}", h.Get)
	})
}

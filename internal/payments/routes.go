// internal/payments/routes.go

package payments

import (
	"github.com/go-chi/chi/v5"

	"github.com/brooklyncreativehub/hub-backend/internal/auth"
)

// RegisterRoutes mounts /api/v1/payments for any authenticated user
func RegisterRoutes(r chi.Router, h *Handler, m *auth.Middleware) {
	r.Route("/api/v1/payments", func(r chi.Router) {
		r.Use(m.Authenticate)
		r.Post("/sessions", h.CreateSession)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
	})
}

// internal/auth/routes.go

package auth

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts /api/auth. Password endpoints exist only when this
// API issues its own tokens; provisioning exists only with an external
// identity provider.
func RegisterRoutes(r chi.Router, h *Handler, m *Middleware, externalIdentity bool) {
	r.Route("/api/auth", func(r chi.Router) {
		if !externalIdentity {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/refresh", h.RefreshToken)
		}

		r.Group(func(r chi.Router) {
			r.Use(m.Authenticate)
			r.Get("/me", h.Me)
			if externalIdentity {
				r.Post("/provision", h.Provision)
			}
		})
	})
}

// RegisterDeviceRoutes mounts /api/v1/devices for push token registration
func RegisterDeviceRoutes(r chi.Router, h *DeviceHandler, m *Middleware) {
	r.Route("/api/v1/devices", func(r chi.Router) {
		r.Use(m.Authenticate)
		r.Post("/", h.Register)
		r.Delete("/", h.Unregister)
	})
}

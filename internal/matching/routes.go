// internal/matching/routes.go

package matching

import (
	"github.com/go-chi/chi/v5"

	"github.com/brooklyncreativehub/hub-backend/internal/auth"
)

// RegisterRoutes mounts the matching endpoint. Authentication and the role
// check run before any data is read.
func RegisterRoutes(r chi.Router, h *Handler, m *auth.Middleware) {
	r.With(m.Authenticate, auth.RequireRole(auth.RoleArtist)).
		Post("/api/v1/ai/match-gigs", h.MatchGigs)
}

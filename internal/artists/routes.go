// internal/artists/routes.go

package artists

import (
	"github.com/go-chi/chi/v5"

	"github.com/brooklyncreativehub/hub-backend/internal/auth"
)

// RegisterRoutes mounts /api/v1/artists. Browsing is public; /me requires an
// ARTIST token.
func RegisterRoutes(r chi.Router, h *Handler, m *auth.Middleware) {
	r.Route("/api/v1/artists", func(r chi.Router) {
		r.Get("/", h.Browse)

		r.Group(func(r chi.Router) {
			r.Use(m.Authenticate, auth.RequireRole(auth.RoleArtist))

			r.Get("/me", h.GetMyProfile)
			r.Put("/me", h.UpdateMyProfile)
			r.Get("/me/portfolios", h.ListMyPortfolios)
			r.Post("/me/portfolios", h.CreatePortfolio)
			r.Post("/me/portfolios/{portfolioID}/items", h.AddPortfolioItem)
			r.Delete("/me/portfolios/{portfolioID}/items/{itemID}", h.DeletePortfolioItem)
		})

		r.Get("/{id}", h.GetProfile)
	})
}

// internal/messaging/routes.go

package messaging

import (
	"github.com/go-chi/chi/v5"

	"github.com/brooklyncreativehub/hub-backend/internal/auth"
)

// RegisterRoutes registers the REST endpoints and the websocket upgrade
func RegisterRoutes(r chi.Router, h *Handler, m *auth.Middleware) {
	r.With(m.Authenticate).Get("/ws", h.HandleWebSocket)

	r.Route("/api/v1/messages", func(r chi.Router) {
		r.Use(m.Authenticate)
		r.Post("/", h.SendMessage)
		r.Get("/conversations", h.ListConversations)
		r.Get("/{peerID}", h.History)
		r.Post("/{peerID}/read", h.MarkRead)
	})
}

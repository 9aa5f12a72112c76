// internal/messaging/handlers.go

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/brooklyncreativehub/hub-backend/internal/auth"
	"github.com/brooklyncreativehub/hub-backend/internal/common/logging"
	"github.com/brooklyncreativehub/hub-backend/internal/common/utils"
)

const inboundTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Tokens travel in the query string, not cookies
		return true
	},
}

// Handler holds dependencies for messaging endpoints
type Handler struct {
	service Service
	hub     *Hub
	log     *logging.Logger
}

// NewHandler creates a new messaging handler
func NewHandler(service Service, hub *Hub, log *logging.Logger) *Handler {
	return &Handler{
		service: service,
		hub:     hub,
		log:     log,
	}
}

// SendMessage handles POST /api/v1/messages
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	var req SendMessageRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.service.SendMessage(r.Context(), principal.UserID, &req)
	if err != nil {
		h.handleError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, msg)
}

// ListConversations handles GET /api/v1/messages/conversations
func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	conversations, err := h.service.ListConversations(r.Context(), principal.UserID)
	if err != nil {
		h.handleError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"conversations": conversations})
}

// History handles GET /api/v1/messages/{peerID}?limit=&before=
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	peerID := chi.URLParam(r, "peerID")

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	var before *time.Time
	if raw := r.URL.Query().Get("before"); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "before must be an RFC 3339 timestamp")
			return
		}
		before = &t
	}

	messages, err := h.service.History(r.Context(), principal.UserID, peerID, before, limit)
	if err != nil {
		h.handleError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

// MarkRead handles POST /api/v1/messages/{peerID}/read
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	n, err := h.service.MarkRead(r.Context(), principal.UserID, chi.URLParam(r, "peerID"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]int64{"updated": n})
}

// HandleWebSocket handles GET /ws
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		h.log.Debug("websocket upgrade failed", "err", err)
		return
	}

	client := NewClient(h.hub, conn, principal.UserID, h.handleInbound, h.log)
	if !h.hub.Register(client) {
		conn.Close()
		return
	}
	client.Start()
}

// handleInbound accepts {"type":"message","data":{receiverId, content}}
// frames and replies on the same connection with "sent" or "error".
func (h *Handler) handleInbound(c *Client, data []byte) {
	var in Event
	if err := json.Unmarshal(data, &in); err != nil || in.Type != EventMessage {
		h.reply(c, EventError, map[string]string{"error": "Unsupported frame"})
		return
	}

	var req SendMessageRequest
	if err := json.Unmarshal(in.Data, &req); err != nil {
		h.reply(c, EventError, map[string]string{"error": "Invalid message"})
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.reply(c, EventError, map[string]string{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), inboundTimeout)
	defer cancel()

	msg, err := h.service.SendMessage(ctx, c.userID, &req)
	if err != nil {
		_, message := h.errorStatus(err)
		h.reply(c, EventError, map[string]string{"error": message})
		return
	}
	h.reply(c, EventSent, msg)
}

func (h *Handler) reply(c *Client, t EventType, v interface{}) {
	event, err := newEvent(t, v)
	if err != nil {
		return
	}
	h.hub.SendToClient(c, event)
}

func (h *Handler) errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrSelfMessage):
		return http.StatusBadRequest, "Cannot send a message to yourself"
	case errors.Is(err, ErrEmptyMessage):
		return http.StatusBadRequest, "Message content is required"
	case errors.Is(err, ErrRecipientNotFound):
		return http.StatusNotFound, "Recipient not found"
	default:
		h.log.Error("messaging error", "err", err)
		return http.StatusInternalServerError, "Internal server error"
	}
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	code, message := h.errorStatus(err)
	utils.RespondWithError(w, code, message)
}

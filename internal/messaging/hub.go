// internal/messaging/hub.go

package messaging

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/brooklyncreativehub/hub-backend/internal/common/logging"
)

// Hub tracks live websocket connections. A user may hold several
// connections at once (tabs, devices); frames fan out to all of them.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	clientsMux sync.RWMutex

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	log *logging.Logger
}

// NewHub creates a hub. Call Run to start it.
func NewHub(log *logging.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run processes registrations until ctx is cancelled, then closes every
// connection.
func (h *Hub) Run(ctx context.Context) {
	defer h.cleanup()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ctx.Done():
			return
		}
	}
}

// Register hands a client to the hub. It returns false once the hub has
// stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client and closes its send queue. Safe to call more
// than once.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) registerClient(c *Client) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	conns, ok := h.clients[c.userID]
	if !ok {
		conns = make(map[*Client]struct{})
		h.clients[c.userID] = conns
	}
	conns[c] = struct{}{}
	connectedClients.Inc()

	h.log.Debug("websocket connected", "user_id", c.userID, "connections", len(conns))
}

func (h *Hub) unregisterClient(c *Client) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	conns, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := conns[c]; !ok {
		return
	}

	delete(conns, c)
	close(c.send)
	connectedClients.Dec()
	if len(conns) == 0 {
		delete(h.clients, c.userID)
	}

	h.log.Debug("websocket disconnected", "user_id", c.userID, "connections", len(conns))
}

func (h *Hub) cleanup() {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	for _, conns := range h.clients {
		for c := range conns {
			close(c.send)
			connectedClients.Dec()
		}
	}
	h.clients = make(map[string]map[*Client]struct{})
	close(h.done)
}

// SendToUser queues an event on every connection of userID and reports
// whether at least one connection accepted it. A connection whose queue is
// full is dropped.
func (h *Hub) SendToUser(userID string, event Event) bool {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("failed to marshal event", "type", event.Type, "err", err)
		return false
	}

	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()

	delivered := false
	for c := range h.clients[userID] {
		select {
		case c.send <- data:
			delivered = true
		default:
			go h.Unregister(c)
		}
	}
	return delivered
}

// SendToClient queues an event on a single connection, typically a reply to
// a frame that connection sent.
func (h *Hub) SendToClient(c *Client, event Event) bool {
	data, err := json.Marshal(event)
	if err != nil {
		return false
	}

	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()

	if _, ok := h.clients[c.userID][c]; !ok {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		go h.Unregister(c)
		return false
	}
}

// IsOnline reports whether userID has any live connection
func (h *Hub) IsOnline(userID string) bool {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	return len(h.clients[userID]) > 0
}

// ActiveConnections counts live connections across all users
func (h *Hub) ActiveConnections() int {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()

	n := 0
	for _, conns := range h.clients {
		n += len(conns)
	}
	return n
}

func newEvent(t EventType, v interface{}) (Event, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: t, Data: data, Timestamp: time.Now()}, nil
}

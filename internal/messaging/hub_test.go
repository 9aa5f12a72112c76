package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/brooklyncreativehub/hub-backend/internal/auth"
	"github.com/brooklyncreativehub/hub-backend/internal/common/logging"
)

type tokenVerifier map[string]*auth.Principal

func (v tokenVerifier) Verify(ctx context.Context, token string) (*auth.Principal, error) {
	if p, ok := v[token]; ok {
		return p, nil
	}
	return nil, auth.ErrInvalidToken
}

type testServer struct {
	*httptest.Server
	hub      *Hub
	notifier chanNotifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(logging.Nop())
	go hub.Run(ctx)

	notifier := make(chanNotifier, 10)
	svc := NewService(&memRepo{}, testUsers(), hub, notifier, logging.Nop())

	verifier := tokenVerifier{
		"alice": {UserID: "alice", Role: auth.RoleArtist},
		"bob":   {UserID: "bob", Role: auth.RoleClient},
	}
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(svc, hub, logging.Nop()), auth.NewMiddleware(verifier, logging.Nop()))

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return &testServer{Server: srv, hub: hub, notifier: notifier}
}

func (s *testServer) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(s.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var e Event
	if err := conn.ReadJSON(&e); err != nil {
		t.Fatalf("read: %v", err)
	}
	return e
}

func TestWebSocket_RequiresToken(t *testing.T) {
	srv := newTestServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("dial without token succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("response = %v, want 401", resp)
	}
}

func TestHub_FansOutToEveryConnection(t *testing.T) {
	srv := newTestServer(t)

	first := srv.dial(t, "bob")
	second := srv.dial(t, "bob")
	waitFor(t, func() bool { return srv.hub.ActiveConnections() == 2 })

	body := `{"receiverId":"bob","content":"New mural brief"}`
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/messages", bytes.NewBufferString(body))
	req.Header.Set("Authorization", "Bearer alice")
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	for _, conn := range []*websocket.Conn{first, second} {
		e := readEvent(t, conn)
		if e.Type != EventMessage {
			t.Fatalf("event type = %q, want message", e.Type)
		}
		var msg Message
		if err := json.Unmarshal(e.Data, &msg); err != nil {
			t.Fatal(err)
		}
		if msg.SenderID != "alice" || msg.Content != "New mural brief" {
			t.Errorf("pushed message = %+v", msg)
		}
	}

	select {
	case n := <-srv.notifier:
		t.Errorf("online receiver was also notified: %+v", n)
	default:
	}
}

func TestHub_InboundFrameSendsMessage(t *testing.T) {
	srv := newTestServer(t)

	alice := srv.dial(t, "alice")
	bob := srv.dial(t, "bob")
	waitFor(t, func() bool { return srv.hub.IsOnline("alice") && srv.hub.IsOnline("bob") })

	frame := `{"type":"message","data":{"receiverId":"bob","content":"hi from the socket"}}`
	if err := alice.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatal(err)
	}

	if e := readEvent(t, bob); e.Type != EventMessage {
		t.Errorf("bob got %q, want message", e.Type)
	}

	// alice sees her own echo and the acknowledgement, in either order
	seen := map[EventType]bool{}
	for i := 0; i < 2; i++ {
		seen[readEvent(t, alice).Type] = true
	}
	if !seen[EventSent] || !seen[EventMessage] {
		t.Errorf("alice events = %v, want sent and message", seen)
	}
}

func TestHub_InvalidFrameGetsError(t *testing.T) {
	srv := newTestServer(t)

	alice := srv.dial(t, "alice")
	waitFor(t, func() bool { return srv.hub.IsOnline("alice") })

	alice.WriteMessage(websocket.TextMessage, []byte(`{"type":"message","data":{"receiverId":"alice","content":"me"}}`))

	e := readEvent(t, alice)
	if e.Type != EventError || !strings.Contains(string(e.Data), "yourself") {
		t.Errorf("event = %s %s, want self-message error", e.Type, e.Data)
	}
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	srv := newTestServer(t)

	conn := srv.dial(t, "alice")
	waitFor(t, func() bool { return srv.hub.IsOnline("alice") })

	conn.Close()
	waitFor(t, func() bool { return !srv.hub.IsOnline("alice") })
}

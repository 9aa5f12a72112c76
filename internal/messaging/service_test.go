package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/brooklyncreativehub/hub-backend/internal/auth"
	"github.com/brooklyncreativehub/hub-backend/internal/common/logging"
	"github.com/brooklyncreativehub/hub-backend/internal/notification"
)

type memRepo struct {
	mu       sync.Mutex
	messages []*Message
}

func (m *memRepo) Create(ctx context.Context, msg *Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg.ID = fmt.Sprintf("msg-%d", len(m.messages)+1)
	msg.CreatedAt = time.Date(2025, 1, 1, 0, 0, len(m.messages), 0, time.UTC)
	copied := *msg
	m.messages = append(m.messages, &copied)
	return nil
}

func (m *memRepo) ListConversations(ctx context.Context, userID string) ([]*Conversation, error) {
	return nil, nil
}

func (m *memRepo) ListThread(ctx context.Context, userID, peerID string, before *time.Time, limit int) ([]*Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Message
	for i := len(m.messages) - 1; i >= 0 && len(out) < limit; i-- {
		msg := m.messages[i]
		between := (msg.SenderID == userID && msg.ReceiverID == peerID) ||
			(msg.SenderID == peerID && msg.ReceiverID == userID)
		if between && (before == nil || msg.CreatedAt.Before(*before)) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memRepo) MarkRead(ctx context.Context, userID, peerID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, msg := range m.messages {
		if msg.ReceiverID == userID && msg.SenderID == peerID && !msg.Read {
			msg.Read = true
			n++
		}
	}
	return n, nil
}

type userDirectory map[string]*auth.User

func (d userDirectory) GetUserByID(ctx context.Context, id string) (*auth.User, error) {
	if u, ok := d[id]; ok {
		return u, nil
	}
	return nil, auth.ErrUserNotFound
}

type notified struct {
	to         notification.Recipient
	senderName string
	content    string
}

type chanNotifier chan notified

func (c chanNotifier) NotifyNewMessage(ctx context.Context, to notification.Recipient, senderName, content string) error {
	c <- notified{to: to, senderName: senderName, content: content}
	return nil
}

type recordingPusher struct {
	mu     sync.Mutex
	online map[string]bool
	events map[string][]Event
}

func (p *recordingPusher) SendToUser(userID string, event Event) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.online[userID] {
		return false
	}
	if p.events == nil {
		p.events = make(map[string][]Event)
	}
	p.events[userID] = append(p.events[userID], event)
	return true
}

func (p *recordingPusher) count(userID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events[userID])
}

func testUsers() userDirectory {
	phone := "+15555550100"
	return userDirectory{
		"alice": {ID: "alice", Email: "alice@example.com", FirstName: "Alice", LastName: "Artist"},
		"bob":   {ID: "bob", Email: "bob@example.com", FirstName: "Bob", LastName: "Client", Phone: &phone},
	}
}

func TestSendMessage_Validation(t *testing.T) {
	svc := NewService(&memRepo{}, testUsers(), &recordingPusher{}, make(chanNotifier, 1), logging.Nop())

	tests := []struct {
		name string
		req  SendMessageRequest
		want error
	}{
		{"self", SendMessageRequest{ReceiverID: "alice", Content: "hi"}, ErrSelfMessage},
		{"blank", SendMessageRequest{ReceiverID: "bob", Content: "   "}, ErrEmptyMessage},
		{"unknown receiver", SendMessageRequest{ReceiverID: "carol", Content: "hi"}, ErrRecipientNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SendMessage(context.Background(), "alice", &tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("SendMessage() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSendMessage_OnlineReceiverGetsPush(t *testing.T) {
	pusher := &recordingPusher{online: map[string]bool{"bob": true}}
	notifier := make(chanNotifier, 1)
	svc := NewService(&memRepo{}, testUsers(), pusher, notifier, logging.Nop())

	if _, err := svc.SendMessage(context.Background(), "alice", &SendMessageRequest{ReceiverID: "bob", Content: "hello"}); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	if pusher.count("bob") != 1 {
		t.Errorf("bob received %d events, want 1", pusher.count("bob"))
	}
	select {
	case n := <-notifier:
		t.Errorf("unexpected notification %+v", n)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSendMessage_OfflineReceiverIsNotified(t *testing.T) {
	notifier := make(chanNotifier, 1)
	svc := NewService(&memRepo{}, testUsers(), &recordingPusher{}, notifier, logging.Nop())

	if _, err := svc.SendMessage(context.Background(), "alice", &SendMessageRequest{ReceiverID: "bob", Content: "are you free?"}); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	select {
	case n := <-notifier:
		if n.to.UserID != "bob" || n.to.Phone == nil {
			t.Errorf("recipient = %+v", n.to)
		}
		if n.senderName != "Alice Artist" || n.content != "are you free?" {
			t.Errorf("notification = %+v", n)
		}
	case <-time.After(time.Second):
		t.Fatal("offline receiver was not notified")
	}
}

func TestHistory_OldestFirstWithCursor(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo, testUsers(), &recordingPusher{}, make(chanNotifier, 10), logging.Nop())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		from, to := "alice", "bob"
		if i%2 == 1 {
			from, to = "bob", "alice"
		}
		repo.Create(ctx, &Message{SenderID: from, ReceiverID: to, Content: fmt.Sprint(i)})
	}

	page, err := svc.History(ctx, "alice", "bob", nil, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 || page[0].Content != "3" || page[1].Content != "4" {
		t.Fatalf("latest page = %v, want [3 4]", contents(page))
	}

	older, err := svc.History(ctx, "alice", "bob", &page[0].CreatedAt, 10)
	if err != nil {
		t.Fatal(err)
	}
	if got := contents(older); fmt.Sprint(got) != "[0 1 2]" {
		t.Errorf("older page = %v, want [0 1 2]", got)
	}
}

func TestMarkRead_NotifiesPeer(t *testing.T) {
	repo := &memRepo{}
	pusher := &recordingPusher{online: map[string]bool{"bob": true}}
	svc := NewService(repo, testUsers(), pusher, make(chanNotifier, 10), logging.Nop())
	ctx := context.Background()

	repo.Create(ctx, &Message{SenderID: "bob", ReceiverID: "alice", Content: "one"})
	repo.Create(ctx, &Message{SenderID: "bob", ReceiverID: "alice", Content: "two"})

	n, err := svc.MarkRead(ctx, "alice", "bob")
	if err != nil || n != 2 {
		t.Fatalf("MarkRead() = %d, %v; want 2, nil", n, err)
	}
	if pusher.count("bob") != 1 {
		t.Errorf("bob received %d read receipts, want 1", pusher.count("bob"))
	}

	n, _ = svc.MarkRead(ctx, "alice", "bob")
	if n != 0 || pusher.count("bob") != 1 {
		t.Errorf("second MarkRead() = %d with %d receipts, want 0 and no new receipt", n, pusher.count("bob"))
	}
}

func contents(msgs []*Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Content
	}
	return out
}

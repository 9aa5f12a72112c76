// internal/messaging/service.go

package messaging

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/brooklyncreativehub/hub-backend/internal/auth"
	"github.com/brooklyncreativehub/hub-backend/internal/common/logging"
	"github.com/brooklyncreativehub/hub-backend/internal/notification"
)

// Common errors
var (
	ErrSelfMessage       = errors.New("cannot send a message to yourself")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrEmptyMessage      = errors.New("message content is required")
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100

	notifyTimeout = 30 * time.Second
)

// UserDirectory resolves user ids to accounts
type UserDirectory interface {
	GetUserByID(ctx context.Context, id string) (*auth.User, error)
}

// Notifier reaches users who are not connected
type Notifier interface {
	NotifyNewMessage(ctx context.Context, to notification.Recipient, senderName, content string) error
}

// Pusher delivers events to live connections
type Pusher interface {
	SendToUser(userID string, event Event) bool
}

// Service interface
type Service interface {
	SendMessage(ctx context.Context, senderID string, req *SendMessageRequest) (*Message, error)
	ListConversations(ctx context.Context, userID string) ([]*Conversation, error)
	History(ctx context.Context, userID, peerID string, before *time.Time, limit int) ([]*Message, error)
	MarkRead(ctx context.Context, userID, peerID string) (int64, error)
}

type service struct {
	repo     Repository
	users    UserDirectory
	pusher   Pusher
	notifier Notifier
	log      *logging.Logger
}

// NewService creates a messaging service
func NewService(repo Repository, users UserDirectory, pusher Pusher, notifier Notifier, log *logging.Logger) Service {
	return &service{
		repo:     repo,
		users:    users,
		pusher:   pusher,
		notifier: notifier,
		log:      log,
	}
}

// SendMessage stores the message, then pushes it to the receiver's live
// connections or, when none are open, notifies them by SMS or email.
func (s *service) SendMessage(ctx context.Context, senderID string, req *SendMessageRequest) (*Message, error) {
	receiverID := strings.TrimSpace(req.ReceiverID)
	if receiverID == senderID {
		return nil, ErrSelfMessage
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrEmptyMessage
	}

	receiver, err := s.users.GetUserByID(ctx, receiverID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}

	msg := &Message{
		SenderID:   senderID,
		ReceiverID: receiver.ID,
		ProjectID:  req.ProjectID,
		Content:    req.Content,
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, err
	}

	event, err := newEvent(EventMessage, msg)
	if err != nil {
		return nil, err
	}

	// Echo to the sender's other tabs
	s.pusher.SendToUser(senderID, event)

	if s.pusher.SendToUser(receiver.ID, event) {
		messagesSent.WithLabelValues("websocket").Inc()
		return msg, nil
	}

	messagesSent.WithLabelValues("notification").Inc()
	go s.notifyOffline(senderID, receiver, msg.Content)

	return msg, nil
}

func (s *service) notifyOffline(senderID string, receiver *auth.User, content string) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	senderName := "Someone"
	if sender, err := s.users.GetUserByID(ctx, senderID); err == nil {
		senderName = sender.DisplayName()
	}

	to := notification.Recipient{
		UserID: receiver.ID,
		Name:   receiver.DisplayName(),
		Email:  receiver.Email,
		Phone:  receiver.Phone,
	}
	if err := s.notifier.NotifyNewMessage(ctx, to, senderName, content); err != nil {
		s.log.Warn("offline message notification failed", "receiver_id", receiver.ID, "err", err)
	}
}

func (s *service) ListConversations(ctx context.Context, userID string) ([]*Conversation, error) {
	out, err := s.repo.ListConversations(ctx, userID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*Conversation{}
	}
	return out, nil
}

// History returns one page of the thread with peerID in chronological
// order. Pass the createdAt of the first message as before to page back.
func (s *service) History(ctx context.Context, userID, peerID string, before *time.Time, limit int) ([]*Message, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	page, err := s.repo.ListThread(ctx, userID, peerID, before, limit)
	if err != nil {
		return nil, err
	}

	out := make([]*Message, len(page))
	for i, m := range page {
		out[len(page)-1-i] = m
	}
	return out, nil
}

// MarkRead marks the peer's messages as read and tells the peer
func (s *service) MarkRead(ctx context.Context, userID, peerID string) (int64, error) {
	n, err := s.repo.MarkRead(ctx, userID, peerID)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}

	event, err := newEvent(EventRead, ReadReceipt{ReaderID: userID, Count: n})
	if err == nil {
		s.pusher.SendToUser(peerID, event)
	}
	return n, nil
}

// internal/notification/push.go
// Mobile push through Firebase Cloud Messaging

package notification

import (
	"context"
	"fmt"
	"sync"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/brooklyncreativehub/hub-backend/internal/common/logging"
)

// FCM accepts at most this many tokens per multicast
const maxPushTokens = 500

// PushSender delivers push notifications to device tokens
type PushSender interface {
	SendPush(ctx context.Context, msg *PushMessage) (*PushResult, error)
}

// FCMPushSender implements PushSender using Firebase Cloud Messaging
type FCMPushSender struct {
	client *messaging.Client
}

// NewFCMPushSender initializes the messaging client from a service account file
func NewFCMPushSender(ctx context.Context, credentialsFile string) (*FCMPushSender, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	return &FCMPushSender{client: client}, nil
}

// SendPush sends one notification to every token. Tokens FCM reports as
// unregistered come back in PushResult.Stale.
func (s *FCMPushSender) SendPush(ctx context.Context, msg *PushMessage) (*PushResult, error) {
	result := &PushResult{}
	tokens := msg.Tokens
	if len(tokens) > maxPushTokens {
		tokens = tokens[:maxPushTokens]
	}
	if len(tokens) == 0 {
		return result, nil
	}

	batch, err := s.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Android: &messaging.AndroidConfig{
			Priority:    "high",
			CollapseKey: msg.CollapseKey,
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{"apns-priority": "10"},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send push via FCM: %w", err)
	}

	result.Delivered = batch.SuccessCount
	for i, resp := range batch.Responses {
		if resp.Error != nil && messaging.IsUnregistered(resp.Error) {
			result.Stale = append(result.Stale, tokens[i])
		}
	}
	return result, nil
}

// MockPushSender records and logs pushes instead of sending them
type MockPushSender struct {
	mu   sync.Mutex
	sent []PushMessage
	log  *logging.Logger

	// Stale lists tokens the mock reports as unregistered
	Stale map[string]bool
	// Err, when set, fails every send
	Err error
}

func NewMockPushSender(log *logging.Logger) *MockPushSender {
	return &MockPushSender{log: log, Stale: map[string]bool{}}
}

func (m *MockPushSender) SendPush(ctx context.Context, msg *PushMessage) (*PushResult, error) {
	if m.Err != nil {
		return nil, m.Err
	}

	m.mu.Lock()
	m.sent = append(m.sent, *msg)
	m.mu.Unlock()

	result := &PushResult{}
	for _, token := range msg.Tokens {
		if m.Stale[token] {
			result.Stale = append(result.Stale, token)
			continue
		}
		result.Delivered++
	}

	m.log.Info("mock push", "devices", len(msg.Tokens), "title", msg.Title)
	return result, nil
}

// Sent returns a copy of every recorded push
func (m *MockPushSender) Sent() []PushMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PushMessage(nil), m.sent...)
}

// internal/notification/service.go
// Composes marketplace notifications and routes them to a channel

package notification

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
)

// ErrNoChannel is returned when a recipient has neither phone nor email
var ErrNoChannel = errors.New("recipient has no reachable channel")

const previewLength = 140

// DeviceStore lists and prunes the push tokens registered to a user
type DeviceStore interface {
	ListDeviceTokens(ctx context.Context, userID string) ([]string, error)
	RemoveDeviceTokens(ctx context.Context, userID string, tokens []string) error
}

// Service sends the notifications the marketplace emits
type Service struct {
	email   EmailSender
	sms     SMSSender
	push    PushSender
	devices DeviceStore
	baseURL string
}

// NewService creates a notification service. sms may be nil.
func NewService(email EmailSender, sms SMSSender, baseURL string) *Service {
	return &Service{
		email:   email,
		sms:     sms,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// WithPush enables push delivery to registered devices
func (s *Service) WithPush(push PushSender, devices DeviceStore) *Service {
	s.push = push
	s.devices = devices
	return s
}

// SendWelcome emails a newly registered user
func (s *Service) SendWelcome(ctx context.Context, to Recipient) error {
	if to.Email == "" {
		return ErrNoChannel
	}

	plain := fmt.Sprintf(
		"Hi %s,\n\nWelcome to Brooklyn Creative Hub! Finish your profile to start connecting with local creatives and clients.\n\n%s",
		to.Name, s.baseURL,
	)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Welcome to Brooklyn Creative Hub! Finish your profile to start connecting with local creatives and clients.</p>",
		html.EscapeString(to.Name),
	)

	return s.email.SendEmail(ctx, &EmailMessage{
		To:        to.Email,
		ToName:    to.Name,
		Subject:   "Welcome to Brooklyn Creative Hub",
		PlainText: plain,
		HTML:      body,
	})
}

// NotifyNewMessage tells an offline user that a message arrived. Push goes
// first when the recipient has a registered device; otherwise SMS is preferred
// over email when the recipient has a phone number.
func (s *Service) NotifyNewMessage(ctx context.Context, to Recipient, senderName, content string) error {
	preview := Preview(content)

	delivered, pushErr := s.pushNewMessage(ctx, to, senderName, preview)
	if delivered {
		return nil
	}

	err := s.fallbackNewMessage(ctx, to, senderName, preview)
	if errors.Is(err, ErrNoChannel) && pushErr != nil {
		return pushErr
	}
	return err
}

// pushNewMessage reports whether at least one device accepted the push.
// Tokens the provider no longer recognises are pruned.
func (s *Service) pushNewMessage(ctx context.Context, to Recipient, senderName, preview string) (bool, error) {
	if s.push == nil || s.devices == nil || to.UserID == "" {
		return false, nil
	}

	tokens, err := s.devices.ListDeviceTokens(ctx, to.UserID)
	if err != nil {
		return false, fmt.Errorf("failed to load device tokens: %w", err)
	}
	if len(tokens) == 0 {
		return false, nil
	}

	result, err := s.push.SendPush(ctx, &PushMessage{
		Tokens:      tokens,
		Title:       fmt.Sprintf("New message from %s", senderName),
		Body:        preview,
		Data:        map[string]string{"type": "message", "url": s.baseURL + "/messages"},
		CollapseKey: "messages",
	})
	if err != nil {
		return false, err
	}

	if len(result.Stale) > 0 {
		if err := s.devices.RemoveDeviceTokens(ctx, to.UserID, result.Stale); err != nil {
			return result.Delivered > 0, fmt.Errorf("failed to prune device tokens: %w", err)
		}
	}
	return result.Delivered > 0, nil
}

func (s *Service) fallbackNewMessage(ctx context.Context, to Recipient, senderName, preview string) error {
	if s.sms != nil && to.Phone != nil && *to.Phone != "" {
		return s.sms.SendSMS(ctx, &SMSMessage{
			To:   *to.Phone,
			Body: fmt.Sprintf("New message from %s on Brooklyn Creative Hub: %s", senderName, preview),
		})
	}

	if to.Email == "" {
		return ErrNoChannel
	}

	return s.email.SendEmail(ctx, &EmailMessage{
		To:        to.Email,
		ToName:    to.Name,
		Subject:   fmt.Sprintf("New message from %s", senderName),
		PlainText: fmt.Sprintf("%s wrote:\n\n%s\n\nReply at %s/messages", senderName, preview, s.baseURL),
		HTML: fmt.Sprintf("<p><strong>%s</strong> wrote:</p><blockquote>%s</blockquote>",
			html.EscapeString(senderName), html.EscapeString(preview)),
	})
}

// Preview shortens content to a single-line excerpt
func Preview(content string) string {
	line := strings.Join(strings.Fields(content), " ")
	runes := []rune(line)
	if len(runes) <= previewLength {
		return line
	}
	return string(runes[:previewLength-1]) + "…"
}

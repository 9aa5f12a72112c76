// internal/notification/email.go

package notification

import (
	"context"
	"fmt"
	"sync"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/brooklyncreativehub/hub-backend/internal/common/logging"
)

// EmailSender delivers email
type EmailSender interface {
	SendEmail(ctx context.Context, msg *EmailMessage) error
}

// SendGridEmailSender implements EmailSender using SendGrid
type SendGridEmailSender struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

// NewSendGridEmailSender creates a new SendGrid sender
func NewSendGridEmailSender(apiKey, from string) *SendGridEmailSender {
	return &SendGridEmailSender{
		client:   sendgrid.NewSendClient(apiKey),
		from:     from,
		fromName: "Brooklyn Creative Hub",
	}
}

// SendEmail sends an email using SendGrid
func (s *SendGridEmailSender) SendEmail(ctx context.Context, msg *EmailMessage) error {
	from := mail.NewEmail(s.fromName, s.from)
	to := mail.NewEmail(msg.ToName, msg.To)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.PlainText, msg.HTML)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email via SendGrid: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("SendGrid returned error status: %d", response.StatusCode)
	}

	return nil
}

// MockEmailSender records and logs emails instead of sending them
type MockEmailSender struct {
	mu   sync.Mutex
	sent []EmailMessage
	log  *logging.Logger
}

func NewMockEmailSender(log *logging.Logger) *MockEmailSender {
	return &MockEmailSender{log: log}
}

func (m *MockEmailSender) SendEmail(ctx context.Context, msg *EmailMessage) error {
	m.mu.Lock()
	m.sent = append(m.sent, *msg)
	m.mu.Unlock()

	m.log.Info("mock email", "to", msg.To, "subject", msg.Subject)
	return nil
}

// Sent returns a copy of every recorded email
func (m *MockEmailSender) Sent() []EmailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]EmailMessage(nil), m.sent...)
}

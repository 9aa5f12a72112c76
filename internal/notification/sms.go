// internal/notification/sms.go

package notification

import (
	"context"
	"fmt"
	"sync"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/brooklyncreativehub/hub-backend/internal/common/logging"
)

// SMSSender delivers text messages
type SMSSender interface {
	SendSMS(ctx context.Context, msg *SMSMessage) error
}

// TwilioSMSSender implements SMSSender using Twilio
type TwilioSMSSender struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioSMSSender creates a new Twilio sender
func NewTwilioSMSSender(accountSID, authToken, from string) *TwilioSMSSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioSMSSender{
		client: client,
		from:   from,
	}
}

// SendSMS sends a single SMS. The Twilio client has no context support; ctx
// is only checked before the call.
func (s *TwilioSMSSender) SendSMS(ctx context.Context, msg *SMSMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(msg.To)
	params.SetFrom(s.from)
	params.SetBody(msg.Body)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send SMS via Twilio: %w", err)
	}
	return nil
}

// MockSMSSender records and logs messages instead of sending them
type MockSMSSender struct {
	mu   sync.Mutex
	sent []SMSMessage
	log  *logging.Logger
}

func NewMockSMSSender(log *logging.Logger) *MockSMSSender {
	return &MockSMSSender{log: log}
}

func (m *MockSMSSender) SendSMS(ctx context.Context, msg *SMSMessage) error {
	m.mu.Lock()
	m.sent = append(m.sent, *msg)
	m.mu.Unlock()

	m.log.Info("mock sms", "to", msg.To)
	return nil
}

// Sent returns a copy of every recorded message
func (m *MockSMSSender) Sent() []SMSMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SMSMessage(nil), m.sent...)
}

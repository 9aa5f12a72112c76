// internal/payments/service.go
// Simulated checkout sessions. No payment processor is contacted.

package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brooklyncreativehub/hub-backend/internal/common/logging"
)

// Common errors
var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrAmountTooSmall  = errors.New("amount does not cover the processing fee")
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Service interface
type Service interface {
	CreateSession(ctx context.Context, userID string, req *CreateSessionRequest) (*SessionResponse, error)
	Get(ctx context.Context, userID, paymentID string) (*Payment, error)
	List(ctx context.Context, userID string, limit, offset int) ([]*Payment, error)
	ExpireStale(ctx context.Context) (int64, error)
}

type service struct {
	repo       Repository
	fees       FeeSchedule
	pendingTTL time.Duration
	now        func() time.Time
	log        *logging.Logger
}

// NewService creates a payment service. Pending payments older than
// pendingTTL are failed by ExpireStale.
func NewService(repo Repository, fees FeeSchedule, pendingTTL time.Duration, log *logging.Logger) Service {
	return &service{
		repo:       repo,
		fees:       fees,
		pendingTTL: pendingTTL,
		now:        time.Now,
		log:        log,
	}
}

// CreateSession records a PENDING payment and returns a checkout handle
func (s *service) CreateSession(ctx context.Context, userID string, req *CreateSessionRequest) (*SessionResponse, error) {
	amount := *req.Amount
	fee, net := s.fees.Apply(amount)
	if net <= 0 {
		return nil, ErrAmountTooSmall
	}

	now := s.now()
	sessionID := fmt.Sprintf("cs_%d", now.UnixMilli())

	paymentType := strings.TrimSpace(req.Type)
	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = "Payment for " + paymentType
	}

	p := &Payment{
		UserID:      userID,
		ProjectID:   req.ProjectID,
		Amount:      amount,
		Fee:         fee,
		NetAmount:   net,
		Status:      StatusPending,
		Type:        paymentType,
		Description: description,
		Metadata: Metadata{
			Type:      paymentType,
			SessionID: sessionID,
			Timestamp: now.UTC(),
		},
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.log.Info("payment session created", "payment_id", p.ID, "user_id", userID, "amount", amount, "fee", fee)

	return &SessionResponse{
		CheckoutSession: CheckoutSession{
			ID:        sessionID,
			URL:       "/billing?payment=" + p.ID,
			PaymentID: p.ID,
			Amount:    amount,
			Status:    "open",
		},
		PaymentID: p.ID,
		Message:   "Payment session created successfully",
	}, nil
}

// Get returns the caller's own payment; other users' payments are not found
func (s *service) Get(ctx context.Context, userID, paymentID string) (*Payment, error) {
	p, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, ErrPaymentNotFound
	}
	return p, nil
}

func (s *service) List(ctx context.Context, userID string, limit, offset int) ([]*Payment, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	out, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*Payment{}
	}
	return out, nil
}

// ExpireStale fails PENDING payments that were never completed
func (s *service) ExpireStale(ctx context.Context) (int64, error) {
	n, err := s.repo.ExpireStale(ctx, s.now().Add(-s.pendingTTL))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("stale payments expired", "count", n)
	}
	return n, nil
}

// internal/gigs/service.go
// Business logic for posting and browsing gigs

package gigs

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/brooklyncreativehub/hub-backend/internal/common/logging"
)

// Common errors
var (
	ErrGigNotFound           = errors.New("gig not found")
	ErrClientProfileNotFound = errors.New("client profile not found")
	ErrInvalidCategory       = errors.New("invalid category")
	ErrInvalidBudgetType     = errors.New("invalid budget type")
	ErrInvalidStatus         = errors.New("invalid status")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrDeadlinePassed        = errors.New("deadline must be in the future")
	ErrUnknownNeighborhood   = errors.New("unknown neighborhood")
	ErrNotOwner              = errors.New("not the owner of this gig")
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Service interface
type Service interface {
	Create(ctx context.Context, userID string, req *CreateGigRequest) (*Gig, error)
	Get(ctx context.Context, id string) (*Gig, error)
	List(ctx context.Context, filter *ListFilter) ([]*Gig, error)
	ListMine(ctx context.Context, userID string) ([]*Gig, error)
	UpdateStatus(ctx context.Context, userID, gigID string, status Status) (*Gig, error)
	ListOpen(ctx context.Context) ([]*Gig, error)
	CloseExpired(ctx context.Context) (int64, error)
	ListNeighborhoods(ctx context.Context) ([]*Neighborhood, error)
}

type service struct {
	repo Repository
	now  func() time.Time
	log  *logging.Logger
}

// NewService creates a new gig service
func NewService(repo Repository, log *logging.Logger) Service {
	return &service{
		repo: repo,
		now:  time.Now,
		log:  log,
	}
}

func (s *service) Create(ctx context.Context, userID string, req *CreateGigRequest) (*Gig, error) {
	category, ok := ParseCategory(req.Category)
	if !ok {
		return nil, ErrInvalidCategory
	}
	budgetType, ok := ParseBudgetType(req.BudgetType)
	if !ok {
		return nil, ErrInvalidBudgetType
	}
	if req.Deadline != nil && !req.Deadline.After(s.now()) {
		return nil, ErrDeadlinePassed
	}

	clientID, err := s.repo.GetClientProfileID(ctx, userID)
	if err != nil {
		return nil, err
	}

	gig := &Gig{
		ClientID:       clientID,
		ClientUserID:   userID,
		Title:          strings.TrimSpace(req.Title),
		Description:    strings.TrimSpace(req.Description),
		Category:       category,
		Budget:         req.Budget,
		BudgetType:     budgetType,
		Timeline:       strings.TrimSpace(req.Timeline),
		Location:       strings.TrimSpace(req.Location),
		IsRemote:       req.IsRemote,
		NeighborhoodID: req.NeighborhoodID,
		Requirements:   trimAll(req.Requirements),
		Skills:         trimAll(req.Skills),
		Deadline:       req.Deadline,
		Status:         StatusOpen,
	}
	if err := s.repo.Create(ctx, gig); err != nil {
		return nil, err
	}

	s.log.Info("gig posted", "gig_id", gig.ID, "client_id", clientID, "category", category)

	return s.repo.GetByID(ctx, gig.ID)
}

func (s *service) Get(ctx context.Context, id string) (*Gig, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter *ListFilter) ([]*Gig, error) {
	if filter.Status == "" {
		filter.Status = StatusOpen
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	gigs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return nonNil(gigs), nil
}

func (s *service) ListMine(ctx context.Context, userID string) ([]*Gig, error) {
	clientID, err := s.repo.GetClientProfileID(ctx, userID)
	if err != nil {
		return nil, err
	}

	gigs, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return nonNil(gigs), nil
}

// UpdateStatus lets the owning client move a gig through its lifecycle
func (s *service) UpdateStatus(ctx context.Context, userID, gigID string, status Status) (*Gig, error) {
	gig, err := s.repo.GetByID(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if gig.ClientUserID != userID {
		return nil, ErrNotOwner
	}
	if !CanTransition(gig.Status, status) {
		return nil, ErrInvalidTransition
	}

	if err := s.repo.UpdateStatus(ctx, gig.ID, gig.Status, status); err != nil {
		return nil, err
	}

	s.log.Info("gig status changed", "gig_id", gig.ID, "from", gig.Status, "to", status)

	return s.repo.GetByID(ctx, gig.ID)
}

// ListOpen returns the current candidate set for matching
func (s *service) ListOpen(ctx context.Context) ([]*Gig, error) {
	gigs, err := s.repo.ListOpen(ctx, s.now())
	if err != nil {
		return nil, err
	}
	return nonNil(gigs), nil
}

// CloseExpired cancels open gigs whose deadline has passed
func (s *service) CloseExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.CloseExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("expired gigs closed", "count", n)
	}
	return n, nil
}

func (s *service) ListNeighborhoods(ctx context.Context) ([]*Neighborhood, error) {
	out, err := s.repo.ListNeighborhoods(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*Neighborhood{}
	}
	return out, nil
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func nonNil(gigs []*Gig) []*Gig {
	if gigs == nil {
		return []*Gig{}
	}
	return gigs
}

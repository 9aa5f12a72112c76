// internal/artists/service.go
// Business logic for artist profiles and portfolios

package artists

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/brooklyncreativehub/hub-backend/internal/common/logging"
)

// Common errors
var (
	ErrProfileNotFound     = errors.New("artist profile not found")
	ErrPortfolioNotFound   = errors.New("portfolio not found")
	ErrItemNotFound        = errors.New("portfolio item not found")
	ErrUnknownNeighborhood = errors.New("unknown neighborhood")
)

const (
	defaultBrowseLimit = 20
	maxBrowseLimit     = 100
	defaultCategory    = "OTHER"
)

// Service interface
type Service interface {
	GetMatchingProfile(ctx context.Context, userID string) (*MatchingProfile, error)
	GetMyProfile(ctx context.Context, userID string) (*ArtistProfile, error)
	UpdateMyProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*ArtistProfile, error)
	GetPublicProfile(ctx context.Context, profileID string) (*PublicProfile, error)
	Browse(ctx context.Context, filter *BrowseFilter) ([]*ArtistProfile, error)

	CreatePortfolio(ctx context.Context, userID string, req *CreatePortfolioRequest) (*Portfolio, error)
	ListMyPortfolios(ctx context.Context, userID string) ([]*Portfolio, error)
	AddPortfolioItem(ctx context.Context, userID, portfolioID string, req *CreateItemRequest, image io.Reader) (*PortfolioItem, error)
	DeletePortfolioItem(ctx context.Context, userID, portfolioID, itemID string) error
}

type service struct {
	repo    Repository
	storage Storage
	log     *logging.Logger
}

// NewService creates a new artist service
func NewService(repo Repository, storage Storage, log *logging.Logger) Service {
	return &service{
		repo:    repo,
		storage: storage,
		log:     log,
	}
}

// GetMatchingProfile loads the profile and all portfolio items of the artist
// owned by userID
func (s *service) GetMatchingProfile(ctx context.Context, userID string) (*MatchingProfile, error) {
	profile, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListFlattenedItems(ctx, profile.ID)
	if err != nil {
		return nil, err
	}

	return &MatchingProfile{Profile: profile, Items: items}, nil
}

func (s *service) GetMyProfile(ctx context.Context, userID string) (*ArtistProfile, error) {
	return s.repo.GetProfileByUserID(ctx, userID)
}

func (s *service) UpdateMyProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*ArtistProfile, error) {
	if req.Skills != nil {
		req.Skills = normalizeTags(req.Skills)
	}
	return s.repo.UpdateProfile(ctx, userID, req)
}

// GetPublicProfile returns a profile with its public portfolios and their items
func (s *service) GetPublicProfile(ctx context.Context, profileID string) (*PublicProfile, error) {
	profile, err := s.repo.GetProfileByID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	portfolios, err := s.loadPortfolios(ctx, profile.ID, true)
	if err != nil {
		return nil, err
	}

	return &PublicProfile{ArtistProfile: profile, Portfolios: portfolios}, nil
}

func (s *service) Browse(ctx context.Context, filter *BrowseFilter) ([]*ArtistProfile, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultBrowseLimit
	}
	if filter.Limit > maxBrowseLimit {
		filter.Limit = maxBrowseLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	profiles, err := s.repo.Browse(ctx, filter)
	if err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []*ArtistProfile{}
	}
	return profiles, nil
}

func (s *service) CreatePortfolio(ctx context.Context, userID string, req *CreatePortfolioRequest) (*Portfolio, error) {
	profile, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := &Portfolio{
		ArtistID:    profile.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		IsPublic:    req.IsPublic == nil || *req.IsPublic,
		Items:       []*PortfolioItem{},
	}
	if err := s.repo.CreatePortfolio(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) ListMyPortfolios(ctx context.Context, userID string) ([]*Portfolio, error) {
	profile, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.loadPortfolios(ctx, profile.ID, false)
}

// AddPortfolioItem stores the optional image first, then the item. The image
// is removed again if the insert fails.
func (s *service) AddPortfolioItem(ctx context.Context, userID, portfolioID string, req *CreateItemRequest, image io.Reader) (*PortfolioItem, error) {
	portfolio, err := s.ownedPortfolio(ctx, userID, portfolioID)
	if err != nil {
		return nil, err
	}

	category := strings.ToUpper(strings.TrimSpace(req.Category))
	if category == "" {
		category = defaultCategory
	}

	item := &PortfolioItem{
		PortfolioID:  portfolio.ID,
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Category:     category,
		Tags:         normalizeTags(req.Tags),
		DisplayOrder: req.DisplayOrder,
	}

	if image != nil {
		url, err := s.storage.Save(ctx, "portfolio/"+portfolio.ID, image)
		if err != nil {
			return nil, err
		}
		item.ImageURL = &url
	}

	if err := s.repo.CreateItem(ctx, item); err != nil {
		if item.ImageURL != nil {
			s.removeImage(ctx, *item.ImageURL)
		}
		return nil, err
	}
	return item, nil
}

// DeletePortfolioItem removes the item and its stored image
func (s *service) DeletePortfolioItem(ctx context.Context, userID, portfolioID, itemID string) error {
	portfolio, err := s.ownedPortfolio(ctx, userID, portfolioID)
	if err != nil {
		return err
	}

	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	if item.PortfolioID != portfolio.ID {
		return ErrItemNotFound
	}

	if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
		return err
	}
	if item.ImageURL != nil {
		s.removeImage(ctx, *item.ImageURL)
	}
	return nil
}

// ownedPortfolio reports a foreign portfolio as not found
func (s *service) ownedPortfolio(ctx context.Context, userID, portfolioID string) (*Portfolio, error) {
	profile, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	portfolio, err := s.repo.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	if portfolio.ArtistID != profile.ID {
		return nil, ErrPortfolioNotFound
	}
	return portfolio, nil
}

func (s *service) loadPortfolios(ctx context.Context, artistID string, publicOnly bool) ([]*Portfolio, error) {
	portfolios, err := s.repo.ListPortfolios(ctx, artistID, publicOnly)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(portfolios))
	byID := make(map[string]*Portfolio, len(portfolios))
	for i, p := range portfolios {
		ids[i] = p.ID
		p.Items = []*PortfolioItem{}
		byID[p.ID] = p
	}

	items, err := s.repo.ListItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio items: %w", err)
	}
	for _, item := range items {
		if p, ok := byID[item.PortfolioID]; ok {
			p.Items = append(p.Items, item)
		}
	}

	if portfolios == nil {
		portfolios = []*Portfolio{}
	}
	return portfolios, nil
}

func (s *service) removeImage(ctx context.Context, url string) {
	if err := s.storage.Delete(ctx, url); err != nil {
		s.log.Warn("failed to delete portfolio image", "url", url, "err", err)
	}
}

// normalizeTags trims entries, drops blanks and removes case-insensitive duplicates
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

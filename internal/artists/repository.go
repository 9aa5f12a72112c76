// internal/artists/repository.go

package artists

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines the artist repository interface
type Repository interface {
	// Profiles
	GetProfileByUserID(ctx context.Context, userID string) (*ArtistProfile, error)
	GetProfileByID(ctx context.Context, id string) (*ArtistProfile, error)
	UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*ArtistProfile, error)
	Browse(ctx context.Context, filter *BrowseFilter) ([]*ArtistProfile, error)

	// Portfolios
	CreatePortfolio(ctx context.Context, p *Portfolio) error
	GetPortfolio(ctx context.Context, id string) (*Portfolio, error)
	ListPortfolios(ctx context.Context, artistID string, publicOnly bool) ([]*Portfolio, error)
	ListItems(ctx context.Context, portfolioIDs []string) ([]*PortfolioItem, error)
	ListFlattenedItems(ctx context.Context, artistID string) ([]*PortfolioItem, error)
	CreateItem(ctx context.Context, item *PortfolioItem) error
	GetItem(ctx context.Context, id string) (*PortfolioItem, error)
	DeleteItem(ctx context.Context, id string) error
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const profileColumns = `
	a.id, a.user_id, a.display_name, a.bio, a.skills, a.experience_years,
	a.hourly_rate, a.location, a.neighborhood_id, n.name AS neighborhood,
	a.is_open_to_work, a.verification_status, a.created_at, a.updated_at`

func (r *postgresRepository) getProfile(ctx context.Context, where string, arg interface{}) (*ArtistProfile, error) {
	var p ArtistProfile
	query := `SELECT ` + profileColumns + `
		FROM artist_profiles a
		LEFT JOIN neighborhoods n ON n.id = a.neighborhood_id
		WHERE ` + where

	if err := r.db.GetContext(ctx, &p, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get artist profile: %w", err)
	}
	return &p, nil
}

func (r *postgresRepository) GetProfileByUserID(ctx context.Context, userID string) (*ArtistProfile, error) {
	return r.getProfile(ctx, "a.user_id = $1", userID)
}

func (r *postgresRepository) GetProfileByID(ctx context.Context, id string) (*ArtistProfile, error) {
	return r.getProfile(ctx, "a.id = $1", id)
}

// UpdateProfile applies the non-nil fields of req
func (r *postgresRepository) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*ArtistProfile, error) {
	var skills interface{}
	if req.Skills != nil {
		skills = pq.Array(req.Skills)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE artist_profiles SET
			display_name = COALESCE($2, display_name),
			bio = COALESCE($3, bio),
			skills = COALESCE($4, skills),
			experience_years = COALESCE($5, experience_years),
			hourly_rate = COALESCE($6, hourly_rate),
			location = COALESCE($7, location),
			neighborhood_id = COALESCE($8::uuid, neighborhood_id),
			is_open_to_work = COALESCE($9, is_open_to_work),
			updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1`,
		userID, req.DisplayName, req.Bio, skills, req.ExperienceYears,
		req.HourlyRate, req.Location, req.NeighborhoodID, req.IsOpenToWork,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return nil, ErrUnknownNeighborhood
		}
		return nil, fmt.Errorf("failed to update artist profile: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return nil, ErrProfileNotFound
	}

	return r.GetProfileByUserID(ctx, userID)
}

// Browse lists artist profiles matching the filter, most recently updated first
func (r *postgresRepository) Browse(ctx context.Context, filter *BrowseFilter) ([]*ArtistProfile, error) {
	var (
		conditions []string
		args       []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conditions = append(conditions, fmt.Sprintf(
			"(a.display_name ILIKE %[1]s OR a.bio ILIKE %[1]s OR array_to_string(a.skills, ' ') ILIKE %[1]s)", p))
	}
	if filter.Skill != "" {
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM unnest(a.skills) s WHERE s ILIKE %s)", arg(filter.Skill)))
	}
	if filter.Neighborhood != "" {
		p := arg(filter.Neighborhood)
		conditions = append(conditions, fmt.Sprintf("(n.slug = %[1]s OR n.name ILIKE %[1]s)", p))
	}
	if filter.OpenToWork != nil {
		conditions = append(conditions, "a.is_open_to_work = "+arg(*filter.OpenToWork))
	}

	query := `SELECT ` + profileColumns + `
		FROM artist_profiles a
		LEFT JOIN neighborhoods n ON n.id = a.neighborhood_id`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY a.updated_at DESC, a.id LIMIT %s OFFSET %s", arg(filter.Limit), arg(filter.Offset))

	var profiles []*ArtistProfile
	if err := r.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		return nil, fmt.Errorf("failed to browse artists: %w", err)
	}
	return profiles, nil
}

func (r *postgresRepository) CreatePortfolio(ctx context.Context, p *Portfolio) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO portfolios (artist_id, title, description, is_public)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		p.ArtistID, p.Title, p.Description, p.IsPublic,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create portfolio: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetPortfolio(ctx context.Context, id string) (*Portfolio, error) {
	var p Portfolio
	err := r.db.GetContext(ctx, &p, `
		SELECT id, artist_id, title, description, is_public, created_at, updated_at
		FROM portfolios WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPortfolioNotFound
		}
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}
	return &p, nil
}

// ListPortfolios returns an artist's portfolios, newest first
func (r *postgresRepository) ListPortfolios(ctx context.Context, artistID string, publicOnly bool) ([]*Portfolio, error) {
	query := `
		SELECT id, artist_id, title, description, is_public, created_at, updated_at
		FROM portfolios WHERE artist_id = $1`
	if publicOnly {
		query += ` AND is_public = TRUE`
	}
	query += ` ORDER BY created_at DESC, id`

	var portfolios []*Portfolio
	if err := r.db.SelectContext(ctx, &portfolios, query, artistID); err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	return portfolios, nil
}

const itemColumns = `
	i.id, i.portfolio_id, i.title, i.description, i.image_url, i.category,
	i.tags, i.display_order, i.created_at`

// ListItems returns the items of the given portfolios in display order
func (r *postgresRepository) ListItems(ctx context.Context, portfolioIDs []string) ([]*PortfolioItem, error) {
	if len(portfolioIDs) == 0 {
		return nil, nil
	}

	var items []*PortfolioItem
	err := r.db.SelectContext(ctx, &items, `
		SELECT `+itemColumns+`
		FROM portfolio_items i
		WHERE i.portfolio_id = ANY($1::uuid[])
		ORDER BY i.display_order, i.id`, pq.Array(portfolioIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolio items: %w", err)
	}
	return items, nil
}

// ListFlattenedItems returns every item across the artist's portfolios:
// portfolios newest first, items by display order within each
func (r *postgresRepository) ListFlattenedItems(ctx context.Context, artistID string) ([]*PortfolioItem, error) {
	var items []*PortfolioItem
	err := r.db.SelectContext(ctx, &items, `
		SELECT `+itemColumns+`
		FROM portfolio_items i
		JOIN portfolios p ON p.id = i.portfolio_id
		WHERE p.artist_id = $1
		ORDER BY p.created_at DESC, p.id, i.display_order, i.id`, artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolio items: %w", err)
	}
	return items, nil
}

func (r *postgresRepository) CreateItem(ctx context.Context, item *PortfolioItem) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO portfolio_items (portfolio_id, title, description, image_url, category, tags, display_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		item.PortfolioID, item.Title, item.Description, item.ImageURL,
		item.Category, item.Tags, item.DisplayOrder,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create portfolio item: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetItem(ctx context.Context, id string) (*PortfolioItem, error) {
	var item PortfolioItem
	err := r.db.GetContext(ctx, &item, `SELECT `+itemColumns+` FROM portfolio_items i WHERE i.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get portfolio item: %w", err)
	}
	return &item, nil
}

func (r *postgresRepository) DeleteItem(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM portfolio_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete portfolio item: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrItemNotFound
	}
	return nil
}

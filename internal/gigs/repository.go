// internal/gigs/repository.go

package gigs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines the gig repository interface
type Repository interface {
	Create(ctx context.Context, gig *Gig) error
	GetByID(ctx context.Context, id string) (*Gig, error)
	List(ctx context.Context, filter *ListFilter) ([]*Gig, error)
	ListByClient(ctx context.Context, clientID string) ([]*Gig, error)
	ListOpen(ctx context.Context, now time.Time) ([]*Gig, error)
	UpdateStatus(ctx context.Context, id string, from, to Status) error
	CloseExpired(ctx context.Context, now time.Time) (int64, error)

	GetClientProfileID(ctx context.Context, userID string) (string, error)
	ListNeighborhoods(ctx context.Context) ([]*Neighborhood, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// gigSelect joins the client's display name (company name, else first and
// last name) and the neighborhood name
const gigSelect = `
	SELECT
		g.id, g.client_id, c.user_id AS client_user_id,
		COALESCE(NULLIF(c.company_name, ''), TRIM(u.first_name || ' ' || u.last_name)) AS client_name,
		g.title, g.description, g.category, g.budget, g.budget_type, g.timeline,
		g.location, g.is_remote, g.neighborhood_id, n.name AS neighborhood,
		g.requirements, g.skills, g.deadline, g.status, g.created_at, g.updated_at
	FROM gigs g
	JOIN client_profiles c ON c.id = g.client_id
	JOIN users u ON u.id = c.user_id
	LEFT JOIN neighborhoods n ON n.id = g.neighborhood_id`

func (r *postgresRepository) Create(ctx context.Context, gig *Gig) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO gigs (
			client_id, title, description, category, budget, budget_type, timeline,
			location, is_remote, neighborhood_id, requirements, skills, deadline, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at`,
		gig.ClientID, gig.Title, gig.Description, gig.Category, gig.Budget, gig.BudgetType,
		gig.Timeline, gig.Location, gig.IsRemote, gig.NeighborhoodID, gig.Requirements,
		gig.Skills, gig.Deadline, gig.Status,
	).Scan(&gig.ID, &gig.CreatedAt, &gig.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrUnknownNeighborhood
		}
		return fmt.Errorf("failed to create gig: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id string) (*Gig, error) {
	var gig Gig
	if err := r.db.GetContext(ctx, &gig, gigSelect+` WHERE g.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGigNotFound
		}
		return nil, fmt.Errorf("failed to get gig: %w", err)
	}
	return &gig, nil
}

// List returns gigs matching the filter, newest first
func (r *postgresRepository) List(ctx context.Context, filter *ListFilter) ([]*Gig, error) {
	var (
		conditions []string
		args       []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		conditions = append(conditions, "g.status = "+arg(filter.Status))
	}
	if filter.Category != "" {
		conditions = append(conditions, "g.category = "+arg(filter.Category))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conditions = append(conditions, fmt.Sprintf(
			"(g.title ILIKE %[1]s OR g.description ILIKE %[1]s OR array_to_string(g.skills, ' ') ILIKE %[1]s)", p))
	}
	if filter.Location != "" {
		p := arg("%" + filter.Location + "%")
		conditions = append(conditions, fmt.Sprintf("(g.location ILIKE %[1]s OR n.name ILIKE %[1]s)", p))
	}
	if filter.Remote != nil {
		conditions = append(conditions, "g.is_remote = "+arg(*filter.Remote))
	}

	query := gigSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY g.created_at DESC, g.id LIMIT %s OFFSET %s", arg(filter.Limit), arg(filter.Offset))

	var gigs []*Gig
	if err := r.db.SelectContext(ctx, &gigs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list gigs: %w", err)
	}
	return gigs, nil
}

func (r *postgresRepository) ListByClient(ctx context.Context, clientID string) ([]*Gig, error) {
	var gigs []*Gig
	err := r.db.SelectContext(ctx, &gigs, gigSelect+`
		WHERE g.client_id = $1
		ORDER BY g.created_at DESC, g.id`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list client gigs: %w", err)
	}
	return gigs, nil
}

// ListOpen returns every OPEN gig with no deadline or a deadline after now
func (r *postgresRepository) ListOpen(ctx context.Context, now time.Time) ([]*Gig, error) {
	var gigs []*Gig
	err := r.db.SelectContext(ctx, &gigs, gigSelect+`
		WHERE g.status = $1 AND (g.deadline IS NULL OR g.deadline > $2)`,
		StatusOpen, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list open gigs: %w", err)
	}
	return gigs, nil
}

// UpdateStatus moves a gig from one status to another. The update only
// applies if the gig is still in from.
func (r *postgresRepository) UpdateStatus(ctx context.Context, id string, from, to Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE gigs SET status = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		return fmt.Errorf("failed to update gig status: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// CloseExpired cancels OPEN gigs whose deadline has passed
func (r *postgresRepository) CloseExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE gigs SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE status = $2 AND deadline IS NOT NULL AND deadline <= $3`,
		StatusCancelled, StatusOpen, now)
	if err != nil {
		return 0, fmt.Errorf("failed to close expired gigs: %w", err)
	}
	return res.RowsAffected()
}

func (r *postgresRepository) GetClientProfileID(ctx context.Context, userID string) (string, error) {
	var id string
	err := r.db.GetContext(ctx, &id, `SELECT id FROM client_profiles WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrClientProfileNotFound
		}
		return "", fmt.Errorf("failed to get client profile: %w", err)
	}
	return id, nil
}

func (r *postgresRepository) ListNeighborhoods(ctx context.Context) ([]*Neighborhood, error) {
	var out []*Neighborhood
	err := r.db.SelectContext(ctx, &out, `
		SELECT id, name, slug, latitude, longitude FROM neighborhoods ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list neighborhoods: %w", err)
	}
	return out, nil
}

// internal/payments/repository.go

package payments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repository defines the payment repository interface
type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id string) (*Payment, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*Payment, error)
	ExpireStale(ctx context.Context, before time.Time) (int64, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const paymentColumns = `
	id, user_id, project_id, amount, fee, net_amount, status, type,
	description, metadata, created_at, updated_at`

func (r *postgresRepository) Create(ctx context.Context, p *Payment) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO payments (user_id, project_id, amount, fee, net_amount, status, type, description, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		p.UserID, p.ProjectID, p.Amount, p.Fee, p.NetAmount, p.Status, p.Type, p.Description, p.Metadata,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id string) (*Payment, error) {
	var p Payment
	if err := r.db.GetContext(ctx, &p, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &p, nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*Payment, error) {
	var out []*Payment
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+paymentColumns+` FROM payments
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return out, nil
}

// ExpireStale marks PENDING payments created before the cutoff as FAILED
func (r *postgresRepository) ExpireStale(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE payments SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE status = $2 AND created_at < $3`,
		StatusFailed, StatusPending, before)
	if err != nil {
		return 0, fmt.Errorf("failed to expire payments: %w", err)
	}
	return res.RowsAffected()
}

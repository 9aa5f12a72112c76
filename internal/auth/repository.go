// internal/auth/repository.go
// Data access layer for users and their role profiles

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/brooklyncreativehub/hub-backend/internal/common/database"
)

// Repository defines the interface for user data access
type Repository interface {
	// CreateUser inserts the user, their base profile and the profile for
	// their role in one transaction. user.ID may be preset (external
	// identity provider) or left empty for a generated id.
	CreateUser(ctx context.Context, user *User, companyName *string) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const userColumns = `id, email, password_hash, role, first_name, last_name, phone, created_at, updated_at`

func (r *postgresRepository) CreateUser(ctx context.Context, user *User, companyName *string) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO users (id, email, password_hash, role, first_name, last_name, phone)
			VALUES (COALESCE(NULLIF($1, ''), gen_random_uuid()::text), $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at, updated_at`

		err := tx.QueryRowxContext(ctx, query,
			user.ID, strings.ToLower(user.Email), user.PasswordHash, user.Role,
			user.FirstName, user.LastName, user.Phone,
		).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			var pgErr *pq.Error
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrEmailAlreadyExists
			}
			return fmt.Errorf("failed to insert user: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_profiles (user_id) VALUES ($1)`, user.ID); err != nil {
			return fmt.Errorf("failed to insert user profile: %w", err)
		}

		switch user.Role {
		case RoleArtist:
			_, err = tx.ExecContext(ctx,
				`INSERT INTO artist_profiles (user_id, display_name) VALUES ($1, $2)`,
				user.ID, user.DisplayName())
		case RoleClient:
			_, err = tx.ExecContext(ctx,
				`INSERT INTO client_profiles (user_id, company_name) VALUES ($1, $2)`,
				user.ID, companyName)
		}
		if err != nil {
			return fmt.Errorf("failed to insert %s profile: %w", strings.ToLower(string(user.Role)), err)
		}

		return nil
	})
}

func (r *postgresRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	if err := r.db.GetContext(ctx, &user, query, strings.ToLower(email)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (r *postgresRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	var user User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// internal/common/database/migrations.go
// Schema creation and seed data, run once at startup

package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/brooklyncreativehub/hub-backend/internal/common/logging"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(128) PRIMARY KEY DEFAULT gen_random_uuid()::text,
		email VARCHAR(255) UNIQUE NOT NULL,
		password_hash VARCHAR(255),
		role VARCHAR(20) NOT NULL CHECK (role IN ('ARTIST', 'CLIENT')),
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL,
		phone VARCHAR(20),
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS neighborhoods (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name VARCHAR(100) UNIQUE NOT NULL,
		slug VARCHAR(100) UNIQUE NOT NULL,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS user_profiles (
		user_id VARCHAR(128) PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		bio TEXT,
		avatar_url TEXT,
		neighborhood_id UUID REFERENCES neighborhoods(id),
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS artist_profiles (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id VARCHAR(128) UNIQUE NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		display_name VARCHAR(200) NOT NULL,
		bio TEXT NOT NULL DEFAULT '',
		skills TEXT[] NOT NULL DEFAULT '{}',
		experience_years INTEGER,
		hourly_rate NUMERIC(10, 2),
		location VARCHAR(255) NOT NULL DEFAULT '',
		neighborhood_id UUID REFERENCES neighborhoods(id),
		is_open_to_work BOOLEAN NOT NULL DEFAULT TRUE,
		verification_status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS client_profiles (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id VARCHAR(128) UNIQUE NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		company_name VARCHAR(200),
		location VARCHAR(255) NOT NULL DEFAULT '',
		neighborhood_id UUID REFERENCES neighborhoods(id),
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS portfolios (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		artist_id UUID NOT NULL REFERENCES artist_profiles(id) ON DELETE CASCADE,
		title VARCHAR(200) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		is_public BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS portfolio_items (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		portfolio_id UUID NOT NULL REFERENCES portfolios(id) ON DELETE CASCADE,
		title VARCHAR(200) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		image_url TEXT,
		category VARCHAR(50) NOT NULL DEFAULT 'OTHER',
		tags TEXT[] NOT NULL DEFAULT '{}',
		display_order INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS gigs (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		client_id UUID NOT NULL REFERENCES client_profiles(id) ON DELETE CASCADE,
		title VARCHAR(200) NOT NULL,
		description TEXT NOT NULL,
		category VARCHAR(50) NOT NULL,
		budget NUMERIC(12, 2) NOT NULL,
		budget_type VARCHAR(20) NOT NULL DEFAULT 'FIXED',
		timeline VARCHAR(200) NOT NULL DEFAULT '',
		location VARCHAR(255) NOT NULL DEFAULT '',
		is_remote BOOLEAN NOT NULL DEFAULT FALSE,
		neighborhood_id UUID REFERENCES neighborhoods(id),
		requirements TEXT[] NOT NULL DEFAULT '{}',
		skills TEXT[] NOT NULL DEFAULT '{}',
		deadline TIMESTAMPTZ,
		status VARCHAR(20) NOT NULL DEFAULT 'OPEN',
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id VARCHAR(128) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		project_id UUID,
		amount NUMERIC(12, 2) NOT NULL,
		fee NUMERIC(12, 2) NOT NULL,
		net_amount NUMERIC(12, 2) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
		type VARCHAR(50) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		metadata JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS messages (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		sender_id VARCHAR(128) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		receiver_id VARCHAR(128) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		project_id UUID,
		content TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS device_tokens (
		token TEXT PRIMARY KEY,
		user_id VARCHAR(128) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		platform VARCHAR(20) NOT NULL,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE INDEX IF NOT EXISTS idx_gigs_status_deadline ON gigs(status, deadline)`,
	`CREATE INDEX IF NOT EXISTS idx_gigs_client_id ON gigs(client_id)`,
	`CREATE INDEX IF NOT EXISTS idx_gigs_created_at ON gigs(created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_portfolios_artist_id ON portfolios(artist_id)`,
	`CREATE INDEX IF NOT EXISTS idx_portfolio_items_portfolio ON portfolio_items(portfolio_id, display_order)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_user_id ON payments(user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_pending ON payments(status, created_at) WHERE status = 'PENDING'`,
	`CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages(sender_id, receiver_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_receiver_unread ON messages(receiver_id) WHERE is_read = FALSE`,
	`CREATE INDEX IF NOT EXISTS idx_device_tokens_user ON device_tokens(user_id, updated_at DESC)`,
}

// neighborhood seed: name, slug, latitude, longitude
var neighborhoodSeed = []struct {
	Name, Slug string
	Lat, Lng   float64
}{
	{"Williamsburg", "williamsburg", 40.7081, -73.9571},
	{"DUMBO", "dumbo", 40.7033, -73.9917},
	{"Park Slope", "park-slope", 40.6782, -73.9776},
	{"Bushwick", "bushwick", 40.6948, -73.9165},
	{"Red Hook", "red-hook", 40.6741, -74.0121},
	{"Carroll Gardens", "carroll-gardens", 40.6781, -73.9995},
	{"Cobble Hill", "cobble-hill", 40.6853, -73.9965},
	{"Brooklyn Heights", "brooklyn-heights", 40.6962, -73.9935},
	{"Fort Greene", "fort-greene", 40.6914, -73.9740},
	{"Prospect Heights", "prospect-heights", 40.6788, -73.9708},
	{"Gowanus", "gowanus", 40.6740, -73.9885},
	{"Sunset Park", "sunset-park", 40.6531, -74.0137},
	{"Bay Ridge", "bay-ridge", 40.6263, -74.0276},
	{"Crown Heights", "crown-heights", 40.6683, -73.9442},
	{"Bed-Stuy", "bed-stuy", 40.6895, -73.9441},
}

// RunMigrations creates the schema and seeds the neighborhood catalogue
func RunMigrations(ctx context.Context, db *sqlx.DB, log *logging.Logger) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			if !strings.Contains(err.Error(), "already exists") {
				return fmt.Errorf("migration %d failed: %w", i+1, err)
			}
			log.Debug("migration skipped", "step", i+1)
		}
	}
	log.Info("schema up to date", "statements", len(schema))

	seeded := 0
	for _, n := range neighborhoodSeed {
		res, err := db.ExecContext(ctx, `
			INSERT INTO neighborhoods (name, slug, latitude, longitude)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (slug) DO NOTHING`,
			n.Name, n.Slug, n.Lat, n.Lng,
		)
		if err != nil {
			return fmt.Errorf("failed to seed neighborhood %s: %w", n.Slug, err)
		}
		if rows, _ := res.RowsAffected(); rows > 0 {
			seeded++
		}
	}
	if seeded > 0 {
		log.Info("neighborhoods seeded", "count", seeded)
	}

	return nil
}

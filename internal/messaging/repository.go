// internal/messaging/repository.go

package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repository defines the message repository interface
type Repository interface {
	Create(ctx context.Context, msg *Message) error
	ListConversations(ctx context.Context, userID string) ([]*Conversation, error)
	// ListThread returns up to limit messages between the two users created
	// before the cursor, newest first.
	ListThread(ctx context.Context, userID, peerID string, before *time.Time, limit int) ([]*Message, error)
	MarkRead(ctx context.Context, userID, peerID string) (int64, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, msg *Message) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO messages (sender_id, receiver_id, project_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_read, created_at`,
		msg.SenderID, msg.ReceiverID, msg.ProjectID, msg.Content,
	).Scan(&msg.ID, &msg.Read, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListConversations(ctx context.Context, userID string) ([]*Conversation, error) {
	query := `
		WITH mine AS (
			SELECT
				CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END AS peer_id,
				receiver_id, content, is_read, created_at
			FROM messages
			WHERE sender_id = $1 OR receiver_id = $1
		), latest AS (
			SELECT DISTINCT ON (peer_id) peer_id, content, created_at
			FROM mine
			ORDER BY peer_id, created_at DESC
		)
		SELECT
			l.peer_id,
			TRIM(u.first_name || ' ' || u.last_name) AS peer_name,
			l.content AS last_message,
			l.created_at AS last_message_at,
			(SELECT COUNT(*) FROM mine m
			 WHERE m.peer_id = l.peer_id AND m.receiver_id = $1 AND NOT m.is_read) AS unread_count
		FROM latest l
		JOIN users u ON u.id = l.peer_id
		ORDER BY l.created_at DESC`

	var out []*Conversation
	if err := r.db.SelectContext(ctx, &out, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return out, nil
}

func (r *postgresRepository) ListThread(ctx context.Context, userID, peerID string, before *time.Time, limit int) ([]*Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, project_id, content, is_read, created_at
		FROM messages
		WHERE ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
		  AND ($3::timestamptz IS NULL OR created_at < $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4`

	var out []*Message
	if err := r.db.SelectContext(ctx, &out, query, userID, peerID, before, limit); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return out, nil
}

// MarkRead marks every unread message from peerID to userID as read
func (r *postgresRepository) MarkRead(ctx context.Context, userID, peerID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE messages SET is_read = TRUE
		WHERE receiver_id = $1 AND sender_id = $2 AND NOT is_read`,
		userID, peerID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	return res.RowsAffected()
}

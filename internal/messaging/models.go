// internal/messaging/models.go
// Data models for direct messages

package messaging

import (
	"encoding/json"
	"time"
)

// Message is a direct message between two users
type Message struct {
	ID         string    `json:"id" db:"id"`
	SenderID   string    `json:"senderId" db:"sender_id"`
	ReceiverID string    `json:"receiverId" db:"receiver_id"`
	ProjectID  *string   `json:"projectId" db:"project_id"`
	Content    string    `json:"content" db:"content"`
	Read       bool      `json:"read" db:"is_read"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// Conversation summarises the thread with one peer
type Conversation struct {
	PeerID        string    `json:"peerId" db:"peer_id"`
	PeerName      string    `json:"peerName" db:"peer_name"`
	LastMessage   string    `json:"lastMessage" db:"last_message"`
	LastMessageAt time.Time `json:"lastMessageAt" db:"last_message_at"`
	UnreadCount   int       `json:"unreadCount" db:"unread_count"`
}

// EventType names a websocket frame
type EventType string

const (
	EventMessage EventType = "message"
	EventRead    EventType = "read"
	EventSent    EventType = "sent"
	EventError   EventType = "error"
)

// Event is the envelope for every websocket frame in both directions
type Event struct {
	Type      EventType       `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// ReadReceipt is pushed to the sender when their messages are read
type ReadReceipt struct {
	ReaderID string `json:"readerId"`
	Count    int64  `json:"count"`
}

// Request DTOs

type SendMessageRequest struct {
	ReceiverID string  `json:"receiverId" validate:"required,max=128"`
	Content    string  `json:"content" validate:"required,min=1,max=5000"`
	ProjectID  *string `json:"projectId,omitempty" validate:"omitempty,uuid"`
}

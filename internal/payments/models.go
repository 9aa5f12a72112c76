// internal/payments/models.go
// Data models for payments

package payments

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Status is the payment lifecycle state
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusRefunded  Status = "REFUNDED"
)

// Metadata is stored as JSONB
type Metadata struct {
	Type      string    `json:"type"`
	SessionID string    `json:"sessionId"`
	Timestamp time.Time `json:"timestamp"`
}

// Value implements driver.Valuer
func (m Metadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements sql.Scanner
func (m *Metadata) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*m = Metadata{}
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported metadata type %T", src)
	}
}

// Payment is a recorded payment attempt
type Payment struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"userId" db:"user_id"`
	ProjectID   *string   `json:"projectId" db:"project_id"`
	Amount      float64   `json:"amount" db:"amount"`
	Fee         float64   `json:"fee" db:"fee"`
	NetAmount   float64   `json:"netAmount" db:"net_amount"`
	Status      Status    `json:"status" db:"status"`
	Type        string    `json:"type" db:"type"`
	Description string    `json:"description" db:"description"`
	Metadata    Metadata  `json:"metadata" db:"metadata"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// CheckoutSession is the simulated hosted-checkout handle returned to the client
type CheckoutSession struct {
	ID        string  `json:"id"`
	URL       string  `json:"url"`
	PaymentID string  `json:"paymentId"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
}

// Request DTOs

// CreateSessionRequest bounds amount to what a NUMERIC(12,2) column holds
type CreateSessionRequest struct {
	Type        string   `json:"type" validate:"required,max=50"`
	Amount      *float64 `json:"amount" validate:"required,gt=0,lte=9999999999.99"`
	ProjectID   *string  `json:"projectId,omitempty" validate:"omitempty,uuid"`
	Description string   `json:"description,omitempty" validate:"max=1000"`
}

// SessionResponse is returned by POST /api/v1/payments/sessions
type SessionResponse struct {
	CheckoutSession CheckoutSession `json:"checkoutSession"`
	PaymentID       string          `json:"paymentId"`
	Message         string          `json:"message"`
}

// internal/auth/models.go
// Data models for authentication

package auth

import (
	"strings"
	"time"
)

// Role is the marketplace side a user belongs to
type Role string

const (
	RoleArtist Role = "ARTIST"
	RoleClient Role = "CLIENT"
)

// ParseRole accepts a role in any letter case
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleArtist:
		return RoleArtist, true
	case RoleClient:
		return RoleClient, true
	}
	return "", false
}

// User represents a user in the system
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash *string   `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	FirstName    string    `json:"firstName" db:"first_name"`
	LastName     string    `json:"lastName" db:"last_name"`
	Phone        *string   `json:"phone,omitempty" db:"phone"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// DisplayName is the name shown to other users
func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Principal is the verified identity attached to an authenticated request
type Principal struct {
	UserID string
	Email  string
	Role   Role
}

// Request DTOs

type RegisterRequest struct {
	Email       string  `json:"email" validate:"required,email,max=255"`
	Password    string  `json:"password" validate:"required,min=8,max=72"`
	Role        string  `json:"role" validate:"required,oneof=ARTIST CLIENT"`
	FirstName   string  `json:"firstName" validate:"required,max=100"`
	LastName    string  `json:"lastName" validate:"required,max=100"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,e164"`
	CompanyName *string `json:"companyName,omitempty" validate:"omitempty,max=200"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// ProvisionRequest creates the local record for a user who signed up with the
// external identity provider
type ProvisionRequest struct {
	Role        string  `json:"role" validate:"required,oneof=ARTIST CLIENT"`
	FirstName   string  `json:"firstName" validate:"required,max=100"`
	LastName    string  `json:"lastName" validate:"required,max=100"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,e164"`
	CompanyName *string `json:"companyName,omitempty" validate:"omitempty,max=200"`
}

// AuthResponse is returned by register, login and refresh
type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int    `json:"expiresIn"`
	User         *User  `json:"user"`
}

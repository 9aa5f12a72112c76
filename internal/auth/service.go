// internal/auth/service.go
// Business logic for registration, sign-in and token issuance

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/brooklyncreativehub/hub-backend/internal/common/logging"
	"github.com/brooklyncreativehub/hub-backend/internal/common/utils"
	"github.com/brooklyncreativehub/hub-backend/internal/notification"
)

// Common errors
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailAlreadyExists  = errors.New("user already exists")
	ErrInvalidRole         = errors.New("invalid role")
	ErrInvalidToken        = errors.New("invalid token")
	ErrTooManyAttempts     = errors.New("too many attempts")
	ErrAlreadyProvisioned  = errors.New("account already set up")
	ErrProvisioningEnabled = errors.New("password sign-in is disabled")
)

// Service interface
type Service interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error)
	Provision(ctx context.Context, principal *Principal, req *ProvisionRequest) (*User, error)
	GetUserByID(ctx context.Context, userID string) (*User, error)
}

// AttemptCounter tracks failed sign-ins per email
type AttemptCounter interface {
	Hit(ctx context.Context, id string) (int64, error)
	Exceeded(ctx context.Context, id string) (bool, error)
	Reset(ctx context.Context, id string) error
}

// WelcomeNotifier sends the welcome message after registration
type WelcomeNotifier interface {
	SendWelcome(ctx context.Context, to notification.Recipient) error
}

// RoleClaimSetter writes the role claim back to an external identity provider
type RoleClaimSetter interface {
	SetRoleClaim(ctx context.Context, uid string, role Role) error
}

// Config holds service configuration
type Config struct {
	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	BCryptCost         int
}

type service struct {
	repo     Repository
	attempts AttemptCounter
	welcome  WelcomeNotifier
	claims   RoleClaimSetter
	config   *Config
	log      *logging.Logger
}

// NewService creates a new auth service. claims may be nil when tokens are
// issued locally.
func NewService(repo Repository, attempts AttemptCounter, welcome WelcomeNotifier, claims RoleClaimSetter, config *Config, log *logging.Logger) Service {
	return &service{
		repo:     repo,
		attempts: attempts,
		welcome:  welcome,
		claims:   claims,
		config:   config,
		log:      log,
	}
}

// Register creates a user with a password and returns a token pair
func (s *service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	role, ok := ParseRole(req.Role)
	if !ok {
		return nil, ErrInvalidRole
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BCryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hashStr := string(hash)

	user := &User{
		Email:        email,
		PasswordHash: &hashStr,
		Role:         role,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        req.Phone,
	}
	if err := s.repo.CreateUser(ctx, user, req.CompanyName); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.sendWelcome(user)

	return s.issueTokens(user)
}

// Login verifies a password and returns a token pair
func (s *service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if s.attempts != nil {
		exceeded, err := s.attempts.Exceeded(ctx, email)
		if err != nil {
			s.log.Warn("failed to read login attempts", "err", err)
		}
		if exceeded {
			return nil, ErrTooManyAttempts
		}
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.recordFailedAttempt(ctx, email)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if user.PasswordHash == nil {
		return nil, ErrProvisioningEnabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		s.recordFailedAttempt(ctx, email)
		return nil, ErrInvalidCredentials
	}

	if s.attempts != nil {
		if err := s.attempts.Reset(ctx, email); err != nil {
			s.log.Warn("failed to reset login attempts", "err", err)
		}
	}

	return s.issueTokens(user)
}

// RefreshToken exchanges a refresh token for a new pair, reloading the user
// so the new access token carries the current role
func (s *service) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := utils.ValidateJWT(refreshToken, s.config.JWTSecret)
	if err != nil || claims.Type != utils.TokenTypeRefresh {
		return nil, ErrInvalidToken
	}

	user, err := s.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return s.issueTokens(user)
}

// Provision creates the local record for an externally authenticated user
// and stamps their role onto the identity provider
func (s *service) Provision(ctx context.Context, principal *Principal, req *ProvisionRequest) (*User, error) {
	role, ok := ParseRole(req.Role)
	if !ok {
		return nil, ErrInvalidRole
	}

	if _, err := s.repo.GetUserByID(ctx, principal.UserID); err == nil {
		return nil, ErrAlreadyProvisioned
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}

	user := &User{
		ID:        principal.UserID,
		Email:     strings.ToLower(principal.Email),
		Role:      role,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     req.Phone,
	}
	if err := s.repo.CreateUser(ctx, user, req.CompanyName); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.claims != nil {
		if err := s.claims.SetRoleClaim(ctx, user.ID, role); err != nil {
			return nil, fmt.Errorf("failed to set role claim: %w", err)
		}
	}

	s.sendWelcome(user)

	return user, nil
}

func (s *service) GetUserByID(ctx context.Context, userID string) (*User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

func (s *service) issueTokens(user *User) (*AuthResponse, error) {
	now := time.Now()

	access, err := utils.GenerateJWT(&utils.JWTClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      string(user.Role),
		Type:      utils.TokenTypeAccess,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.config.AccessTokenExpiry),
	}, s.config.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh, err := utils.GenerateJWT(&utils.JWTClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      string(user.Role),
		Type:      utils.TokenTypeRefresh,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.config.RefreshTokenExpiry),
	}, s.config.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.config.AccessTokenExpiry.Seconds()),
		User:         user,
	}, nil
}

func (s *service) recordFailedAttempt(ctx context.Context, email string) {
	if s.attempts == nil {
		return
	}
	if _, err := s.attempts.Hit(ctx, email); err != nil {
		s.log.Warn("failed to record login attempt", "err", err)
	}
}

// sendWelcome delivers in the background; failures are only logged
func (s *service) sendWelcome(user *User) {
	if s.welcome == nil {
		return
	}
	to := notification.Recipient{
		UserID: user.ID,
		Name:   user.DisplayName(),
		Email:  user.Email,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.welcome.SendWelcome(ctx, to); err != nil {
			s.log.Warn("welcome email failed", "user_id", to.UserID, "err", err)
		}
	}()
}

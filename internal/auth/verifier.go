// internal/auth/verifier.go
// Token verification backends

package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/brooklyncreativehub/hub-backend/internal/common/utils"
)

// TokenVerifier turns a bearer token into a Principal
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

// jwtVerifier checks access tokens issued by this API
type jwtVerifier struct {
	secret string
}

// NewJWTVerifier creates a verifier for locally issued tokens
func NewJWTVerifier(secret string) TokenVerifier {
	return &jwtVerifier{secret: secret}
}

func (v *jwtVerifier) Verify(ctx context.Context, token string) (*Principal, error) {
	claims, err := utils.ValidateJWT(token, v.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Type != utils.TokenTypeAccess {
		return nil, fmt.Errorf("%w: not an access token", ErrInvalidToken)
	}

	return &Principal{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   Role(claims.Role),
	}, nil
}

// FirebaseVerifier checks Firebase ID tokens and reads the "role" custom claim
type FirebaseVerifier struct {
	client *fbauth.Client
}

// NewFirebaseVerifier initializes the Firebase Admin SDK from a service
// account file
func NewFirebaseVerifier(ctx context.Context, credentialsFile string) (*FirebaseVerifier, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth: %w", err)
	}

	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*Principal, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	email, _ := decoded.Claims["email"].(string)
	role, _ := decoded.Claims["role"].(string)

	return &Principal{
		UserID: decoded.UID,
		Email:  email,
		Role:   Role(role),
	}, nil
}

// SetRoleClaim stores the role as a custom claim; it appears in ID tokens
// minted after the client refreshes
func (v *FirebaseVerifier) SetRoleClaim(ctx context.Context, uid string, role Role) error {
	return v.client.SetCustomUserClaims(ctx, uid, map[string]interface{}{
		"role": string(role),
	})
}

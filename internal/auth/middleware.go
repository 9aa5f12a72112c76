// internal/auth/middleware.go
// Authentication and role middleware

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/brooklyncreativehub/hub-backend/internal/common/logging"
	"github.com/brooklyncreativehub/hub-backend/internal/common/utils"
)

type contextKey string

const principalKey contextKey = "principal"

// Middleware provides authentication middleware
type Middleware struct {
	verifier TokenVerifier
	log      *logging.Logger
}

// NewMiddleware creates a new auth middleware
func NewMiddleware(verifier TokenVerifier, log *logging.Logger) *Middleware {
	return &Middleware{
		verifier: verifier,
		log:      log,
	}
}

// Authenticate rejects the request with 401 unless it carries a valid token,
// and stores the caller's Principal in the request context
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		principal, err := m.verifier.Verify(r.Context(), token)
		if err != nil {
			m.log.Debug("token rejected", "path", r.URL.Path, "err", err)
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

// RequireRole allows the request only when the verified role claim matches.
// Must run after Authenticate.
func RequireRole(role Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok || principal.Role != role {
				utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractToken reads "Authorization: Bearer <token>". Browsers cannot set
// headers on websocket upgrades, so a token query parameter is accepted there.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return ""
		}
		return strings.TrimSpace(parts[1])
	}

	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return r.URL.Query().Get("token")
	}
	return ""
}

// WithPrincipal returns a copy of ctx carrying p
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext extracts the authenticated caller
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}

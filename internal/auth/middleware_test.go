package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/brooklyncreativehub/hub-backend/internal/common/logging"
)

func protectedRouter(v TokenVerifier, role Role, reached *bool) http.Handler {
	m := NewMiddleware(v, logging.Nop())
	r := chi.NewRouter()
	r.With(m.Authenticate, RequireRole(role)).Post("/protected", func(w http.ResponseWriter, r *http.Request) {
		*reached = true
		p, _ := PrincipalFromContext(r.Context())
		w.Write([]byte(p.UserID))
	})
	return r
}

func TestAuthenticateAndRequireRole(t *testing.T) {
	v := &staticVerifier{principals: map[string]*Principal{
		"artist-token": {UserID: "u-artist", Role: RoleArtist},
		"client-token": {UserID: "u-client", Role: RoleClient},
	}}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantReach  bool
	}{
		{"missing header", "", http.StatusUnauthorized, false},
		{"wrong scheme", "Basic artist-token", http.StatusUnauthorized, false},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, false},
		{"wrong role", "Bearer client-token", http.StatusUnauthorized, false},
		{"artist", "Bearer artist-token", http.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached := false
			h := protectedRouter(v, RoleArtist, &reached)

			req := httptest.NewRequest(http.MethodPost, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if reached != tt.wantReach {
				t.Errorf("handler reached = %v, want %v", reached, tt.wantReach)
			}
			if rec.Code == http.StatusUnauthorized {
				var body map[string]string
				if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body["error"] == "" {
					t.Errorf("body = %v (%v), want {\"error\": ...}", body, err)
				}
			}
		})
	}
}

func TestAuthenticate_WebsocketQueryToken(t *testing.T) {
	v := &staticVerifier{principals: map[string]*Principal{"t": {UserID: "u1", Role: RoleClient}}}
	reached := false
	h := protectedRouter(v, RoleClient, &reached)

	req := httptest.NewRequest(http.MethodPost, "/protected?token=t", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("query token without upgrade: status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/protected?token=t", nil)
	req.Header.Set("Upgrade", "websocket")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !reached {
		t.Errorf("query token on upgrade: status = %d, reached = %v", rec.Code, reached)
	}
}

func TestJWTVerifier_RejectsRefreshToken(t *testing.T) {
	svc := newTestService(newFakeRepo(), nil, nil, nil)
	resp, err := svc.Register(context.Background(), registerReq())
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	v := NewJWTVerifier(testSecret)
	if _, err := v.Verify(context.Background(), resp.RefreshToken); err == nil {
		t.Error("refresh token accepted as access token")
	}
	p, err := v.Verify(context.Background(), resp.AccessToken)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if p.Role != RoleArtist {
		t.Errorf("Role = %q, want ARTIST", p.Role)
	}
}

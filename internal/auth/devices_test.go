package auth

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/brooklyncreativehub/hub-backend/internal/common/logging"
)

type memDevices struct {
	mu     sync.Mutex
	owners map[string]string
}

func (d *memDevices) RegisterDevice(ctx context.Context, userID, token, platform string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.owners[token] = userID
	return nil
}

func (d *memDevices) DeleteDevice(ctx context.Context, userID, token string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.owners[token] == userID {
		delete(d.owners, token)
	}
	return nil
}

func (d *memDevices) ListDeviceTokens(ctx context.Context, userID string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []string
	for token, owner := range d.owners {
		if owner == userID {
			out = append(out, token)
		}
	}
	return out, nil
}

func (d *memDevices) RemoveDeviceTokens(ctx context.Context, userID string, tokens []string) error {
	for _, token := range tokens {
		d.DeleteDevice(ctx, userID, token)
	}
	return nil
}

func TestDeviceHandlers(t *testing.T) {
	devices := &memDevices{owners: map[string]string{}}
	verifier := &staticVerifier{principals: map[string]*Principal{
		"maya": {UserID: "user-1", Role: RoleArtist},
		"jo":   {UserID: "user-2", Role: RoleClient},
	}}
	r := chi.NewRouter()
	RegisterDeviceRoutes(r, NewDeviceHandler(devices, logging.Nop()), NewMiddleware(verifier, logging.Nop()))

	tests := []struct {
		name   string
		method string
		token  string
		body   string
		want   int
	}{
		{"unauthenticated", http.MethodPost, "", `{"token":"fcm-1","platform":"ios"}`, http.StatusUnauthorized},
		{"missing token", http.MethodPost, "maya", `{"platform":"ios"}`, http.StatusBadRequest},
		{"unknown platform", http.MethodPost, "maya", `{"token":"fcm-1","platform":"blackberry"}`, http.StatusBadRequest},
		{"registered", http.MethodPost, "maya", `{"token":"fcm-1","platform":"ios"}`, http.StatusCreated},
		{"other user cannot remove it", http.MethodDelete, "jo", `{"token":"fcm-1"}`, http.StatusOK},
		{"second user registers", http.MethodPost, "jo", `{"token":"fcm-2","platform":"android"}`, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/devices", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}

	tokens, _ := devices.ListDeviceTokens(context.Background(), "user-1")
	if len(tokens) != 1 || tokens[0] != "fcm-1" {
		t.Errorf("user-1 tokens = %v, want [fcm-1]", tokens)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/devices", bytes.NewBufferString(`{"token":"fcm-1"}`))
	req.Header.Set("Authorization", "Bearer maya")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", rec.Code)
	}
	if tokens, _ := devices.ListDeviceTokens(context.Background(), "user-1"); len(tokens) != 0 {
		t.Errorf("user-1 tokens after delete = %v, want none", tokens)
	}
}

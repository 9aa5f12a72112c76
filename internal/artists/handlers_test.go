package artists

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/brooklyncreativehub/hub-backend/internal/auth"
	"github.com/brooklyncreativehub/hub-backend/internal/common/logging"
)

type tokenVerifier map[string]*auth.Principal

func (v tokenVerifier) Verify(ctx context.Context, token string) (*auth.Principal, error) {
	if p, ok := v[token]; ok {
		return p, nil
	}
	return nil, auth.ErrInvalidToken
}

func newTestRouter(repo *memRepo, storage Storage) http.Handler {
	verifier := tokenVerifier{
		"artist": {UserID: "owner", Role: auth.RoleArtist},
		"client": {UserID: "client", Role: auth.RoleClient},
	}
	r := chi.NewRouter()
	RegisterRoutes(r,
		NewHandler(NewService(repo, storage, logging.Nop()), 1<<20, logging.Nop()),
		auth.NewMiddleware(verifier, logging.Nop()))
	return r
}

func TestRoutes_Authorization(t *testing.T) {
	repo := newMemRepo()
	repo.addProfile("owner")
	h := newTestRouter(repo, &memStorage{})

	tests := []struct {
		name, path, token string
		want              int
	}{
		{"anonymous me", "/api/v1/artists/me", "", http.StatusUnauthorized},
		{"client me", "/api/v1/artists/me", "client", http.StatusUnauthorized},
		{"artist me", "/api/v1/artists/me", "artist", http.StatusOK},
		{"public browse", "/api/v1/artists", "", http.StatusOK},
		{"malformed id", "/api/v1/artists/not-a-uuid", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestAddPortfolioItemHandler(t *testing.T) {
	repo := newMemRepo()
	repo.addProfile("owner")
	storage := &memStorage{}
	h := newTestRouter(repo, storage)

	svc := NewService(repo, storage, logging.Nop())
	portfolio, err := svc.CreatePortfolio(context.Background(), "owner", &CreatePortfolioRequest{Title: "Murals"})
	if err != nil {
		t.Fatalf("CreatePortfolio() error: %v", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("title", "Coffee shop wall")
	mw.WriteField("category", "muralist")
	mw.WriteField("tags", "mural,spray paint")
	mw.WriteField("displayOrder", "2")
	fw, _ := mw.CreateFormFile("image", "wall.png")
	fw.Write(pngHeader)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/artists/me/portfolios/"+portfolio.ID+"/items", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer artist")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", rec.Code, rec.Body.String())
	}

	var item PortfolioItem
	if err := json.NewDecoder(rec.Body).Decode(&item); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if item.Category != "MURALIST" || item.DisplayOrder != 2 || len(item.Tags) != 2 {
		t.Errorf("item = %+v", item)
	}
	if item.ImageURL == nil {
		t.Error("expected image url")
	}
}

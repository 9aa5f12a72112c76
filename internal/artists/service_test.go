package artists

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/brooklyncreativehub/hub-backend/internal/common/logging"
)

type memRepo struct {
	mu         sync.Mutex
	profiles   map[string]*ArtistProfile // by user id
	portfolios map[string]*Portfolio
	items      map[string]*PortfolioItem
	seq        int
	failCreate bool
}

func newMemRepo() *memRepo {
	return &memRepo{
		profiles:   make(map[string]*ArtistProfile),
		portfolios: make(map[string]*Portfolio),
		items:      make(map[string]*PortfolioItem),
	}
}

func (m *memRepo) nextID() string {
	m.seq++
	return fmt.Sprintf("00000000-0000-0000-0000-%012d", m.seq)
}

func (m *memRepo) addProfile(userID string) *ArtistProfile {
	p := &ArtistProfile{ID: m.nextID(), UserID: userID, DisplayName: userID, IsOpenToWork: true}
	m.profiles[userID] = p
	return p
}

func (m *memRepo) GetProfileByUserID(ctx context.Context, userID string) (*ArtistProfile, error) {
	if p, ok := m.profiles[userID]; ok {
		return p, nil
	}
	return nil, ErrProfileNotFound
}

func (m *memRepo) GetProfileByID(ctx context.Context, id string) (*ArtistProfile, error) {
	for _, p := range m.profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, ErrProfileNotFound
}

func (m *memRepo) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*ArtistProfile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	if req.Skills != nil {
		p.Skills = req.Skills
	}
	if req.Bio != nil {
		p.Bio = *req.Bio
	}
	return p, nil
}

func (m *memRepo) Browse(ctx context.Context, filter *BrowseFilter) ([]*ArtistProfile, error) {
	return nil, nil
}

func (m *memRepo) CreatePortfolio(ctx context.Context, p *Portfolio) error {
	p.ID = m.nextID()
	p.CreatedAt = time.Now()
	m.portfolios[p.ID] = p
	return nil
}

func (m *memRepo) GetPortfolio(ctx context.Context, id string) (*Portfolio, error) {
	if p, ok := m.portfolios[id]; ok {
		return p, nil
	}
	return nil, ErrPortfolioNotFound
}

func (m *memRepo) ListPortfolios(ctx context.Context, artistID string, publicOnly bool) ([]*Portfolio, error) {
	var out []*Portfolio
	for _, p := range m.portfolios {
		if p.ArtistID == artistID && (!publicOnly || p.IsPublic) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memRepo) ListItems(ctx context.Context, portfolioIDs []string) ([]*PortfolioItem, error) {
	var out []*PortfolioItem
	for _, id := range portfolioIDs {
		for _, item := range m.items {
			if item.PortfolioID == id {
				out = append(out, item)
			}
		}
	}
	return out, nil
}

func (m *memRepo) ListFlattenedItems(ctx context.Context, artistID string) ([]*PortfolioItem, error) {
	var ids []string
	for _, p := range m.portfolios {
		if p.ArtistID == artistID {
			ids = append(ids, p.ID)
		}
	}
	return m.ListItems(ctx, ids)
}

func (m *memRepo) CreateItem(ctx context.Context, item *PortfolioItem) error {
	if m.failCreate {
		return errors.New("insert failed")
	}
	item.ID = m.nextID()
	m.items[item.ID] = item
	return nil
}

func (m *memRepo) GetItem(ctx context.Context, id string) (*PortfolioItem, error) {
	if item, ok := m.items[id]; ok {
		return item, nil
	}
	return nil, ErrItemNotFound
}

func (m *memRepo) DeleteItem(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return ErrItemNotFound
	}
	delete(m.items, id)
	return nil
}

type memStorage struct {
	saved   []string
	deleted []string
}

func (s *memStorage) Save(ctx context.Context, folder string, content io.Reader) (string, error) {
	if _, err := io.ReadAll(content); err != nil {
		return "", err
	}
	url := fmt.Sprintf("https://cdn.test/%s/%d.png", folder, len(s.saved))
	s.saved = append(s.saved, url)
	return url, nil
}

func (s *memStorage) Delete(ctx context.Context, url string) error {
	s.deleted = append(s.deleted, url)
	return nil
}

func TestGetMatchingProfile(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, &memStorage{}, logging.Nop())
	ctx := context.Background()

	if _, err := svc.GetMatchingProfile(ctx, "nobody"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("error = %v, want ErrProfileNotFound", err)
	}

	repo.addProfile("artist-1")
	first, _ := svc.CreatePortfolio(ctx, "artist-1", &CreatePortfolioRequest{Title: "Murals"})
	second, _ := svc.CreatePortfolio(ctx, "artist-1", &CreatePortfolioRequest{Title: "Prints"})
	for _, p := range []*Portfolio{first, second} {
		if _, err := svc.AddPortfolioItem(ctx, "artist-1", p.ID, &CreateItemRequest{Title: "Work in " + p.Title}, nil); err != nil {
			t.Fatalf("AddPortfolioItem() error: %v", err)
		}
	}

	mp, err := svc.GetMatchingProfile(ctx, "artist-1")
	if err != nil {
		t.Fatalf("GetMatchingProfile() error: %v", err)
	}
	if mp.Profile.UserID != "artist-1" {
		t.Errorf("Profile.UserID = %q", mp.Profile.UserID)
	}
	if len(mp.Items) != 2 {
		t.Errorf("len(Items) = %d, want items flattened across both portfolios", len(mp.Items))
	}
}

func TestAddPortfolioItem(t *testing.T) {
	repo := newMemRepo()
	storage := &memStorage{}
	svc := NewService(repo, storage, logging.Nop())
	ctx := context.Background()

	repo.addProfile("owner")
	repo.addProfile("intruder")
	portfolio, err := svc.CreatePortfolio(ctx, "owner", &CreatePortfolioRequest{Title: "Street Art"})
	if err != nil {
		t.Fatalf("CreatePortfolio() error: %v", err)
	}
	if !portfolio.IsPublic {
		t.Error("portfolios default to public")
	}

	t.Run("normalizes fields and stores image", func(t *testing.T) {
		item, err := svc.AddPortfolioItem(ctx, "owner", portfolio.ID, &CreateItemRequest{
			Title: " Bushwick wall ",
			Tags:  []string{"mural", " Mural", "", "spray paint"},
		}, bytes.NewReader([]byte("png")))
		if err != nil {
			t.Fatalf("AddPortfolioItem() error: %v", err)
		}
		if item.Title != "Bushwick wall" || item.Category != "OTHER" {
			t.Errorf("item = %+v", item)
		}
		if len(item.Tags) != 2 {
			t.Errorf("Tags = %v, want [mural spray paint]", item.Tags)
		}
		if item.ImageURL == nil || *item.ImageURL != storage.saved[0] {
			t.Errorf("ImageURL = %v, want %q", item.ImageURL, storage.saved[0])
		}
	})

	t.Run("foreign portfolio is not found", func(t *testing.T) {
		_, err := svc.AddPortfolioItem(ctx, "intruder", portfolio.ID, &CreateItemRequest{Title: "x"}, nil)
		if !errors.Is(err, ErrPortfolioNotFound) {
			t.Errorf("error = %v, want ErrPortfolioNotFound", err)
		}
	})

	t.Run("image removed when insert fails", func(t *testing.T) {
		repo.failCreate = true
		defer func() { repo.failCreate = false }()

		if _, err := svc.AddPortfolioItem(ctx, "owner", portfolio.ID, &CreateItemRequest{Title: "x"}, bytes.NewReader([]byte("png"))); err == nil {
			t.Fatal("expected error")
		}
		last := storage.saved[len(storage.saved)-1]
		if len(storage.deleted) == 0 || storage.deleted[len(storage.deleted)-1] != last {
			t.Errorf("deleted = %v, want %q removed", storage.deleted, last)
		}
	})
}

func TestDeletePortfolioItem(t *testing.T) {
	repo := newMemRepo()
	storage := &memStorage{}
	svc := NewService(repo, storage, logging.Nop())
	ctx := context.Background()

	repo.addProfile("owner")
	mine, _ := svc.CreatePortfolio(ctx, "owner", &CreatePortfolioRequest{Title: "A"})
	other, _ := svc.CreatePortfolio(ctx, "owner", &CreatePortfolioRequest{Title: "B"})
	item, err := svc.AddPortfolioItem(ctx, "owner", mine.ID, &CreateItemRequest{Title: "x"}, bytes.NewReader([]byte("png")))
	if err != nil {
		t.Fatalf("AddPortfolioItem() error: %v", err)
	}

	if err := svc.DeletePortfolioItem(ctx, "owner", other.ID, item.ID); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("delete through wrong portfolio: error = %v, want ErrItemNotFound", err)
	}

	if err := svc.DeletePortfolioItem(ctx, "owner", mine.ID, item.ID); err != nil {
		t.Fatalf("DeletePortfolioItem() error: %v", err)
	}
	if len(storage.deleted) != 1 || storage.deleted[0] != *item.ImageURL {
		t.Errorf("deleted = %v, want the item image", storage.deleted)
	}
	if _, err := repo.GetItem(ctx, item.ID); !errors.Is(err, ErrItemNotFound) {
		t.Error("item still present")
	}
}

func TestGetPublicProfile_HidesPrivatePortfolios(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, &memStorage{}, logging.Nop())
	ctx := context.Background()

	profile := repo.addProfile("owner")
	private := false
	svc.CreatePortfolio(ctx, "owner", &CreatePortfolioRequest{Title: "Public"})
	svc.CreatePortfolio(ctx, "owner", &CreatePortfolioRequest{Title: "Drafts", IsPublic: &private})

	pub, err := svc.GetPublicProfile(ctx, profile.ID)
	if err != nil {
		t.Fatalf("GetPublicProfile() error: %v", err)
	}
	if len(pub.Portfolios) != 1 || pub.Portfolios[0].Title != "Public" {
		t.Errorf("Portfolios = %+v, want only the public one", pub.Portfolios)
	}

	mine, err := svc.ListMyPortfolios(ctx, "owner")
	if err != nil {
		t.Fatalf("ListMyPortfolios() error: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("owner sees %d portfolios, want 2", len(mine))
	}
}

func TestBrowse_ClampsLimit(t *testing.T) {
	svc := NewService(newMemRepo(), &memStorage{}, logging.Nop())

	tests := []struct{ in, want int }{
		{0, defaultBrowseLimit},
		{-5, defaultBrowseLimit},
		{50, 50},
		{1000, maxBrowseLimit},
	}
	for _, tt := range tests {
		f := &BrowseFilter{Limit: tt.in}
		profiles, err := svc.Browse(context.Background(), f)
		if err != nil {
			t.Fatalf("Browse() error: %v", err)
		}
		if f.Limit != tt.want {
			t.Errorf("limit %d -> %d, want %d", tt.in, f.Limit, tt.want)
		}
		if profiles == nil {
			t.Error("Browse() should return an empty slice, not nil")
		}
	}
}

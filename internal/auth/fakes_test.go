package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brooklyncreativehub/hub-backend/internal/notification"
)

type fakeRepo struct {
	mu    sync.Mutex
	users map[string]*User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[string]*User)}
}

func (f *fakeRepo) CreateUser(ctx context.Context, user *User, companyName *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrEmailAlreadyExists
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeRepo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeRepo) GetUserByID(ctx context.Context, id string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, ErrUserNotFound
}

type fakeAttempts struct {
	mu     sync.Mutex
	counts map[string]int64
	limit  int64
}

func newFakeAttempts(limit int64) *fakeAttempts {
	return &fakeAttempts{counts: make(map[string]int64), limit: limit}
}

func (f *fakeAttempts) Hit(ctx context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[id]++
	return f.counts[id], nil
}

func (f *fakeAttempts) Exceeded(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[id] >= f.limit, nil
}

func (f *fakeAttempts) Reset(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.counts, id)
	return nil
}

type fakeWelcome struct {
	sent chan notification.Recipient
}

func newFakeWelcome() *fakeWelcome {
	return &fakeWelcome{sent: make(chan notification.Recipient, 4)}
}

func (f *fakeWelcome) SendWelcome(ctx context.Context, to notification.Recipient) error {
	f.sent <- to
	return nil
}

type fakeClaims struct {
	roles map[string]Role
}

func (f *fakeClaims) SetRoleClaim(ctx context.Context, uid string, role Role) error {
	if f.roles == nil {
		f.roles = make(map[string]Role)
	}
	f.roles[uid] = role
	return nil
}

type staticVerifier struct {
	principals map[string]*Principal
	calls      int
}

func (v *staticVerifier) Verify(ctx context.Context, token string) (*Principal, error) {
	v.calls++
	if p, ok := v.principals[token]; ok {
		return p, nil
	}
	return nil, ErrInvalidToken
}

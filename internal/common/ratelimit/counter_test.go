package ratelimit

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

func TestCounter_DisabledWithoutRedis(t *testing.T) {
	ctx := context.Background()
	c := NewCounter(nil, "test", 1, time.Minute)

	for i := 0; i < 5; i++ {
		ok, err := c.Allow(ctx, "artist-1")
		if err != nil {
			t.Fatalf("Allow() error: %v", err)
		}
		if !ok {
			t.Fatalf("Allow() = false on call %d, want true without redis", i+1)
		}
	}

	exceeded, err := c.Exceeded(ctx, "artist-1")
	if err != nil || exceeded {
		t.Errorf("Exceeded() = %v, %v; want false, nil", exceeded, err)
	}
	if err := c.Reset(ctx, "artist-1"); err != nil {
		t.Errorf("Reset() error: %v", err)
	}
}

func TestCounter_NilReceiver(t *testing.T) {
	var c *Counter
	if ok, err := c.Allow(context.Background(), "x"); !ok || err != nil {
		t.Errorf("nil Counter Allow() = %v, %v; want true, nil", ok, err)
	}
}

type fakeStore struct {
	counts    map[string]int64
	ttls      map[string]time.Duration
	expireErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{counts: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (f *fakeStore) Incr(ctx context.Context, key string) *redis.IntCmd {
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeStore) TTL(ctx context.Context, key string) *redis.DurationCmd {
	if _, ok := f.counts[key]; !ok {
		return redis.NewDurationResult(-2, nil)
	}
	if d, ok := f.ttls[key]; ok {
		return redis.NewDurationResult(d, nil)
	}
	return redis.NewDurationResult(-1, nil)
}

func (f *fakeStore) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	if f.expireErr != nil {
		err := f.expireErr
		f.expireErr = nil
		return redis.NewBoolResult(false, err)
	}
	f.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (f *fakeStore) Get(ctx context.Context, key string) *redis.StringCmd {
	n, ok := f.counts[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(strconv.FormatInt(n, 10), nil)
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.counts[k]; ok {
			n++
		}
		delete(f.counts, k)
		delete(f.ttls, k)
	}
	return redis.NewIntResult(n, nil)
}

func newTestCounter(s store, limit int) *Counter {
	return &Counter{store: s, prefix: "test", limit: int64(limit), window: time.Minute}
}

func TestCounter_AllowUpToLimit(t *testing.T) {
	ctx := context.Background()
	s := newFakeStore()
	c := newTestCounter(s, 2)

	for i, want := range []bool{true, true, false} {
		ok, err := c.Allow(ctx, "artist-1")
		if err != nil {
			t.Fatalf("Allow() error: %v", err)
		}
		if ok != want {
			t.Errorf("Allow() call %d = %v, want %v", i+1, ok, want)
		}
	}
	if s.ttls["test:artist-1"] != time.Minute {
		t.Errorf("window = %s, want 1m", s.ttls["test:artist-1"])
	}

	exceeded, err := c.Exceeded(ctx, "artist-1")
	if err != nil || !exceeded {
		t.Errorf("Exceeded() = %v, %v; want true, nil", exceeded, err)
	}
	if err := c.Reset(ctx, "artist-1"); err != nil {
		t.Fatalf("Reset() error: %v", err)
	}
	if exceeded, _ := c.Exceeded(ctx, "artist-1"); exceeded {
		t.Error("Exceeded() = true after Reset")
	}
}

func TestCounter_RepairsMissingWindow(t *testing.T) {
	ctx := context.Background()
	s := newFakeStore()
	s.expireErr = errors.New("connection reset")
	c := newTestCounter(s, 5)

	if _, err := c.Hit(ctx, "user-1"); err == nil {
		t.Fatal("Hit() error = nil, want the failed Expire reported")
	}
	if _, ok := s.ttls["test:user-1"]; ok {
		t.Fatal("window set despite the Expire failure")
	}

	n, err := c.Hit(ctx, "user-1")
	if err != nil {
		t.Fatalf("Hit() error: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
	if s.ttls["test:user-1"] != time.Minute {
		t.Errorf("window = %s, want the key to expire after 1m", s.ttls["test:user-1"])
	}
}

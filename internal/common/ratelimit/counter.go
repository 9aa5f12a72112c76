// internal/common/ratelimit/counter.go
// Fixed-window counters backed by Redis

package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// store is the subset of the Redis client a Counter uses
type store interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Counter counts events per key inside a fixed window. A Counter with a nil
// Redis client counts nothing and allows everything, so the API keeps working
// when Redis is not configured.
type Counter struct {
	store  store
	prefix string
	limit  int64
	window time.Duration
}

// NewCounter creates a counter allowing limit events per window. A limit of
// zero or less disables limiting.
func NewCounter(client *redis.Client, prefix string, limit int, window time.Duration) *Counter {
	c := &Counter{
		prefix: prefix,
		limit:  int64(limit),
		window: window,
	}
	if client != nil {
		c.store = client
	}
	return c
}

func (c *Counter) enabled() bool {
	return c != nil && c.store != nil && c.limit > 0
}

func (c *Counter) key(id string) string {
	return fmt.Sprintf("%s:%s", c.prefix, id)
}

// Hit records one event and returns the count inside the current window
func (c *Counter) Hit(ctx context.Context, id string) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}

	key := c.key(id)
	n, err := c.store.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to record hit: %w", err)
	}

	// the first hit opens the window; a key left without a TTL by an earlier
	// failed Expire gets one on the next hit
	needsWindow := n == 1
	if !needsWindow {
		ttl, err := c.store.TTL(ctx, key).Result()
		if err != nil {
			return n, fmt.Errorf("failed to read window: %w", err)
		}
		needsWindow = ttl < 0
	}
	if needsWindow {
		if err := c.store.Expire(ctx, key, c.window).Err(); err != nil {
			return n, fmt.Errorf("failed to set window: %w", err)
		}
	}
	return n, nil
}

// Allow records one event and reports whether it is within the limit
func (c *Counter) Allow(ctx context.Context, id string) (bool, error) {
	if !c.enabled() {
		return true, nil
	}
	n, err := c.Hit(ctx, id)
	if err != nil {
		return false, err
	}
	return n <= c.limit, nil
}

// Exceeded reports whether the limit has been reached without recording anything
func (c *Counter) Exceeded(ctx context.Context, id string) (bool, error) {
	if !c.enabled() {
		return false, nil
	}
	n, err := c.store.Get(ctx, c.key(id)).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read counter: %w", err)
	}
	return n >= c.limit, nil
}

// Reset clears the counter for id
func (c *Counter) Reset(ctx context.Context, id string) error {
	if !c.enabled() {
		return nil
	}
	return c.store.Del(ctx, c.key(id)).Err()
}

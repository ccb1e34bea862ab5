package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// store is the consumer interface for window counters (ISP).
type store interface {
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Store keeps fixed-window hit counters (INCRBY + EXPIRE NX).
type Store struct {
	store store
}

// New creates a window counter store.
func New(s store) *Store {
	return &Store{store: s}
}

// Hit increments the counter at key and returns the count within its window.
// ttl should cover at least one full window.
func (s *Store) Hit(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	n, err := s.store.IncrBy(ctx, key, 1)
	if err != nil {
		return 0, fmt.Errorf("ratelimit INCRBY %s: %w", key, err)
	}

	// Set TTL only if the key has no expiry yet (NX, not reset on repeat).
	if err := s.store.Expire(ctx, key, ttl, true); err != nil {
		return 0, fmt.Errorf("ratelimit EXPIRE %s: %w", key, err)
	}
	return n, nil
}

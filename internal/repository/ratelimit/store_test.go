package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

type mockStore struct {
	incrByFn func(ctx context.Context, key string, val int64) (int64, error)
	expireFn func(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

func (m *mockStore) IncrBy(ctx context.Context, key string, val int64) (int64, error) {
	if m.incrByFn != nil {
		return m.incrByFn(ctx, key, val)
	}
	return val, nil
}

func (m *mockStore) Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error {
	if m.expireFn != nil {
		return m.expireFn(ctx, key, ttl, nx)
	}
	return nil
}

func TestHit_IncrementsAndSetsTTL(t *testing.T) {
	var gotTTL time.Duration
	var gotNX bool
	ms := &mockStore{
		incrByFn: func(_ context.Context, key string, val int64) (int64, error) {
			if key != "k" || val != 1 {
				t.Errorf("unexpected INCRBY %s %d", key, val)
			}
			return 4, nil
		},
		expireFn: func(_ context.Context, _ string, ttl time.Duration, nx bool) error {
			gotTTL, gotNX = ttl, nx
			return nil
		},
	}

	n, err := New(ms).Hit(context.Background(), "k", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4, got %d", n)
	}
	if gotTTL != time.Minute || !gotNX {
		t.Errorf("expected EXPIRE 60s NX, got %v nx=%v", gotTTL, gotNX)
	}
}

func TestHit_IncrError(t *testing.T) {
	ms := &mockStore{
		incrByFn: func(context.Context, string, int64) (int64, error) { return 0, errors.New("down") },
		expireFn: func(context.Context, string, time.Duration, bool) error {
			t.Fatal("EXPIRE must not run after failed INCRBY")
			return nil
		},
	}

	if _, err := New(ms).Hit(context.Background(), "k", time.Minute); err == nil {
		t.Fatal("expected error")
	}
}

func TestHit_ExpireError(t *testing.T) {
	ms := &mockStore{
		expireFn: func(context.Context, string, time.Duration, bool) error { return errors.New("readonly") },
	}

	if _, err := New(ms).Hit(context.Background(), "k", time.Minute); err == nil {
		t.Fatal("expected error")
	}
}

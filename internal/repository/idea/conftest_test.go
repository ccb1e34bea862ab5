package idea

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/ideaboard/internal/db"
	domidea "github.com/kailas-cloud/ideaboard/internal/domain/idea"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn         func(ctx context.Context, key string, fields map[string]string) error
	hgetallFn      func(ctx context.Context, key string) (map[string]string, error)
	hgetallMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	hdelFn         func(ctx context.Context, key string, fields ...string) error
	hincrbyFloorFn func(ctx context.Context, key, field string, delta, floor int64) (int64, error)
	existsFn       func(ctx context.Context, key string) (bool, error)
	scanFn         func(ctx context.Context, pattern string) ([]string, error)
	createIndexFn  func(ctx context.Context, def *db.IndexDefinition) error
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetallFn != nil {
		return m.hgetallFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetallMultiFn != nil {
		return m.hgetallMultiFn(ctx, keys)
	}
	return make([]map[string]string, len(keys)), nil
}

func (m *mockStore) HDel(ctx context.Context, key string, fields ...string) error {
	if m.hdelFn != nil {
		return m.hdelFn(ctx, key, fields...)
	}
	return nil
}

func (m *mockStore) HIncrByFloor(ctx context.Context, key, field string, delta, floor int64) (int64, error) {
	if m.hincrbyFloorFn != nil {
		return m.hincrbyFloorFn(ctx, key, field, delta, floor)
	}
	return max(delta, floor), nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

var testTime = time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

func testIdea(t *testing.T, id string) domidea.Idea {
	t.Helper()
	i, err := domidea.New(id, "author-1", domidea.Content{
		Title:    "Carpool matcher",
		Problem:  "Commuters from the same suburb drive alone every day.",
		Category: "mobility",
	}, testTime)
	if err != nil {
		t.Fatalf("domidea.New: %v", err)
	}
	return i
}

package comment

import (
	"context"
	"strconv"
	"testing"

	"github.com/kailas-cloud/ideaboard/internal/db"
)

// mockStore keeps hashes and lists in memory.
type mockStore struct {
	hashes map[string]map[string]string
	lists  map[string][]string

	rpushErr  error
	lrangeErr error
}

func newMockStore() *mockStore {
	return &mockStore{hashes: map[string]map[string]string{}, lists: map[string][]string{}}
}

func (m *mockStore) HSet(_ context.Context, key string, fields map[string]string) error {
	h, ok := m.hashes[key]
	if !ok {
		h = map[string]string{}
		m.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

func (m *mockStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	h, ok := m.hashes[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return h, nil
}

func (m *mockStore) HGetAllMulti(_ context.Context, keys []string) ([]map[string]string, error) {
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		out[i] = m.hashes[k]
	}
	return out, nil
}

func (m *mockStore) HIncrBy(_ context.Context, key, field string, delta int64) (int64, error) {
	h := m.hashes[key]
	if h == nil {
		h = map[string]string{}
		m.hashes[key] = h
	}
	n, _ := strconv.ParseInt(h[field], 10, 64)
	n += delta
	h[field] = strconv.FormatInt(n, 10)
	return n, nil
}

func (m *mockStore) RPush(_ context.Context, key string, values ...string) error {
	if m.rpushErr != nil {
		return m.rpushErr
	}
	m.lists[key] = append(m.lists[key], values...)
	return nil
}

func (m *mockStore) LRange(_ context.Context, key string, _, _ int64) ([]string, error) {
	if m.lrangeErr != nil {
		return nil, m.lrangeErr
	}
	return m.lists[key], nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := newMockStore()
	return New(ms), ms
}

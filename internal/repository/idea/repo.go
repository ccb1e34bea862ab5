package idea

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/ideaboard/internal/db"
	"github.com/kailas-cloud/ideaboard/internal/domain"
	domidea "github.com/kailas-cloud/ideaboard/internal/domain/idea"
)

const fetchChunk = 100

// store is the consumer interface for ideas (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error
	HIncrByFloor(ctx context.Context, key, field string, delta, floor int64) (int64, error)
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
}

// IndexConfig controls the HNSW vector index over idea embeddings.
type IndexConfig struct {
	Dimensions     int
	M              int
	EFConstruction int
}

// Repo implements the idea repository on top of hashes.
type Repo struct {
	store store
}

// New creates an idea repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// EnsureIndex creates the idea FT index. An existing index is left as is.
func (r *Repo) EnsureIndex(ctx context.Context, cfg IndexConfig) error {
	def, err := db.NewIndex(IndexName).
		Prefix(KeyPrefix).
		Tag(fieldCategory).
		Numeric(fieldVotes).
		VectorHNSW(fieldVector, "vector", cfg.Dimensions, cfg.M, cfg.EFConstruction).
		Build()
	if err != nil {
		return fmt.Errorf("build idea index: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create idea index: %w", err)
	}
	return nil
}

// Create stores a new idea. Returns ErrAlreadyExists if the ID is taken.
func (r *Repo) Create(ctx context.Context, i *domidea.Idea) error {
	key := ideaKey(i.ID())
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if exists {
		return fmt.Errorf("idea %s: %w", i.ID(), domain.ErrAlreadyExists)
	}
	if err := r.store.HSet(ctx, key, buildHashFields(i, true)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// Update rewrites the idea's content fields. A missing embedding removes any stored vector.
func (r *Repo) Update(ctx context.Context, i *domidea.Idea) error {
	key := ideaKey(i.ID())
	if err := r.store.HSet(ctx, key, buildHashFields(i, false)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	if !i.HasEmbedding() {
		if err := r.store.HDel(ctx, key, fieldVector); err != nil {
			return fmt.Errorf("hdel vector %s: %w", key, err)
		}
	}
	return nil
}

// Get returns an idea by ID.
func (r *Repo) Get(ctx context.Context, id string) (domidea.Idea, error) {
	key := ideaKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domidea.Idea{}, fmt.Errorf("idea %s: %w", id, domain.ErrNotFound)
		}
		return domidea.Idea{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	return parseHashFields(id, m), nil
}

// Exists reports whether an idea is stored.
func (r *Repo) Exists(ctx context.Context, id string) (bool, error) {
	ok, err := r.store.Exists(ctx, ideaKey(id))
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", id, err)
	}
	return ok, nil
}

// SetEmbedding stores the vector for an existing idea.
func (r *Repo) SetEmbedding(ctx context.Context, id string, vec []float32) error {
	key := ideaKey(id)
	if err := r.store.HSet(ctx, key, map[string]string{fieldVector: vectorToBytes(vec)}); err != nil {
		return fmt.Errorf("hset vector %s: %w", key, err)
	}
	return nil
}

// AddVotes applies delta and returns the new count. The count never drops below zero.
func (r *Repo) AddVotes(ctx context.Context, id string, delta int64) (int64, error) {
	key := ideaKey(id)
	n, err := r.store.HIncrByFloor(ctx, key, fieldVotes, delta, 0)
	if err != nil {
		return 0, fmt.Errorf("add votes %s: %w", key, err)
	}
	return n, nil
}

// ListMissingEmbedding returns ideas without a stored vector, ordered by ID.
// limit <= 0 means no limit.
func (r *Repo) ListMissingEmbedding(ctx context.Context, limit int) ([]domidea.Idea, error) {
	keys, err := r.store.Scan(ctx, KeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan ideas: %w", err)
	}
	slices.Sort(keys)

	var out []domidea.Idea
	for chunk := range slices.Chunk(keys, fetchChunk) {
		hashes, err := r.store.HGetAllMulti(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("fetch ideas: %w", err)
		}
		for j, m := range hashes {
			// key may have been deleted between SCAN and HGETALL
			if len(m) == 0 || m[fieldVector] != "" {
				continue
			}
			id := strings.TrimPrefix(chunk[j], KeyPrefix)
			out = append(out, parseHashFields(id, m))
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
		}
	}
	return out, nil
}

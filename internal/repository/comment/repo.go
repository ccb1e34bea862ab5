package comment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/ideaboard/internal/db"
	"github.com/kailas-cloud/ideaboard/internal/domain"
	domcomment "github.com/kailas-cloud/ideaboard/internal/domain/comment"
)

var (
	commentPrefix = domain.KeyPrefix + "comment:"
	threadPrefix  = domain.KeyPrefix + "thread:"
)

// store is the consumer interface for comments (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error)
	RPush(ctx context.Context, key string, values ...string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
}

// Repo stores comments as hashes plus one arrival-ordered ID list per idea.
type Repo struct {
	store store
}

// New creates a comment repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Append stores a comment and adds it to the end of its idea's thread.
func (r *Repo) Append(ctx context.Context, c *domcomment.Comment) error {
	key := commentPrefix + c.ID
	if err := r.store.HSet(ctx, key, toHash(c)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	if err := r.store.RPush(ctx, threadPrefix+c.IdeaID, c.ID); err != nil {
		return fmt.Errorf("rpush thread %s: %w", c.IdeaID, err)
	}
	return nil
}

// Get returns a single comment.
func (r *Repo) Get(ctx context.Context, id string) (domcomment.Comment, error) {
	m, err := r.store.HGetAll(ctx, commentPrefix+id)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domcomment.Comment{}, fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
		}
		return domcomment.Comment{}, fmt.Errorf("hgetall comment %s: %w", id, err)
	}
	return fromHash(id, m), nil
}

// ListByIdea returns the idea's comments in arrival order. IDs whose hash is gone are skipped.
func (r *Repo) ListByIdea(ctx context.Context, ideaID string) ([]domcomment.Comment, error) {
	ids, err := r.store.LRange(ctx, threadPrefix+ideaID, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("lrange thread %s: %w", ideaID, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = commentPrefix + id
	}
	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch comments %s: %w", ideaID, err)
	}

	out := make([]domcomment.Comment, 0, len(ids))
	for i, m := range hashes {
		if len(m) == 0 {
			continue
		}
		out = append(out, fromHash(ids[i], m))
	}
	return out, nil
}

// Upvote increments a comment's upvotes and returns the new count.
func (r *Repo) Upvote(ctx context.Context, id string) (int64, error) {
	n, err := r.store.HIncrBy(ctx, commentPrefix+id, "upvotes", 1)
	if err != nil {
		return 0, fmt.Errorf("hincrby comment %s: %w", id, err)
	}
	return n, nil
}

func toHash(c *domcomment.Comment) map[string]string {
	return map[string]string{
		"idea_id":    c.IdeaID,
		"parent_id":  c.ParentID,
		"author_id":  c.AuthorID,
		"body":       c.Body,
		"upvotes":    strconv.FormatInt(c.Upvotes, 10),
		"created_at": strconv.FormatInt(c.CreatedAt.UnixMilli(), 10),
	}
}

func fromHash(id string, m map[string]string) domcomment.Comment {
	upvotes, _ := strconv.ParseInt(m["upvotes"], 10, 64)
	var created time.Time
	if ms, err := strconv.ParseInt(m["created_at"], 10, 64); err == nil && ms > 0 {
		created = time.UnixMilli(ms).UTC()
	}
	return domcomment.Comment{
		ID:        id,
		IdeaID:    m["idea_id"],
		ParentID:  m["parent_id"],
		AuthorID:  m["author_id"],
		Body:      m["body"],
		Upvotes:   upvotes,
		CreatedAt: created,
	}
}

package comment

import (
	"context"

	domcomment "github.com/kailas-cloud/ideaboard/internal/domain/comment"
)

// Repository defines the storage contract for comments.
type Repository interface {
	Append(ctx context.Context, c *domcomment.Comment) error
	Get(ctx context.Context, id string) (domcomment.Comment, error)
	ListByIdea(ctx context.Context, ideaID string) ([]domcomment.Comment, error)
	Upvote(ctx context.Context, id string) (int64, error)
}

// IdeaChecker checks that the idea a thread belongs to exists.
type IdeaChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

package chi

import (
	"context"

	dombackfill "github.com/kailas-cloud/ideaboard/internal/domain/backfill"
	domcomment "github.com/kailas-cloud/ideaboard/internal/domain/comment"
	domidea "github.com/kailas-cloud/ideaboard/internal/domain/idea"
	domsim "github.com/kailas-cloud/ideaboard/internal/domain/similarity"
	backfilluc "github.com/kailas-cloud/ideaboard/internal/usecase/backfill"
	commentuc "github.com/kailas-cloud/ideaboard/internal/usecase/comment"
	healthuc "github.com/kailas-cloud/ideaboard/internal/usecase/health"
	ratelimituc "github.com/kailas-cloud/ideaboard/internal/usecase/ratelimit"
	similarityuc "github.com/kailas-cloud/ideaboard/internal/usecase/similarity"
)

// IdeaService handles idea CRUD and votes.
type IdeaService interface {
	Create(ctx context.Context, authorID string, c domidea.Content) (domidea.Idea, error)
	Get(ctx context.Context, id string) (domidea.Idea, error)
	Update(ctx context.Context, id string, c domidea.Content) (domidea.Idea, error)
	Vote(ctx context.Context, id string, delta int) (int64, error)
}

// SimilarityService finds similar ideas; it never fails.
type SimilarityService interface {
	FindSimilar(ctx context.Context, req similarityuc.Request) []domsim.Match
}

// CommentService serves comment threads.
type CommentService interface {
	Thread(ctx context.Context, ideaID string) (commentuc.Thread, error)
	Create(ctx context.Context, in commentuc.CreateInput) (domcomment.Comment, error)
	Upvote(ctx context.Context, commentID string) (int64, error)
}

// BackfillService embeds ideas stored without a vector.
type BackfillService interface {
	Run(ctx context.Context, opts backfilluc.Options) (dombackfill.Report, error)
}

// HealthService aggregates component checks.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// RateLimiter decides whether a client may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, rule ratelimituc.Rule, client string) ratelimituc.Decision
}

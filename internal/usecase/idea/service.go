package idea

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ideaboard/internal/domain"
	domidea "github.com/kailas-cloud/ideaboard/internal/domain/idea"
	"github.com/kailas-cloud/ideaboard/internal/logger"
)

// Service handles idea CRUD and voting. Writes never fail because of the embedding
// provider: an idea stored without a vector is picked up by the backfill.
type Service struct {
	repo   Repository
	embed  Embedder
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// New creates an idea service.
func New(repo Repository, embed Embedder, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		embed:  embed,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// Create validates and stores a new idea with a fresh UUID.
func (s *Service) Create(ctx context.Context, authorID string, c domidea.Content) (domidea.Idea, error) {
	it, err := domidea.New(s.newID(), authorID, c, s.now())
	if err != nil {
		return domidea.Idea{}, fmt.Errorf("new idea: %w", err)
	}

	s.tryEmbed(ctx, &it)

	if err := s.repo.Create(ctx, &it); err != nil {
		return domidea.Idea{}, fmt.Errorf("create idea: %w", err)
	}
	return it, nil
}

// Get returns an idea by ID.
func (s *Service) Get(ctx context.Context, id string) (domidea.Idea, error) {
	it, err := s.repo.Get(ctx, id)
	if err != nil {
		return domidea.Idea{}, fmt.Errorf("get idea: %w", err)
	}
	return it, nil
}

// Update replaces the editable content. The vector is recomputed only when the
// embedded text changed.
func (s *Service) Update(ctx context.Context, id string, c domidea.Content) (domidea.Idea, error) {
	cur, err := s.repo.Get(ctx, id)
	if err != nil {
		return domidea.Idea{}, fmt.Errorf("get idea: %w", err)
	}

	next, err := cur.WithContent(c, s.now())
	if err != nil {
		return domidea.Idea{}, fmt.Errorf("update content: %w", err)
	}
	if !next.HasEmbedding() {
		s.tryEmbed(ctx, &next)
	}

	if err := s.repo.Update(ctx, &next); err != nil {
		return domidea.Idea{}, fmt.Errorf("update idea: %w", err)
	}
	return next, nil
}

// Vote applies +1 or -1 and returns the new vote count.
func (s *Service) Vote(ctx context.Context, id string, delta int) (int64, error) {
	if delta != 1 && delta != -1 {
		return 0, domain.NewValidationError("delta", "must be 1 or -1")
	}
	ok, err := s.repo.Exists(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("check idea: %w", err)
	}
	if !ok {
		return 0, fmt.Errorf("idea %s: %w", id, domain.ErrNotFound)
	}

	votes, err := s.repo.AddVotes(ctx, id, int64(delta))
	if err != nil {
		return 0, fmt.Errorf("vote: %w", err)
	}
	return votes, nil
}

func (s *Service) tryEmbed(ctx context.Context, it *domidea.Idea) {
	res, err := s.embed.Embed(ctx, it.EmbeddingText())
	if err != nil {
		logger.FromContextOr(ctx, s.logger).Warn("Idea stored without embedding",
			zap.String("idea_id", it.ID()),
			zap.Error(err),
		)
		return
	}
	it.SetEmbedding(res.Embedding)
}

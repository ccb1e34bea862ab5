// Package comment serves nested discussion threads under ideas.
package comment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ideaboard/internal/domain"
	domcomment "github.com/kailas-cloud/ideaboard/internal/domain/comment"
	"github.com/kailas-cloud/ideaboard/internal/logger"
)

// Thread is an idea's comment forest.
type Thread struct {
	Roots []*domcomment.Node
	Total int
}

// CreateInput is a new comment as submitted by a client.
type CreateInput struct {
	IdeaID   string
	ParentID string
	AuthorID string
	Body     string
}

// Service handles comment threads.
type Service struct {
	repo   Repository
	ideas  IdeaChecker
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// New creates a comment service.
func New(repo Repository, ideas IdeaChecker, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		ideas:  ideas,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// Thread returns the idea's comments as a forest in arrival order.
func (s *Service) Thread(ctx context.Context, ideaID string) (Thread, error) {
	if err := s.requireIdea(ctx, ideaID); err != nil {
		return Thread{}, err
	}

	flat, err := s.repo.ListByIdea(ctx, ideaID)
	if err != nil {
		return Thread{}, fmt.Errorf("list comments: %w", err)
	}

	if dups := domcomment.DuplicateIDs(flat); len(dups) > 0 {
		logger.FromContextOr(ctx, s.logger).Warn("Duplicate comment ids in thread, keeping first",
			zap.String("idea_id", ideaID),
			zap.Strings("comment_ids", dups),
		)
	}

	roots := domcomment.Organize(flat)
	return Thread{Roots: roots, Total: domcomment.CountAll(roots)}, nil
}

// Create validates and appends a comment. A reply's parent must exist under the same idea.
func (s *Service) Create(ctx context.Context, in CreateInput) (domcomment.Comment, error) {
	c := domcomment.Comment{
		ID:        s.newID(),
		IdeaID:    strings.TrimSpace(in.IdeaID),
		ParentID:  strings.TrimSpace(in.ParentID),
		AuthorID:  in.AuthorID,
		Body:      strings.TrimSpace(in.Body),
		CreatedAt: s.now(),
	}
	if err := c.Validate(); err != nil {
		return domcomment.Comment{}, fmt.Errorf("validate comment: %w", err)
	}
	if err := s.requireIdea(ctx, c.IdeaID); err != nil {
		return domcomment.Comment{}, err
	}

	if !c.IsRoot() {
		parent, err := s.repo.Get(ctx, c.ParentID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return domcomment.Comment{}, fmt.Errorf("parent %s: %w", c.ParentID, domain.ErrInvalidParent)
		case err != nil:
			return domcomment.Comment{}, fmt.Errorf("get parent: %w", err)
		case parent.IdeaID != c.IdeaID:
			return domcomment.Comment{}, fmt.Errorf("parent %s belongs to another idea: %w",
				c.ParentID, domain.ErrInvalidParent)
		}
	}

	if err := s.repo.Append(ctx, &c); err != nil {
		return domcomment.Comment{}, fmt.Errorf("append comment: %w", err)
	}
	return c, nil
}

// Upvote increments a comment's upvotes.
func (s *Service) Upvote(ctx context.Context, commentID string) (int64, error) {
	if _, err := s.repo.Get(ctx, commentID); err != nil {
		return 0, fmt.Errorf("get comment: %w", err)
	}
	n, err := s.repo.Upvote(ctx, commentID)
	if err != nil {
		return 0, fmt.Errorf("upvote: %w", err)
	}
	return n, nil
}

func (s *Service) requireIdea(ctx context.Context, ideaID string) error {
	ok, err := s.ideas.Exists(ctx, ideaID)
	if err != nil {
		return fmt.Errorf("check idea: %w", err)
	}
	if !ok {
		return fmt.Errorf("idea %s: %w", ideaID, domain.ErrNotFound)
	}
	return nil
}

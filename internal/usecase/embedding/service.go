// Package embedding turns text into vectors through the selected provider chain.
package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/ideaboard/internal/domain"
)

// Service is the embed entry point shared by similarity search, idea writes and backfill.
type Service struct {
	embedder   domain.Embedder
	dimensions int
}

// NewService creates the service. dimensions is the index vector size; 0 skips the check.
func NewService(embedder domain.Embedder, dimensions int) *Service {
	return &Service{embedder: embedder, dimensions: dimensions}
}

// Embed trims text, rejects blank input and checks the vector size of the result.
// Errors are returned to the caller as is; degrading is the caller's decision.
func (s *Service) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.EmbeddingResult{}, &domain.EmptyInputError{Field: "text"}
	}

	res, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	if err := domain.CheckDimensions(res.Embedding, s.dimensions); err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("provider %s: %w", res.Provider, err)
	}
	return res, nil
}

// Dimensions returns the expected vector size.
func (s *Service) Dimensions() int { return s.dimensions }

package embedding

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ideaboard/internal/domain"
	"github.com/kailas-cloud/ideaboard/internal/metrics"
)

// FallbackEmbedder tries the primary provider and, on failure, the fallback exactly once.
type FallbackEmbedder struct {
	primary  Candidate
	fallback Candidate
	logger   *zap.Logger
}

// NewFallbackEmbedder pairs two providers.
func NewFallbackEmbedder(primary, fallback Candidate, logger *zap.Logger) *FallbackEmbedder {
	return &FallbackEmbedder{primary: primary, fallback: fallback, logger: logger}
}

// Embed implements domain.Embedder.
func (f *FallbackEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := f.primary.Embedder.Embed(ctx, text)
	if err == nil {
		res.Provider = f.primary.Name
		return res, nil
	}

	// caller gave up; a second provider cannot help
	if ctx.Err() != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("%s: %w", f.primary.Name, err)
	}

	f.logger.Warn("Primary embedding provider failed, trying fallback",
		zap.String("primary", f.primary.Name),
		zap.String("fallback", f.fallback.Name),
		zap.Error(err),
	)

	res, ferr := f.fallback.Embedder.Embed(ctx, text)
	if ferr != nil {
		metrics.EmbeddingFallbacksTotal.WithLabelValues(f.primary.Name, f.fallback.Name, "error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("fallback %s after %s failure: %w", f.fallback.Name, f.primary.Name, ferr)
	}

	metrics.EmbeddingFallbacksTotal.WithLabelValues(f.primary.Name, f.fallback.Name, "success").Inc()
	res.Provider = f.fallback.Name
	return res, nil
}

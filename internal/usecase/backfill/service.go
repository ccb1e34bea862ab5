// Package backfill computes embeddings for ideas stored without one.
package backfill

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	dombackfill "github.com/kailas-cloud/ideaboard/internal/domain/backfill"
	domidea "github.com/kailas-cloud/ideaboard/internal/domain/idea"
	"github.com/kailas-cloud/ideaboard/internal/logger"
	"github.com/kailas-cloud/ideaboard/internal/metrics"
)

// DefaultConcurrency is the number of ideas embedded in parallel.
const DefaultConcurrency = 4

// Options tune one run.
type Options struct {
	// DryRun lists candidates without calling the provider.
	DryRun bool
	// Limit caps how many ideas are processed; 0 means all.
	Limit int
	// Concurrency overrides the service default when > 0.
	Concurrency int
}

// Service runs backfills. Safe to rerun: only ideas still missing a vector are touched.
type Service struct {
	ideas       IdeaStore
	embed       Embedder
	concurrency int
	logger      *zap.Logger
}

// New creates a backfill service.
func New(ideas IdeaStore, embed Embedder, concurrency int, logger *zap.Logger) *Service {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Service{ideas: ideas, embed: embed, concurrency: concurrency, logger: logger}
}

// Run embeds every pending idea. A failing idea is reported in the result and never
// stops the others; only listing failures abort the run.
func (s *Service) Run(ctx context.Context, opts Options) (dombackfill.Report, error) {
	log := logger.FromContextOr(ctx, s.logger)
	start := time.Now()

	pending, err := s.ideas.ListMissingEmbedding(ctx, opts.Limit)
	if err != nil {
		return dombackfill.Report{}, fmt.Errorf("list pending ideas: %w", err)
	}

	results := make([]dombackfill.Result, len(pending))

	if opts.DryRun {
		for i := range pending {
			results[i] = dombackfill.NewPending(pending[i].ID())
		}
		report := dombackfill.NewReport(results)
		report.DryRun = true
		log.Info("Backfill dry run", zap.Int("pending", report.Total))
		return report, nil
	}

	concurrency := s.concurrency
	if opts.Concurrency > 0 {
		concurrency = opts.Concurrency
	}

	var g errgroup.Group
	g.SetLimit(concurrency)

	for i := range pending {
		g.Go(func() error {
			results[i] = s.process(ctx, &pending[i])
			return nil
		})
	}
	_ = g.Wait() // workers report through results

	report := dombackfill.NewReport(results)
	log.Info("Backfill finished",
		zap.Int("total", report.Total),
		zap.Int("successful", report.Successful),
		zap.Int("failed", report.Failed),
		zap.Int("concurrency", concurrency),
		zap.Duration("duration", time.Since(start)),
	)
	return report, nil
}

func (s *Service) process(ctx context.Context, idea *domidea.Idea) dombackfill.Result {
	if err := ctx.Err(); err != nil {
		metrics.BackfillRecordsTotal.WithLabelValues(string(dombackfill.StatusError)).Inc()
		return dombackfill.NewError(idea.ID(), err)
	}

	emb, err := s.embed.Embed(ctx, idea.EmbeddingText())
	if err == nil {
		err = s.ideas.SetEmbedding(ctx, idea.ID(), emb.Embedding)
	}
	if err != nil {
		metrics.BackfillRecordsTotal.WithLabelValues(string(dombackfill.StatusError)).Inc()
		logger.FromContextOr(ctx, s.logger).Warn("Backfill record failed",
			zap.String("idea_id", idea.ID()),
			zap.Error(err),
		)
		return dombackfill.NewError(idea.ID(), err)
	}

	metrics.BackfillRecordsTotal.WithLabelValues(string(dombackfill.StatusOK)).Inc()
	return dombackfill.NewOK(idea.ID())
}

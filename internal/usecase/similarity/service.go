// Package similarity finds existing ideas that resemble a draft.
package similarity

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	domsim "github.com/kailas-cloud/ideaboard/internal/domain/similarity"
	"github.com/kailas-cloud/ideaboard/internal/logger"
	"github.com/kailas-cloud/ideaboard/internal/metrics"
)

// DefaultTimeout bounds embed plus search.
const DefaultTimeout = 3 * time.Second

// Request is a raw findSimilar call. A nil Threshold and a zero Limit select defaults.
type Request struct {
	Text      string
	Threshold *float64
	Limit     int
	ExcludeID string
}

// Service runs findSimilar. It never returns an error: every failure degrades to
// an empty list so the caller's compose flow is never blocked.
type Service struct {
	embed   Embedder
	search  Searcher
	limits  domsim.Limits
	timeout time.Duration
	logger  *zap.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLimits overrides the query bounds.
func WithLimits(l domsim.Limits) Option {
	return func(s *Service) { s.limits = l }
}

// WithTimeout overrides the embed+search deadline.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a similarity service.
func New(embed Embedder, search Searcher, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		embed:   embed,
		search:  search,
		limits:  domsim.DefaultLimits(),
		timeout: DefaultTimeout,
		logger:  logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// FindSimilar returns ideas similar to req.Text, best first. Read-only.
func (s *Service) FindSimilar(ctx context.Context, req Request) []domsim.Match {
	start := time.Now()
	q := domsim.NewQuery(req.Text, req.Threshold, req.Limit, req.ExcludeID, s.limits)

	matches, outcome := s.find(ctx, q)

	metrics.SimilarityRequestsTotal.WithLabelValues(outcome).Inc()
	if outcome != metrics.OutcomeTooShort {
		metrics.SimilarityDuration.Observe(time.Since(start).Seconds())
	}
	return matches
}

func (s *Service) find(ctx context.Context, q domsim.Query) ([]domsim.Match, string) {
	if q.TooShort(s.limits) {
		return []domsim.Match{}, metrics.OutcomeTooShort
	}

	log := logger.FromContextOr(ctx, s.logger)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	emb, err := s.embed.Embed(ctx, q.Text)
	if err != nil {
		outcome := degradedOutcome(err, metrics.OutcomeEmbedFailed)
		log.Warn("Similarity degraded: embed failed",
			zap.String("outcome", outcome),
			zap.Int("text_len", len(q.Text)),
			zap.Error(err),
		)
		return []domsim.Match{}, outcome
	}

	candidates, err := s.search.Nearest(ctx, emb.Embedding, q.CandidateCount())
	if err != nil {
		outcome := degradedOutcome(err, metrics.OutcomeSearchError)
		log.Warn("Similarity degraded: vector search failed",
			zap.String("outcome", outcome),
			zap.String("provider", emb.Provider),
			zap.Error(err),
		)
		return []domsim.Match{}, outcome
	}

	ranked := domsim.Rank(candidates, q)
	if len(ranked) == 0 {
		return ranked, metrics.OutcomeEmpty
	}
	return ranked, metrics.OutcomeOK
}

func degradedOutcome(err error, otherwise string) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return metrics.OutcomeTimeout
	}
	return otherwise
}

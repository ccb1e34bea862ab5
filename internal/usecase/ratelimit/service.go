// Package ratelimit applies fixed-window request limits per client.
package ratelimit

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ideaboard/internal/domain"
	"github.com/kailas-cloud/ideaboard/internal/logger"
	"github.com/kailas-cloud/ideaboard/internal/metrics"
)

const keyPrefix = domain.KeyPrefix + "ratelimit:"

// Counter increments a windowed counter.
type Counter interface {
	Hit(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Rule limits one route bucket. Max <= 0 disables it.
type Rule struct {
	Bucket string
	Max    int
	Window time.Duration
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter counts hits in the shared store, so every replica sees the same windows.
type Limiter struct {
	counter Counter
	logger  *zap.Logger
	now     func() time.Time
}

// New creates a limiter.
func New(counter Counter, logger *zap.Logger) *Limiter {
	return &Limiter{counter: counter, logger: logger, now: time.Now}
}

// Allow records a hit for client under rule. Store failures let the request through.
func (l *Limiter) Allow(ctx context.Context, rule Rule, client string) Decision {
	if rule.Max <= 0 || rule.Window <= 0 {
		return Decision{Allowed: true}
	}

	now := l.now()
	windowStart := now.Truncate(rule.Window)
	key := keyPrefix + rule.Bucket + ":" + client + ":" + strconv.FormatInt(windowStart.Unix(), 10)

	n, err := l.counter.Hit(ctx, key, rule.Window)
	if err != nil {
		logger.FromContextOr(ctx, l.logger).Warn("Rate limit store unavailable, allowing request",
			zap.String("bucket", rule.Bucket),
			zap.Error(err),
		)
		return Decision{Allowed: true, Limit: rule.Max, Remaining: rule.Max}
	}

	if n > int64(rule.Max) {
		metrics.RateLimitRejectedTotal.WithLabelValues(rule.Bucket).Inc()
		return Decision{
			Allowed:    false,
			Limit:      rule.Max,
			RetryAfter: windowStart.Add(rule.Window).Sub(now),
		}
	}
	return Decision{Allowed: true, Limit: rule.Max, Remaining: rule.Max - int(n)}
}

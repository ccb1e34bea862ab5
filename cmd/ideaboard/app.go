package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/ideaboard/internal/config"
	"github.com/kailas-cloud/ideaboard/internal/db"
	dbValkey "github.com/kailas-cloud/ideaboard/internal/db/valkey"
	"github.com/kailas-cloud/ideaboard/internal/domain"
	domsim "github.com/kailas-cloud/ideaboard/internal/domain/similarity"
	logpkg "github.com/kailas-cloud/ideaboard/internal/logger"
	"github.com/kailas-cloud/ideaboard/internal/metrics"
	commentrepo "github.com/kailas-cloud/ideaboard/internal/repository/comment"
	"github.com/kailas-cloud/ideaboard/internal/repository/embcache"
	idearepo "github.com/kailas-cloud/ideaboard/internal/repository/idea"
	ratelimitrepo "github.com/kailas-cloud/ideaboard/internal/repository/ratelimit"
	searchrepo "github.com/kailas-cloud/ideaboard/internal/repository/search"
	openaiEmb "github.com/kailas-cloud/ideaboard/internal/transport/openai"
	voyageEmb "github.com/kailas-cloud/ideaboard/internal/transport/voyage"
	backfilluc "github.com/kailas-cloud/ideaboard/internal/usecase/backfill"
	commentuc "github.com/kailas-cloud/ideaboard/internal/usecase/comment"
	embeddinguc "github.com/kailas-cloud/ideaboard/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/ideaboard/internal/usecase/health"
	ideauc "github.com/kailas-cloud/ideaboard/internal/usecase/idea"
	ratelimituc "github.com/kailas-cloud/ideaboard/internal/usecase/ratelimit"
	similarityuc "github.com/kailas-cloud/ideaboard/internal/usecase/similarity"
)

// app is the composition root shared by every subcommand.
type app struct {
	cfg    config.Config
	env    string
	logger *zap.Logger
	store  db.Store

	ideas    *ideauc.Service
	comments *commentuc.Service
	similar  *similarityuc.Service
	backfill *backfilluc.Service
	health   *healthuc.Service
	limiter  *ratelimituc.Limiter
}

// newApp connects to the database, ensures the index and wires all services.
func newApp(ctx context.Context) (*app, error) {
	cfg, env, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	a := &app{cfg: cfg, env: env, logger: logger}
	if err := a.wire(ctx); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context) error {
	cfg, logger := a.cfg, a.logger

	// redis и valkey говорят на одном протоколе
	switch cfg.Database.Driver {
	case "valkey", "redis":
	default:
		return fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
	store, err := dbValkey.NewStore(dbValkey.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		return fmt.Errorf("create database store: %w", err)
	}
	a.store = store

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database",
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterServiceMetrics()

	ideaRepo := idearepo.New(store)
	if err := ideaRepo.EnsureIndex(ctx, idearepo.IndexConfig{
		Dimensions:     cfg.Embedding.Dimensions,
		M:              cfg.Index.HNSWM,
		EFConstruction: cfg.Index.HNSWEFConstruct,
	}); err != nil {
		return fmt.Errorf("ensure idea index: %w", err)
	}

	sel, err := selectEmbedders(cfg.Embedding, store, logger)
	if err != nil {
		return err
	}
	embedSvc := embeddinguc.NewService(sel.Embedder(logger), cfg.Embedding.Dimensions)

	comments := commentrepo.New(store)
	a.ideas = ideauc.New(ideaRepo, embedSvc, logger)
	a.comments = commentuc.New(comments, ideaRepo, logger)
	a.similar = similarityuc.New(embedSvc, searchrepo.New(store), logger,
		similarityuc.WithLimits(domsim.Limits{
			MinChars:         cfg.Similarity.MinChars,
			DefaultThreshold: cfg.Similarity.DefaultThreshold,
			DefaultLimit:     cfg.Similarity.DefaultLimit,
			MaxLimit:         cfg.Similarity.MaxLimit,
		}),
		similarityuc.WithTimeout(cfg.Similarity.Timeout()),
	)
	a.backfill = backfilluc.New(ideaRepo, embedSvc, cfg.Backfill.Concurrency, logger)

	healthOpts := []healthuc.Option{
		healthuc.WithEmbedding(healthuc.CheckEmbeddingPrimary, healthCheckerOf(sel.Primary.Embedder)),
	}
	if sel.Fallback != nil {
		healthOpts = append(healthOpts,
			healthuc.WithEmbedding(healthuc.CheckEmbeddingFallback, healthCheckerOf(sel.Fallback.Embedder)))
	}
	a.health = healthuc.New(store, healthOpts...)

	if cfg.RateLimit.Enabled {
		a.limiter = ratelimituc.New(ratelimitrepo.New(store), logger)
	}
	return nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
	_ = a.logger.Sync()
}

// selectEmbedders builds both provider chains and picks primary and fallback.
// Chain per provider: adapter -> cache -> throttle+metrics.
func selectEmbedders(cfg config.EmbeddingConfig, store db.Store, logger *zap.Logger) (embeddinguc.Selection, error) {
	limiter := embeddinguc.NewLimiter(cfg.RequestsPerSecond, cfg.Burst)

	voyage := voyageEmb.NewEmbedder(voyageEmb.Config{
		APIKey:     cfg.Voyage.APIKey,
		BaseURL:    cfg.Voyage.BaseURL,
		Model:      cfg.Voyage.Model,
		Dimensions: cfg.Voyage.Dimensions,
		Timeout:    time.Duration(cfg.TimeoutSec) * time.Second,
		Logger:     logger,
	})
	openai := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		Model:      cfg.OpenAI.Model,
		Dimensions: cfg.OpenAI.Dimensions,
		Timeout:    time.Duration(cfg.TimeoutSec) * time.Second,
		Logger:     logger,
	})

	candidates := []embeddinguc.Candidate{
		candidate(voyageEmb.ProviderName, cfg.Voyage, voyage, cfg.Cache, store, limiter, logger),
		candidate(openaiEmb.ProviderName, cfg.OpenAI, openai, cfg.Cache, store, limiter, logger),
	}

	sel, err := embeddinguc.Select(cfg.Provider, candidates...)
	if err != nil {
		return embeddinguc.Selection{}, fmt.Errorf("select embedding provider: %w", err)
	}

	fields := []zap.Field{
		zap.String("primary", sel.Primary.Name),
		zap.String("model", sel.Primary.Model),
		zap.Int("dimensions", sel.Primary.Dimensions),
		zap.Bool("configured", sel.Primary.Configured),
	}
	if sel.Fallback != nil {
		fields = append(fields, zap.String("fallback", sel.Fallback.Name))
	}
	logger.Info("Embedders created", fields...)

	if !sel.Primary.Configured {
		logger.Warn("No embedding provider has an API key; similarity search is disabled")
	}
	if sel.FallbackSkipped != "" {
		logger.Warn("Fallback embedding provider disabled", zap.String("reason", sel.FallbackSkipped))
	}
	return sel, nil
}

func candidate(
	name string,
	pc config.ProviderConfig,
	base domain.Embedder,
	cache config.CacheConfig,
	store db.Store,
	limiter *rate.Limiter,
	logger *zap.Logger,
) embeddinguc.Candidate {
	emb := base
	if cache.Enabled {
		ns := fmt.Sprintf("%s:%s:%d", name, pc.Model, pc.Dimensions)
		emb = embcache.New(emb, store, ns, logger,
			embcache.WithTTL(cache.TTL()),
			embcache.WithMetrics(metrics.EmbeddingCacheTotal),
		)
	}
	emb = embeddinguc.NewInstrumentedEmbedder(emb, name, pc.Model, limiter, logger)

	return embeddinguc.Candidate{
		Name:       name,
		Model:      pc.Model,
		Dimensions: pc.Dimensions,
		Configured: pc.Configured(),
		Embedder:   emb,
	}
}

// healthCheckerOf returns e as a health checker, or nil (untyped) if it has none.
func healthCheckerOf(e domain.Embedder) healthuc.EmbeddingChecker {
	if hc, ok := e.(domain.HealthChecker); ok {
		return hc
	}
	return nil
}

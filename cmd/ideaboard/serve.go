package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	chiTransport "github.com/kailas-cloud/ideaboard/internal/transport/chi"
	ratelimituc "github.com/kailas-cloud/ideaboard/internal/usecase/ratelimit"
	"github.com/kailas-cloud/ideaboard/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		return runServer(a)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServer(a *app) error {
	cfg, logger := a.cfg, a.logger

	logger.Info("Starting ideaboard API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", a.env),
		zap.Int("http_port", cfg.HTTP.Port),
	)

	deps := chiTransport.Deps{
		Ideas:      a.ideas,
		Similarity: a.similar,
		Comments:   a.comments,
		Backfill:   a.backfill,
		Health:     a.health,
		Logger:     logger,
	}
	// nil *Limiter must not become a non-nil interface
	if a.limiter != nil {
		deps.Limiter = a.limiter
	}

	server := chiTransport.NewServer(deps, chiTransport.Options{
		APIKeys: cfg.Auth.APIKeys,
		SimilarRule: ratelimituc.Rule{
			Bucket: "similar",
			Max:    cfg.RateLimit.Similar.MaxRequests,
			Window: cfg.RateLimit.Similar.Window(),
		},
		CommentRule: ratelimituc.Rule{
			Bucket: "comments",
			Max:    cfg.RateLimit.Comments.MaxRequests,
			Window: cfg.RateLimit.Comments.Window(),
		},
		MaxBodyBytes: int64(cfg.HTTP.MaxBodyKB) << 10,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Handler(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-quit:
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ideaboard/internal/domain"
	"github.com/kailas-cloud/ideaboard/internal/metrics"
)

func fallbackPair(primary, fallback *mockEmbedder) *FallbackEmbedder {
	return NewFallbackEmbedder(
		Candidate{Name: "voyage", Dimensions: 2, Configured: true, Embedder: primary},
		Candidate{Name: "openai", Dimensions: 2, Configured: true, Embedder: fallback},
		zap.NewNop(),
	)
}

func TestFallbackEmbedder_PrimarySucceeds(t *testing.T) {
	primary := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 0}}}
	fallback := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0, 1}}}

	res, err := fallbackPair(primary, fallback).Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Provider != "voyage" {
		t.Errorf("Provider = %q, want voyage", res.Provider)
	}
	if fallback.callCount() != 0 {
		t.Errorf("fallback must not be called, calls = %d", fallback.callCount())
	}
}

func TestFallbackEmbedder_FallsBackOnce(t *testing.T) {
	primary := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	fallback := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0, 1}}}

	counter := metrics.EmbeddingFallbacksTotal.WithLabelValues("voyage", "openai", "success")
	before := testutil.ToFloat64(counter)

	res, err := fallbackPair(primary, fallback).Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Provider != "openai" {
		t.Errorf("Provider = %q, want openai", res.Provider)
	}
	if primary.callCount() != 1 || fallback.callCount() != 1 {
		t.Errorf("expected one call each, got primary=%d fallback=%d", primary.callCount(), fallback.callCount())
	}
	if d := testutil.ToFloat64(counter) - before; d != 1 {
		t.Errorf("fallback counter delta = %v, want 1", d)
	}
}

func TestFallbackEmbedder_BothFail(t *testing.T) {
	primary := &mockEmbedder{err: errors.New("primary down")}
	fallback := &mockEmbedder{err: domain.ErrEmbeddingProviderError}

	_, err := fallbackPair(primary, fallback).Embed(context.Background(), "text")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected fallback error to surface, got %v", err)
	}
	if fallback.callCount() != 1 {
		t.Errorf("fallback must be tried exactly once, calls = %d", fallback.callCount())
	}
}

func TestFallbackEmbedder_CanceledContextSkipsFallback(t *testing.T) {
	primary := &mockEmbedder{err: context.Canceled}
	fallback := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0, 1}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := fallbackPair(primary, fallback).Embed(ctx, "text"); err == nil {
		t.Fatal("expected error")
	}
	if fallback.callCount() != 0 {
		t.Errorf("fallback must not run after cancellation, calls = %d", fallback.callCount())
	}
}

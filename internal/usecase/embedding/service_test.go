package embedding

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ideaboard/internal/domain"
)

func TestService_Embed(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}, Provider: "voyage"}}
	svc := NewService(inner, 3)

	res, err := svc.Embed(context.Background(), "  add dark mode  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embedding) != 3 {
		t.Errorf("expected 3 dimensions, got %d", len(res.Embedding))
	}
	if inner.texts[0] != "add dark mode" {
		t.Errorf("text must be trimmed, got %q", inner.texts[0])
	}
}

func TestService_EmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t "} {
		inner := &mockEmbedder{}
		_, err := NewService(inner, 3).Embed(context.Background(), text)

		var empty *domain.EmptyInputError
		if !errors.As(err, &empty) || !errors.Is(err, domain.ErrEmptyInput) {
			t.Fatalf("Embed(%q): expected EmptyInputError, got %v", text, err)
		}
		if inner.callCount() != 0 {
			t.Errorf("Embed(%q): provider must not be called", text)
		}
	}
}

func TestService_DimensionMismatch(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}}

	_, err := NewService(inner, 3).Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("expected ErrVectorDimMismatch, got %v", err)
	}
}

func TestService_ProviderError(t *testing.T) {
	inner := &mockEmbedder{err: domain.ErrEmbeddingUnconfigured}

	_, err := NewService(inner, 3).Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingUnconfigured) {
		t.Fatalf("expected ErrEmbeddingUnconfigured, got %v", err)
	}
}

func TestService_ProviderErrorPrefixedOnce(t *testing.T) {
	inner := &mockEmbedder{err: errors.New("voyage: status 500")}
	chain := NewInstrumentedEmbedder(inner, "voyage", "voyage-3.5", nil, zap.NewNop())

	_, err := NewService(chain, 3).Embed(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if n := strings.Count(err.Error(), "embed:"); n != 1 {
		t.Errorf("expected one embed prefix, got %d in %q", n, err.Error())
	}
}

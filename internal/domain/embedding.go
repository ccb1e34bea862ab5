package domain

import (
	"context"
	"fmt"
)

// KeyPrefix namespaces every key the service writes to the database.
const KeyPrefix = "ideaboard:"

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
	// Provider names the adapter that produced the vector; set by the fallback decorator.
	Provider string
}

// CheckDimensions returns ErrVectorDimMismatch when vec has a length other than dims.
// dims <= 0 disables the check.
func CheckDimensions(vec []float32, dims int) error {
	if dims <= 0 || len(vec) == dims {
		return nil
	}
	return fmt.Errorf("%w: got %d, want %d", ErrVectorDimMismatch, len(vec), dims)
}

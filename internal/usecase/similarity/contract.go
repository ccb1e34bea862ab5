package similarity

import (
	"context"

	"github.com/kailas-cloud/ideaboard/internal/domain"
	domsim "github.com/kailas-cloud/ideaboard/internal/domain/similarity"
)

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Searcher returns the k nearest ideas to a vector.
type Searcher interface {
	Nearest(ctx context.Context, vector []float32, k int) ([]domsim.Match, error)
}

package backfill

import (
	"context"

	"github.com/kailas-cloud/ideaboard/internal/domain"
	domidea "github.com/kailas-cloud/ideaboard/internal/domain/idea"
)

// IdeaStore lists ideas without a vector and stores computed ones.
type IdeaStore interface {
	ListMissingEmbedding(ctx context.Context, limit int) ([]domidea.Idea, error)
	SetEmbedding(ctx context.Context, id string, vec []float32) error
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

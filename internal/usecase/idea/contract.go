package idea

import (
	"context"

	"github.com/kailas-cloud/ideaboard/internal/domain"
	domidea "github.com/kailas-cloud/ideaboard/internal/domain/idea"
)

// Repository defines the storage contract for ideas.
type Repository interface {
	Create(ctx context.Context, i *domidea.Idea) error
	Update(ctx context.Context, i *domidea.Idea) error
	Get(ctx context.Context, id string) (domidea.Idea, error)
	Exists(ctx context.Context, id string) (bool, error)
	AddVotes(ctx context.Context, id string, delta int64) (int64, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

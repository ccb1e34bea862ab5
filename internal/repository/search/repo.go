package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/ideaboard/internal/db"
	"github.com/kailas-cloud/ideaboard/internal/domain/similarity"
	"github.com/kailas-cloud/ideaboard/internal/repository/idea"
)

var returnFields = []string{"title", "problem", "category", "votes"}

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo runs nearest-neighbour queries against the idea index.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Nearest returns up to k ideas closest to vector, scored as cosine similarity in [0,1].
// Ordering and thresholding are left to the caller.
func (r *Repo) Nearest(ctx context.Context, vector []float32, k int) ([]similarity.Match, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    idea.IndexName,
		Vector:       vector,
		K:            k,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}
	return parseKNNResults(sr), nil
}

func parseKNNResults(sr *db.SearchResult) []similarity.Match {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	out := make([]similarity.Match, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		votes, _ := strconv.ParseInt(e.Fields["votes"], 10, 64)
		out = append(out, similarity.Match{
			IdeaID:         strings.TrimPrefix(e.Key, idea.KeyPrefix),
			Title:          e.Fields["title"],
			ProblemExcerpt: similarity.Excerpt(e.Fields["problem"]),
			Category:       e.Fields["category"],
			Votes:          votes,
			Score:          similarity.ScoreFromDistance(e.Distance),
		})
	}
	return out
}

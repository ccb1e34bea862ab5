package chi

import (
	"time"

	dombackfill "github.com/kailas-cloud/ideaboard/internal/domain/backfill"
	domcomment "github.com/kailas-cloud/ideaboard/internal/domain/comment"
	domidea "github.com/kailas-cloud/ideaboard/internal/domain/idea"
	domsim "github.com/kailas-cloud/ideaboard/internal/domain/similarity"
)

// ErrorCode is a machine-readable error code in ErrorResponse.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest             ErrorCode = "bad_request"
	CodeValidationFailed       ErrorCode = "validation_failed"
	CodeUnauthorized           ErrorCode = "unauthorized"
	CodeNotFound               ErrorCode = "not_found"
	CodeAlreadyExists          ErrorCode = "already_exists"
	CodeInvalidParent          ErrorCode = "invalid_parent"
	CodeVectorDimMismatch      ErrorCode = "vector_dim_mismatch"
	CodeRateLimited            ErrorCode = "rate_limited"
	CodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	CodeEmbeddingUnconfigured  ErrorCode = "embedding_unconfigured"
	CodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// IdeaRequest creates or replaces an idea's content.
type IdeaRequest struct {
	AuthorID string `json:"author_id,omitempty"`
	Title    string `json:"title"`
	Problem  string `json:"problem"`
	Solution string `json:"solution,omitempty"`
	Category string `json:"category"`
}

func (r IdeaRequest) content() domidea.Content {
	return domidea.Content{Title: r.Title, Problem: r.Problem, Solution: r.Solution, Category: r.Category}
}

// IdeaResponse is an idea as returned by the API. The vector itself is never exposed.
type IdeaResponse struct {
	ID           string    `json:"id"`
	AuthorID     string    `json:"author_id,omitempty"`
	Title        string    `json:"title"`
	Problem      string    `json:"problem"`
	Solution     string    `json:"solution,omitempty"`
	Category     string    `json:"category"`
	Votes        int64     `json:"votes"`
	HasEmbedding bool      `json:"has_embedding"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func ideaToResponse(i *domidea.Idea) IdeaResponse {
	return IdeaResponse{
		ID:           i.ID(),
		AuthorID:     i.AuthorID(),
		Title:        i.Title(),
		Problem:      i.Problem(),
		Solution:     i.Solution(),
		Category:     i.Category(),
		Votes:        i.Votes(),
		HasEmbedding: i.HasEmbedding(),
		CreatedAt:    i.CreatedAt(),
		UpdatedAt:    i.UpdatedAt(),
	}
}

// VoteRequest is {"delta": 1} or {"delta": -1}.
type VoteRequest struct {
	Delta int `json:"delta"`
}

// VoteResponse carries the new vote count.
type VoteResponse struct {
	ID    string `json:"id"`
	Votes int64  `json:"votes"`
}

// SimilarRequest is a findSimilar call. A missing threshold and a zero limit select defaults.
type SimilarRequest struct {
	Text      string   `json:"text"`
	Threshold *float64 `json:"threshold,omitempty"`
	Limit     int      `json:"limit,omitempty"`
	ExcludeID string   `json:"exclude_id,omitempty"`
}

// MatchResponse is one similar idea.
type MatchResponse struct {
	IdeaID         string  `json:"idea_id"`
	Title          string  `json:"title"`
	ProblemExcerpt string  `json:"problem_excerpt"`
	Category       string  `json:"category,omitempty"`
	Votes          int64   `json:"votes"`
	Score          float64 `json:"score"`
}

// SimilarResponse always carries a (possibly empty) matches array.
type SimilarResponse struct {
	Matches []MatchResponse `json:"matches"`
}

func matchesToResponse(mm []domsim.Match) SimilarResponse {
	out := make([]MatchResponse, len(mm))
	for i, m := range mm {
		out[i] = MatchResponse{
			IdeaID:         m.IdeaID,
			Title:          m.Title,
			ProblemExcerpt: m.ProblemExcerpt,
			Category:       m.Category,
			Votes:          m.Votes,
			Score:          m.Score,
		}
	}
	return SimilarResponse{Matches: out}
}

// CommentRequest creates a comment under the idea in the path.
type CommentRequest struct {
	ParentID string `json:"parent_id,omitempty"`
	AuthorID string `json:"author_id,omitempty"`
	Body     string `json:"body"`
}

// CommentResponse is a single comment; Children is set in thread responses.
type CommentResponse struct {
	ID        string            `json:"id"`
	IdeaID    string            `json:"idea_id"`
	ParentID  string            `json:"parent_id,omitempty"`
	AuthorID  string            `json:"author_id,omitempty"`
	Body      string            `json:"body"`
	Upvotes   int64             `json:"upvotes"`
	CreatedAt time.Time         `json:"created_at"`
	Children  []CommentResponse `json:"children"`
}

func commentToResponse(c *domcomment.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		IdeaID:    c.IdeaID,
		ParentID:  c.ParentID,
		AuthorID:  c.AuthorID,
		Body:      c.Body,
		Upvotes:   c.Upvotes,
		CreatedAt: c.CreatedAt,
		Children:  []CommentResponse{},
	}
}

func nodesToResponse(nodes []*domcomment.Node) []CommentResponse {
	out := make([]CommentResponse, len(nodes))
	for i, n := range nodes {
		out[i] = commentToResponse(&n.Comment)
		out[i].Children = nodesToResponse(n.Children)
	}
	return out
}

// ThreadResponse is an idea's comment forest.
type ThreadResponse struct {
	Comments []CommentResponse `json:"comments"`
	Total    int               `json:"total"`
}

// UpvoteResponse carries a comment's new upvote count.
type UpvoteResponse struct {
	ID      string `json:"id"`
	Upvotes int64  `json:"upvotes"`
}

// BackfillRequest tunes an admin backfill run.
type BackfillRequest struct {
	DryRun      bool `json:"dry_run"`
	Limit       int  `json:"limit,omitempty"`
	Concurrency int  `json:"concurrency,omitempty"`
}

// BackfillResult is one record of a backfill report.
type BackfillResult struct {
	IdeaID string `json:"idea_id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// BackfillResponse summarizes a backfill run.
type BackfillResponse struct {
	Total      int              `json:"total"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
	Pending    int              `json:"pending"`
	DryRun     bool             `json:"dry_run"`
	Results    []BackfillResult `json:"results"`
}

func reportToResponse(r *dombackfill.Report) BackfillResponse {
	results := make([]BackfillResult, len(r.Results))
	for i, res := range r.Results {
		results[i] = BackfillResult{IdeaID: res.IdeaID(), Status: string(res.Status())}
		if res.Err() != nil {
			// provider errors carry no secrets, but internals stay generic
			results[i].Error = safeDomainMessage(res.Err())
		}
	}
	return BackfillResponse{
		Total:      r.Total,
		Successful: r.Successful,
		Failed:     r.Failed,
		Pending:    r.Pending,
		DryRun:     r.DryRun,
		Results:    results,
	}
}

// HealthResponse is the /health body.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

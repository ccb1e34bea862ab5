package ideaboard

import "time"

// IdeaInput is the user-editable part of an idea.
type IdeaInput struct {
	AuthorID string `json:"author_id,omitempty"`
	Title    string `json:"title"`
	Problem  string `json:"problem"`
	Solution string `json:"solution,omitempty"`
	Category string `json:"category"`
}

// Idea is a stored idea.
type Idea struct {
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

// SimilarQuery asks for ideas similar to Text. A nil Threshold and a zero Limit use
// server defaults; set Threshold with Float64 to send an explicit value, zero included.
type SimilarQuery struct {
	Text      string   `json:"text"`
	Threshold *float64 `json:"threshold,omitempty"`
	Limit     int      `json:"limit,omitempty"`
	ExcludeID string   `json:"exclude_id,omitempty"`
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }

// Match is a similar idea, best first.
type Match struct {
	IdeaID         string  `json:"idea_id"`
	Title          string  `json:"title"`
	ProblemExcerpt string  `json:"problem_excerpt"`
	Category       string  `json:"category,omitempty"`
	Votes          int64   `json:"votes"`
	Score          float64 `json:"score"`
}

// Comment is a comment with its replies.
type Comment struct {
	ID        string    `json:"id"`
	IdeaID    string    `json:"idea_id"`
	ParentID  string    `json:"parent_id,omitempty"`
	AuthorID  string    `json:"author_id,omitempty"`
	Body      string    `json:"body"`
	Upvotes   int64     `json:"upvotes"`
	CreatedAt time.Time `json:"created_at"`
	Children  []Comment `json:"children"`
}

// CommentInput is a new comment. Empty ParentID posts a top-level comment.
type CommentInput struct {
	ParentID string `json:"parent_id,omitempty"`
	AuthorID string `json:"author_id,omitempty"`
	Body     string `json:"body"`
}

// Thread is an idea's comment forest. Total counts every comment, replies included.
type Thread struct {
	Comments []Comment `json:"comments"`
	Total    int       `json:"total"`
}

package idea

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kailas-cloud/ideaboard/internal/domain"
)

// Field length limits, counted in runes.
const (
	MaxTitleLen    = 200
	MaxProblemLen  = 5000
	MaxSolutionLen = 5000
	MaxCategoryLen = 64
)

// Idea is the idea aggregate (immutable value object).
type Idea struct {
	id        string
	authorID  string
	title     string
	problem   string
	solution  string
	category  string
	votes     int64
	embedding []float32
	createdAt time.Time
	updatedAt time.Time
}

// Content is the user-editable part of an idea.
type Content struct {
	Title    string
	Problem  string
	Solution string
	Category string
}

// New validates content and creates an Idea with zero votes and no embedding.
func New(id, authorID string, c Content, now time.Time) (Idea, error) {
	if id == "" {
		return Idea{}, domain.NewValidationError("id", "is required")
	}
	c, err := c.normalize()
	if err != nil {
		return Idea{}, err
	}
	return Idea{
		id:        id,
		authorID:  authorID,
		title:     c.Title,
		problem:   c.Problem,
		solution:  c.Solution,
		category:  c.Category,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct creates an Idea without validation (storage hydration).
func Reconstruct(
	id, authorID string, c Content, votes int64, embedding []float32, createdAt, updatedAt time.Time,
) Idea {
	return Idea{
		id: id, authorID: authorID,
		title: c.Title, problem: c.Problem, solution: c.Solution, category: c.Category,
		votes: votes, embedding: embedding, createdAt: createdAt, updatedAt: updatedAt,
	}
}

// ID returns the idea identifier.
func (i *Idea) ID() string { return i.id }

// AuthorID returns the author identifier.
func (i *Idea) AuthorID() string { return i.authorID }

// Title returns the idea title.
func (i *Idea) Title() string { return i.title }

// Problem returns the problem statement.
func (i *Idea) Problem() string { return i.problem }

// Solution returns the proposed solution, possibly empty.
func (i *Idea) Solution() string { return i.solution }

// Category returns the lower-cased category label.
func (i *Idea) Category() string { return i.category }

// Votes returns the vote count.
func (i *Idea) Votes() int64 { return i.votes }

// Embedding returns the stored vector; empty means pending backfill.
func (i *Idea) Embedding() []float32 { return i.embedding }

// HasEmbedding reports whether a vector is stored.
func (i *Idea) HasEmbedding() bool { return len(i.embedding) > 0 }

// CreatedAt returns the creation time.
func (i *Idea) CreatedAt() time.Time { return i.createdAt }

// UpdatedAt returns the last modification time.
func (i *Idea) UpdatedAt() time.Time { return i.updatedAt }

// Content returns the editable fields.
func (i *Idea) Content() Content {
	return Content{Title: i.title, Problem: i.problem, Solution: i.solution, Category: i.category}
}

// EmbeddingText is the text the similarity index is built from.
func (i *Idea) EmbeddingText() string {
	return i.Content().EmbeddingText()
}

// SetEmbedding sets the vector in place (mutation).
func (i *Idea) SetEmbedding(v []float32) { i.embedding = v }

// WithContent returns a copy with new content. The embedding is cleared when the
// embedded text changes.
func (i *Idea) WithContent(c Content, now time.Time) (Idea, error) {
	c, err := c.normalize()
	if err != nil {
		return Idea{}, err
	}
	out := *i
	out.title, out.problem, out.solution, out.category = c.Title, c.Problem, c.Solution, c.Category
	out.updatedAt = now
	if c.EmbeddingText() != i.EmbeddingText() {
		out.embedding = nil
	}
	return out, nil
}

// EmbeddingText joins title, problem and solution with blank lines.
func (c Content) EmbeddingText() string {
	parts := []string{c.Title, c.Problem}
	if c.Solution != "" {
		parts = append(parts, c.Solution)
	}
	return strings.Join(parts, "\n\n")
}

func (c Content) normalize() (Content, error) {
	c.Title = strings.TrimSpace(c.Title)
	c.Problem = strings.TrimSpace(c.Problem)
	c.Solution = strings.TrimSpace(c.Solution)
	c.Category = strings.ToLower(strings.TrimSpace(c.Category))

	checks := []struct {
		field    string
		value    string
		max      int
		required bool
	}{
		{"title", c.Title, MaxTitleLen, true},
		{"problem", c.Problem, MaxProblemLen, true},
		{"solution", c.Solution, MaxSolutionLen, false},
		{"category", c.Category, MaxCategoryLen, true},
	}
	for _, ch := range checks {
		if ch.required && ch.value == "" {
			return Content{}, domain.NewValidationError(ch.field, "is required")
		}
		if utf8.RuneCountInString(ch.value) > ch.max {
			return Content{}, domain.NewValidationError(ch.field, "is too long")
		}
	}
	return c, nil
}

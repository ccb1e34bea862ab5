package comment

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kailas-cloud/ideaboard/internal/domain"
)

// MaxBodyLen is the comment body limit in runes.
const MaxBodyLen = 10000

// Comment is a single flat comment as stored. Empty ParentID marks a top-level comment.
type Comment struct {
	ID        string
	IdeaID    string
	ParentID  string
	AuthorID  string
	Body      string
	Upvotes   int64
	CreatedAt time.Time
}

// IsRoot reports whether the comment has no parent reference.
func (c *Comment) IsRoot() bool { return c.ParentID == "" }

// Validate checks the fields a client controls.
func (c *Comment) Validate() error {
	if c.IdeaID == "" {
		return domain.NewValidationError("idea_id", "is required")
	}
	body := strings.TrimSpace(c.Body)
	if body == "" {
		return domain.NewValidationError("body", "is required")
	}
	if utf8.RuneCountInString(body) > MaxBodyLen {
		return domain.NewValidationError("body", "is too long")
	}
	if c.ParentID != "" && c.ParentID == c.ID {
		return domain.NewValidationError("parent_id", "must differ from id")
	}
	return nil
}

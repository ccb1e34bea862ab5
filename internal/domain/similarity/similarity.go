package similarity

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"
)

// Defaults applied by NewQuery.
const (
	DefaultThreshold = 0.75
	DefaultLimit     = 5
	MaxLimit         = 20
	DefaultMinChars  = 30

	// MinCharsFloor and MinCharsCeiling bound the configurable minimum text length.
	MinCharsFloor   = 20
	MinCharsCeiling = 50

	excerptRunes = 200
)

// Query is a normalized findSimilar request.
type Query struct {
	Text      string
	Threshold float64
	Limit     int
	ExcludeID string
}

// Limits holds the configurable bounds used to normalize a Query.
type Limits struct {
	MinChars         int
	DefaultThreshold float64
	DefaultLimit     int
	MaxLimit         int
}

// DefaultLimits returns the built-in bounds.
func DefaultLimits() Limits {
	return Limits{
		MinChars:         DefaultMinChars,
		DefaultThreshold: DefaultThreshold,
		DefaultLimit:     DefaultLimit,
		MaxLimit:         MaxLimit,
	}
}

// NewQuery trims text and fills in defaults. A nil threshold or a zero limit means
// "use default"; out-of-range values are clamped. An explicit zero threshold is kept.
func NewQuery(text string, threshold *float64, limit int, excludeID string, l Limits) Query {
	l = l.normalize()

	t := l.DefaultThreshold
	if threshold != nil {
		t = min(max(*threshold, 0), 1)
	}
	switch {
	case limit <= 0:
		limit = l.DefaultLimit
	case limit > l.MaxLimit:
		limit = l.MaxLimit
	}

	return Query{
		Text:      strings.TrimSpace(text),
		Threshold: t,
		Limit:     limit,
		ExcludeID: strings.TrimSpace(excludeID),
	}
}

// TooShort reports whether the text is below the minimum length and must not reach the provider.
func (q Query) TooShort(l Limits) bool {
	return utf8.RuneCountInString(q.Text) < l.normalize().MinChars
}

// CandidateCount is how many neighbours to fetch so that dropping the excluded idea
// still leaves Limit results.
func (q Query) CandidateCount() int {
	if q.ExcludeID != "" {
		return q.Limit + 1
	}
	return q.Limit
}

func (l Limits) normalize() Limits {
	if l.MinChars <= 0 {
		l.MinChars = DefaultMinChars
	}
	l.MinChars = min(max(l.MinChars, MinCharsFloor), MinCharsCeiling)
	if l.DefaultThreshold <= 0 || l.DefaultThreshold > 1 {
		l.DefaultThreshold = DefaultThreshold
	}
	if l.MaxLimit <= 0 || l.MaxLimit > MaxLimit {
		l.MaxLimit = MaxLimit
	}
	if l.DefaultLimit <= 0 {
		l.DefaultLimit = DefaultLimit
	}
	l.DefaultLimit = min(l.DefaultLimit, l.MaxLimit)
	return l
}

// Match is a similar idea with its cosine similarity to the query.
type Match struct {
	IdeaID         string
	Title          string
	ProblemExcerpt string
	Category       string
	Votes          int64
	Score          float64
}

// Rank drops matches below the threshold and the excluded idea, orders by score
// descending with idea ID ascending as tie-break, and cuts to the limit.
func Rank(matches []Match, q Query) []Match {
	out := make([]Match, 0, min(len(matches), q.Limit))
	for _, m := range matches {
		if m.Score < q.Threshold || (q.ExcludeID != "" && m.IdeaID == q.ExcludeID) {
			continue
		}
		out = append(out, m)
	}

	slices.SortFunc(out, func(a, b Match) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.IdeaID, b.IdeaID)
	})

	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// Excerpt shortens a problem statement for display.
func Excerpt(problem string) string {
	problem = strings.TrimSpace(problem)
	if utf8.RuneCountInString(problem) <= excerptRunes {
		return problem
	}
	r := []rune(problem)
	return strings.TrimSpace(string(r[:excerptRunes])) + "…"
}

// ScoreFromDistance converts a cosine distance into a similarity in [0,1].
func ScoreFromDistance(d float64) float64 {
	return min(max(1-d, 0), 1)
}

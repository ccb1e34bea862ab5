package ideaboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// Suggester defaults.
const (
	DefaultDebounce = 600 * time.Millisecond
	DefaultMinChars = 30
)

// SimilarFinder is the lookup a Suggester drives. *Client implements it.
type SimilarFinder interface {
	FindSimilar(ctx context.Context, q SimilarQuery) ([]Match, error)
}

// Suggestion is the result for one draft text. Err is set when the lookup failed;
// Matches is then empty.
type Suggestion struct {
	Text    string
	Matches []Match
	Err     error
}

// SuggesterOption configures a Suggester.
type SuggesterOption func(*Suggester)

// WithDebounce sets how long the text must stay unchanged before a lookup.
func WithDebounce(d time.Duration) SuggesterOption {
	return func(s *Suggester) {
		if d >= 0 {
			s.debounce = d
		}
	}
}

// WithMinChars sets the draft length (in characters) below which no lookup is made
// and an empty suggestion is delivered right away.
func WithMinChars(n int) SuggesterOption {
	return func(s *Suggester) {
		if n >= 0 {
			s.minChars = n
		}
	}
}

// WithQuery sets threshold, limit and excluded idea for every lookup,
// e.g. the idea being edited.
func WithQuery(threshold float64, limit int, excludeID string) SuggesterOption {
	return func(s *Suggester) {
		s.threshold = &threshold
		s.limit = limit
		s.excludeID = excludeID
	}
}

// Suggester turns a stream of draft edits into similar-idea lookups. Each Update
// starts a new generation: the pending timer is reset, a running lookup is
// cancelled, and results of older generations are dropped.
type Suggester struct {
	finder   SimilarFinder
	onResult func(Suggestion)

	debounce  time.Duration
	minChars  int
	threshold *float64
	limit     int
	excludeID string

	mu     sync.Mutex
	gen    uint64
	timer  *time.Timer
	cancel context.CancelFunc
	closed bool

	// serializes onResult calls
	deliverMu sync.Mutex
}

// NewSuggester creates a Suggester. onResult runs on a background goroutine,
// never concurrently with itself.
func NewSuggester(finder SimilarFinder, onResult func(Suggestion), opts ...SuggesterOption) *Suggester {
	s := &Suggester{
		finder:   finder,
		onResult: onResult,
		debounce: DefaultDebounce,
		minChars: DefaultMinChars,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Update reports the current draft text.
func (s *Suggester) Update(text string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.gen++
	gen := s.gen
	s.stopLocked()

	if utf8.RuneCountInString(strings.TrimSpace(text)) < s.minChars {
		s.mu.Unlock()
		go s.deliver(gen, Suggestion{Text: text})
		return
	}

	s.timer = time.AfterFunc(s.debounce, func() { s.lookup(gen, text) })
	s.mu.Unlock()
}

// Close stops pending and running lookups. No results are delivered afterwards.
func (s *Suggester) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.gen++
	s.stopLocked()
}

func (s *Suggester) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Suggester) lookup(gen uint64, text string) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.timer = nil
	s.mu.Unlock()
	defer cancel()

	matches, err := s.finder.FindSimilar(ctx, SimilarQuery{
		Text:      text,
		Threshold: s.threshold,
		Limit:     s.limit,
		ExcludeID: s.excludeID,
	})
	if errors.Is(err, context.Canceled) {
		return
	}
	if err != nil {
		matches = nil
	}
	s.deliver(gen, Suggestion{Text: text, Matches: matches, Err: err})
}

// deliver hands sg to onResult if gen is still the latest generation.
func (s *Suggester) deliver(gen uint64, sg Suggestion) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	current := gen == s.gen
	s.mu.Unlock()
	if current && s.onResult != nil {
		s.onResult(sg)
	}
}

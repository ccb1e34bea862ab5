package ideaboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeFinder struct {
	mu      sync.Mutex
	queries []string
	// block holds lookups until the context is cancelled or release is closed
	block   bool
	release chan struct{}
	err     error
}

func (f *fakeFinder) FindSimilar(ctx context.Context, q SimilarQuery) ([]Match, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q.Text)
	block := f.block
	f.mu.Unlock()

	if block {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-f.release:
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return []Match{{IdeaID: "m-" + q.Text[:1], Title: q.Text}}, nil
}

func (f *fakeFinder) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func collect() (func(Suggestion), func() []Suggestion) {
	var mu sync.Mutex
	var got []Suggestion
	return func(s Suggestion) {
			mu.Lock()
			got = append(got, s)
			mu.Unlock()
		}, func() []Suggestion {
			mu.Lock()
			defer mu.Unlock()
			return append([]Suggestion(nil), got...)
		}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

var (
	draftA = strings.Repeat("a", 40)
	draftB = strings.Repeat("b", 40)
	draftC = strings.Repeat("c", 40)
)

func TestSuggester_DebouncesBurst(t *testing.T) {
	f := &fakeFinder{}
	onResult, results := collect()
	s := NewSuggester(f, onResult, WithDebounce(50*time.Millisecond))
	defer s.Close()

	s.Update(draftA)
	s.Update(draftB)
	s.Update(draftC)

	waitFor(t, func() bool { return len(results()) == 1 })
	time.Sleep(80 * time.Millisecond)

	if calls := f.calls(); len(calls) != 1 || calls[0] != draftC {
		t.Fatalf("expected a single lookup for the last draft, got %v", calls)
	}
	got := results()
	if len(got) != 1 || got[0].Text != draftC || got[0].Matches[0].IdeaID != "m-c" {
		t.Errorf("unexpected results: %+v", got)
	}
}

func TestSuggester_CancelsSupersededLookup(t *testing.T) {
	f := &fakeFinder{block: true, release: make(chan struct{})}
	onResult, results := collect()
	s := NewSuggester(f, onResult, WithDebounce(5*time.Millisecond))
	defer s.Close()

	s.Update(draftA)
	waitFor(t, func() bool { return len(f.calls()) == 1 })

	// a newer draft cancels the running lookup for draftA
	s.Update(draftB)
	waitFor(t, func() bool { return len(f.calls()) == 2 })
	close(f.release)

	waitFor(t, func() bool { return len(results()) == 1 })
	time.Sleep(30 * time.Millisecond)

	got := results()
	if len(got) != 1 || got[0].Text != draftB {
		t.Errorf("only the latest draft must be delivered, got %+v", got)
	}
}

func TestSuggester_ShortDraftClearsWithoutLookup(t *testing.T) {
	f := &fakeFinder{}
	onResult, results := collect()
	s := NewSuggester(f, onResult, WithDebounce(5*time.Millisecond), WithMinChars(10))
	defer s.Close()

	s.Update("  short   ")

	waitFor(t, func() bool { return len(results()) == 1 })
	if len(f.calls()) != 0 {
		t.Errorf("short draft must not trigger a lookup, got %v", f.calls())
	}
	if got := results()[0]; len(got.Matches) != 0 || got.Err != nil {
		t.Errorf("expected empty suggestion, got %+v", got)
	}
}

func TestSuggester_ErrorDelivered(t *testing.T) {
	f := &fakeFinder{err: errors.New("unauthorized")}
	onResult, results := collect()
	s := NewSuggester(f, onResult, WithDebounce(5*time.Millisecond))
	defer s.Close()

	s.Update(draftA)

	waitFor(t, func() bool { return len(results()) == 1 })
	if got := results()[0]; got.Err == nil || got.Matches != nil {
		t.Errorf("expected error suggestion, got %+v", got)
	}
}

func TestSuggester_CloseDropsPending(t *testing.T) {
	f := &fakeFinder{}
	onResult, results := collect()
	s := NewSuggester(f, onResult, WithDebounce(20*time.Millisecond))

	s.Update(draftA)
	s.Close()
	s.Update(draftB)

	time.Sleep(60 * time.Millisecond)
	if len(f.calls()) != 0 || len(results()) != 0 {
		t.Errorf("closed suggester must stay silent: calls=%v results=%v", f.calls(), results())
	}
}

func TestSuggester_PassesQueryOptions(t *testing.T) {
	var got SimilarQuery
	var mu sync.Mutex
	finder := finderFunc(func(_ context.Context, q SimilarQuery) ([]Match, error) {
		mu.Lock()
		got = q
		mu.Unlock()
		return nil, nil
	})
	onResult, results := collect()
	s := NewSuggester(finder, onResult, WithDebounce(time.Millisecond), WithQuery(0.6, 10, "self"))
	defer s.Close()

	s.Update(draftA)
	waitFor(t, func() bool { return len(results()) == 1 })

	mu.Lock()
	defer mu.Unlock()
	if got.Threshold == nil || *got.Threshold != 0.6 || got.Limit != 10 || got.ExcludeID != "self" {
		t.Errorf("unexpected query: %+v", got)
	}
}

type finderFunc func(ctx context.Context, q SimilarQuery) ([]Match, error)

func (f finderFunc) FindSimilar(ctx context.Context, q SimilarQuery) ([]Match, error) { return f(ctx, q) }

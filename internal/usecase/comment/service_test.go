package comment

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/ideaboard/internal/domain"
	domcomment "github.com/kailas-cloud/ideaboard/internal/domain/comment"
)

// --- Mocks ---

type mockRepo struct {
	byID    map[string]domcomment.Comment
	threads map[string][]domcomment.Comment
	listErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{byID: map[string]domcomment.Comment{}, threads: map[string][]domcomment.Comment{}}
}

func (m *mockRepo) Append(_ context.Context, c *domcomment.Comment) error {
	m.byID[c.ID] = *c
	m.threads[c.IdeaID] = append(m.threads[c.IdeaID], *c)
	return nil
}

func (m *mockRepo) Get(_ context.Context, id string) (domcomment.Comment, error) {
	c, ok := m.byID[id]
	if !ok {
		return domcomment.Comment{}, fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
	}
	return c, nil
}

func (m *mockRepo) ListByIdea(_ context.Context, ideaID string) ([]domcomment.Comment, error) {
	return m.threads[ideaID], m.listErr
}

func (m *mockRepo) Upvote(_ context.Context, id string) (int64, error) {
	c := m.byID[id]
	c.Upvotes++
	m.byID[id] = c
	return c.Upvotes, nil
}

type mockIdeas map[string]bool

func (m mockIdeas) Exists(_ context.Context, id string) (bool, error) { return m[id], nil }

func newTestService(repo Repository, log *zap.Logger) *Service {
	svc := New(repo, mockIdeas{"idea-1": true, "idea-2": true}, log)
	seq := 0
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("c%d", seq)
	}
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

// --- Tests ---

func TestCreateAndThread(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, zap.NewNop())
	ctx := context.Background()

	root, err := svc.Create(ctx, CreateInput{IdeaID: "idea-1", AuthorID: "u1", Body: " First! "})
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	if root.Body != "First!" {
		t.Errorf("body must be trimmed, got %q", root.Body)
	}
	reply, err := svc.Create(ctx, CreateInput{IdeaID: "idea-1", ParentID: root.ID, AuthorID: "u2", Body: "Agreed"})
	if err != nil {
		t.Fatalf("create reply: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{IdeaID: "idea-1", AuthorID: "u3", Body: "Another topic"}); err != nil {
		t.Fatalf("create second root: %v", err)
	}

	thread, err := svc.Thread(ctx, "idea-1")
	if err != nil {
		t.Fatalf("thread: %v", err)
	}
	if thread.Total != 3 || len(thread.Roots) != 2 {
		t.Fatalf("expected 2 roots / 3 total, got %d / %d", len(thread.Roots), thread.Total)
	}
	if got := thread.Roots[0].Children; len(got) != 1 || got[0].ID != reply.ID {
		t.Errorf("reply must nest under its parent, got %+v", got)
	}
}

func TestCreate_UnknownIdea(t *testing.T) {
	svc := newTestService(newMockRepo(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateInput{IdeaID: "nope", Body: "hi"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreate_MissingParent(t *testing.T) {
	svc := newTestService(newMockRepo(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateInput{IdeaID: "idea-1", ParentID: "ghost", Body: "hi"})
	if !errors.Is(err, domain.ErrInvalidParent) {
		t.Fatalf("expected ErrInvalidParent, got %v", err)
	}
}

func TestCreate_ParentFromOtherIdea(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, zap.NewNop())

	other, err := svc.Create(context.Background(), CreateInput{IdeaID: "idea-2", Body: "elsewhere"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = svc.Create(context.Background(), CreateInput{IdeaID: "idea-1", ParentID: other.ID, Body: "hi"})
	if !errors.Is(err, domain.ErrInvalidParent) {
		t.Fatalf("expected ErrInvalidParent, got %v", err)
	}
}

func TestCreate_BlankBody(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateInput{IdeaID: "idea-1", Body: "   "})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(repo.byID) != 0 {
		t.Error("invalid comment must not be stored")
	}
}

func TestThread_DuplicatesLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	repo := newMockRepo()
	repo.threads["idea-1"] = []domcomment.Comment{
		{ID: "a", IdeaID: "idea-1", Body: "first"},
		{ID: "a", IdeaID: "idea-1", Body: "second copy"},
		{ID: "b", IdeaID: "idea-1", ParentID: "a", Body: "reply"},
	}
	svc := newTestService(repo, zap.New(core))

	thread, err := svc.Thread(context.Background(), "idea-1")
	if err != nil {
		t.Fatalf("thread: %v", err)
	}
	if thread.Total != 2 || thread.Roots[0].Body != "first" {
		t.Errorf("expected first occurrence to win, got total=%d roots=%+v", thread.Total, thread.Roots)
	}
	if logs.Len() != 1 {
		t.Errorf("expected one duplicate warning, got %d", logs.Len())
	}
}

func TestThread_Empty(t *testing.T) {
	thread, err := newTestService(newMockRepo(), zap.NewNop()).Thread(context.Background(), "idea-2")
	if err != nil {
		t.Fatalf("thread: %v", err)
	}
	if thread.Total != 0 || len(thread.Roots) != 0 {
		t.Errorf("expected empty thread, got %+v", thread)
	}
}

func TestThread_UnknownIdea(t *testing.T) {
	_, err := newTestService(newMockRepo(), zap.NewNop()).Thread(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpvote(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, zap.NewNop())
	c, err := svc.Create(context.Background(), CreateInput{IdeaID: "idea-1", Body: "upvote me"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if n, err := svc.Upvote(context.Background(), c.ID); err != nil || n != 1 {
		t.Fatalf("upvote: n=%d err=%v", n, err)
	}
	if _, err := svc.Upvote(context.Background(), "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

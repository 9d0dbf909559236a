package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/inkwell/internal/apperr"
	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/db/dbtest"
	"github.com/inkwell/internal/realtime"
	"github.com/inkwell/internal/seo"
	"github.com/inkwell/internal/store"
	"gorm.io/gorm"
)

var testSite = seo.Site{Name: "Inkwell", BaseURL: "https://blog.example.com", LogoURL: "https://blog.example.com/logo.png"}

type recordingNotifier struct {
	mu    sync.Mutex
	posts []db.Post
}

func (n *recordingNotifier) PostPublished(post db.Post) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.posts = append(n.posts, post)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.posts)
}

type fixture struct {
	gdb      *gorm.DB
	store    *store.GormStore
	hub      *realtime.Hub
	notifier *recordingNotifier
	posts    *PostService
	ratings  *RatingService
	comments *CommentService
	views    *ViewService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := dbtest.Open(t)
	st := store.NewGormStore(gdb)
	hub := realtime.NewHub()
	notifier := &recordingNotifier{}
	return &fixture{
		gdb:      gdb,
		store:    st,
		hub:      hub,
		notifier: notifier,
		posts:    NewPostService(st, testSite, WithNotifier(notifier)),
		ratings:  NewRatingService(st),
		comments: NewCommentService(st, nil),
		views:    NewViewService(st, hub, nil),
	}
}

func validDraft(title string) PostDraft {
	return PostDraft{
		Title:      title,
		Excerpt:    "A short excerpt",
		Content:    "Body text for " + title,
		AuthorName: "Ada",
		Category:   "Engineering",
		Tags:       []string{"go"},
	}
}

func (f *fixture) createPost(t *testing.T, title string) *db.Post {
	t.Helper()
	post, err := f.posts.Create(context.Background(), validDraft(title))
	if err != nil {
		t.Fatalf("create post %q: %v", title, err)
	}
	return post
}

func (f *fixture) reload(t *testing.T, id uint) db.Post {
	t.Helper()
	var post db.Post
	if err := f.gdb.First(&post, id).Error; err != nil {
		t.Fatalf("reload post %d: %v", id, err)
	}
	return post
}

func assertKind(t *testing.T, err error, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}

func TestEndToEndScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post := f.createPost(t, "Hello World")
	if post.Slug != "hello-world" {
		t.Fatalf("expected slug hello-world, got %q", post.Slug)
	}
	if _, err := f.posts.SetPublished(ctx, post.Slug, true); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if _, err := f.ratings.Submit(ctx, post.ID, "alice", 4); err != nil {
		t.Fatalf("rate alice: %v", err)
	}
	summary, err := f.ratings.Submit(ctx, post.ID, "bob", 5)
	if err != nil {
		t.Fatalf("rate bob: %v", err)
	}
	if summary.Average != 4.5 || summary.Count != 2 {
		t.Fatalf("expected 4.5/2, got %+v", summary)
	}

	summary, err = f.ratings.Submit(ctx, post.ID, "alice", 3)
	if err != nil {
		t.Fatalf("re-rate alice: %v", err)
	}
	if summary.Average != 4.0 || summary.Count != 2 {
		t.Fatalf("expected 4.0/2 after re-rating, got %+v", summary)
	}

	stored := f.reload(t, post.ID)
	if stored.Rating != 4.0 || stored.TotalRatings != 2 {
		t.Fatalf("projection not written: rating=%v total=%d", stored.Rating, stored.TotalRatings)
	}

	public, err := f.posts.GetPublished(ctx, "hello-world")
	if err != nil {
		t.Fatalf("get published: %v", err)
	}
	if public.ID != post.ID {
		t.Fatalf("expected post %d, got %d", post.ID, public.ID)
	}
	if f.notifier.count() != 1 {
		t.Fatalf("expected one publish notification, got %d", f.notifier.count())
	}
}

func TestStoreErrorsPropagateUnchanged(t *testing.T) {
	f := newFixture(t)
	post := f.createPost(t, "Closing time")

	sqlDB, err := f.gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	_, err = f.views.Track(context.Background(), post.ID, "v")
	assertKind(t, err, apperr.ErrStore)
	if apperr.Reason(err) != "storage unavailable" {
		t.Fatalf("unexpected reason %q", apperr.Reason(err))
	}
}

func receiveUpdate(t *testing.T, sub *realtime.Subscription) realtime.ViewUpdate {
	t.Helper()
	select {
	case update, ok := <-sub.Updates():
		if !ok {
			t.Fatalf("subscription closed before an update arrived")
		}
		return update
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for view update")
	}
	return realtime.ViewUpdate{}
}

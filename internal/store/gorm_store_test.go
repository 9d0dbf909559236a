package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/inkwell/internal/apperr"
	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/db/dbtest"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	return NewGormStore(dbtest.Open(t))
}

func createPost(t *testing.T, s *GormStore, slug string, published bool) *db.Post {
	t.Helper()
	post := &db.Post{
		Title:       slug,
		Excerpt:     "excerpt",
		Content:     "content",
		Category:    "Go",
		Tags:        []string{"go"},
		Slug:        slug,
		Published:   published,
		PublishedAt: time.Now(),
	}
	if err := s.CreatePost(context.Background(), post); err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

func TestCreatePostDuplicateSlugIsConflict(t *testing.T) {
	s := newTestStore(t)
	createPost(t, s, "hello-world", false)

	err := s.CreatePost(context.Background(), &db.Post{Title: "x", Slug: "hello-world", Category: "Go"})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestGetPostNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetPost(ctx, 42); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := s.GetPostBySlug(ctx, "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLockPostInsideTransaction(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	post := createPost(t, s, "locked", true)

	err := s.Transaction(ctx, func(tx ContentStore) error {
		locked, err := tx.LockPost(ctx, post.ID)
		if err != nil {
			return err
		}
		if locked.Slug != "locked" {
			t.Errorf("unexpected post %q", locked.Slug)
		}
		_, err = tx.LockPost(ctx, post.ID+100)
		return err
	})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for missing post, got %v", err)
	}
}

func TestForUpdateAddsRowLockOutsideSqlite(t *testing.T) {
	pg, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=inkwell dbname=inkwell sslmode=disable"}),
		&gorm.Config{DryRun: true, DisableAutomaticPing: true})
	if err != nil {
		t.Fatalf("open dry-run postgres: %v", err)
	}
	var post db.Post
	stmt := forUpdate(pg).First(&post, 1).Statement
	if sql := stmt.SQL.String(); !strings.Contains(sql, "FOR UPDATE") {
		t.Fatalf("expected row lock on postgres, got %q", sql)
	}

	lite := dbtest.Open(t).Session(&gorm.Session{DryRun: true})
	stmt = forUpdate(lite).First(&post, 1).Statement
	if sql := stmt.SQL.String(); strings.Contains(sql, "FOR UPDATE") {
		t.Fatalf("sqlite has no row locks, got %q", sql)
	}
}

func TestTagsRoundTripThroughJSONColumn(t *testing.T) {
	s := newTestStore(t)
	post := createPost(t, s, "tagged", false)

	loaded, err := s.GetPost(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if len(loaded.Tags) != 1 || loaded.Tags[0] != "go" {
		t.Fatalf("unexpected tags %v", loaded.Tags)
	}
}

func TestListPostsFiltersAndOrders(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	older := createPost(t, s, "older", true)
	newer := createPost(t, s, "newer", true)
	createPost(t, s, "draft", false)
	if err := s.UpdatePostFields(ctx, older.ID, map[string]any{"published_at": time.Now().Add(-time.Hour), "featured": true}); err != nil {
		t.Fatalf("update fields: %v", err)
	}

	published, err := s.ListPosts(ctx, PostFilter{PublishedOnly: true})
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(published) != 2 || published[0].ID != newer.ID {
		t.Fatalf("expected newest published first, got %+v", published)
	}

	featured, err := s.ListPosts(ctx, PostFilter{PublishedOnly: true, FeaturedOnly: true})
	if err != nil {
		t.Fatalf("list featured: %v", err)
	}
	if len(featured) != 1 || featured[0].ID != older.ID {
		t.Fatalf("expected only the featured post, got %+v", featured)
	}

	all, err := s.ListPosts(ctx, PostFilter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(all))
	}
}

func TestUpdatePostContentLeavesProjectionsAlone(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	post := createPost(t, s, "projection", true)

	stale := *post
	if _, err := s.AppendView(ctx, post.ID, "v1", time.Now()); err != nil {
		t.Fatalf("append view: %v", err)
	}

	stale.Title = "Edited"
	if err := s.UpdatePostContent(ctx, &stale); err != nil {
		t.Fatalf("update content: %v", err)
	}

	loaded, err := s.GetPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if loaded.Title != "Edited" {
		t.Fatalf("expected title updated, got %q", loaded.Title)
	}
	if loaded.ViewCount != 1 {
		t.Fatalf("expected view count preserved, got %d", loaded.ViewCount)
	}
}

func TestAppendViewIncrementsAndRecords(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	post := createPost(t, s, "viewed", true)

	for i := 1; i <= 5; i++ {
		count, err := s.AppendView(ctx, post.ID, "same-viewer", time.Now())
		if err != nil {
			t.Fatalf("append view: %v", err)
		}
		if count != uint64(i) {
			t.Fatalf("expected count %d, got %d", i, count)
		}
	}

	var records int64
	s.db.Model(&db.PostView{}).Where("post_id = ?", post.ID).Count(&records)
	if records != 5 {
		t.Fatalf("expected 5 view records, got %d", records)
	}

	if _, err := s.AppendView(ctx, 999, "v", time.Now()); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for missing post, got %v", err)
	}
	s.db.Model(&db.PostView{}).Where("post_id = ?", 999).Count(&records)
	if records != 0 {
		t.Fatalf("missing post must not leave view records, got %d", records)
	}
}

func TestUpsertRatingKeepsOneRowPerUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	post := createPost(t, s, "rated", true)

	for _, v := range []int{4, 2} {
		if err := s.UpsertRating(ctx, &db.Rating{PostID: post.ID, UserID: "u1", Value: v}); err != nil {
			t.Fatalf("upsert rating: %v", err)
		}
	}
	if err := s.UpsertRating(ctx, &db.Rating{PostID: post.ID, UserID: "u2", Value: 5}); err != nil {
		t.Fatalf("upsert rating: %v", err)
	}

	values, err := s.ListRatingValues(ctx, post.ID)
	if err != nil {
		t.Fatalf("list values: %v", err)
	}
	if len(values) != 2 {
		t.Fatalf("expected 2 ratings, got %v", values)
	}

	r, err := s.GetRating(ctx, post.ID, "u1")
	if err != nil {
		t.Fatalf("get rating: %v", err)
	}
	if r.Value != 2 {
		t.Fatalf("expected overwritten value 2, got %d", r.Value)
	}
}

func TestDeletePostCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	post := createPost(t, s, "doomed", true)
	keep := createPost(t, s, "kept", true)

	for _, id := range []uint{post.ID, keep.ID} {
		if err := s.CreateComment(ctx, &db.Comment{PostID: id, AuthorName: "a", AuthorEmail: "a@example.com", Content: "c"}); err != nil {
			t.Fatalf("create comment: %v", err)
		}
		if err := s.UpsertRating(ctx, &db.Rating{PostID: id, UserID: "u", Value: 3}); err != nil {
			t.Fatalf("upsert rating: %v", err)
		}
		if _, err := s.AppendView(ctx, id, "v", time.Now()); err != nil {
			t.Fatalf("append view: %v", err)
		}
	}

	if err := s.DeletePost(ctx, post.ID); err != nil {
		t.Fatalf("delete post: %v", err)
	}
	if err := s.DeletePost(ctx, post.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}

	for _, model := range []any{&db.Comment{}, &db.Rating{}, &db.PostView{}} {
		var orphaned, kept int64
		s.db.Model(model).Where("post_id = ?", post.ID).Count(&orphaned)
		s.db.Model(model).Where("post_id = ?", keep.ID).Count(&kept)
		if orphaned != 0 || kept != 1 {
			t.Fatalf("%T: expected 0 orphaned and 1 kept, got %d and %d", model, orphaned, kept)
		}
	}
}

func TestTransactionRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	post := createPost(t, s, "atomic", true)

	boom := apperr.Validation("value", "boom")
	err := s.Transaction(ctx, func(tx ContentStore) error {
		if err := tx.UpsertRating(ctx, &db.Rating{PostID: post.ID, UserID: "u", Value: 5}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error to pass through, got %v", err)
	}

	values, err := s.ListRatingValues(ctx, post.ID)
	if err != nil {
		t.Fatalf("list values: %v", err)
	}
	if len(values) != 0 {
		t.Fatalf("expected rollback, got %v", values)
	}
}

func TestDeleteCommentNotFound(t *testing.T) {
	s := newTestStore(t)
	if err := s.DeleteComment(context.Background(), 7); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListCategories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createPost(t, s, "a", true)
	createPost(t, s, "b", true)
	draft := createPost(t, s, "c", false)
	if err := s.UpdatePostFields(ctx, draft.ID, map[string]any{"category": "Drafts"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	published, err := s.ListCategories(ctx, true)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(published) != 1 || published[0] != "Go" {
		t.Fatalf("unexpected published categories %v", published)
	}
	all, err := s.ListCategories(ctx, false)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("unexpected categories %v", all)
	}
}

func TestReconcileProjectionsRepairsDrift(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	post := createPost(t, s, "drifted", true)

	if _, err := s.AppendView(ctx, post.ID, "v", time.Now()); err != nil {
		t.Fatalf("append view: %v", err)
	}
	if err := s.UpsertRating(ctx, &db.Rating{PostID: post.ID, UserID: "u1", Value: 4}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.UpsertRating(ctx, &db.Rating{PostID: post.ID, UserID: "u2", Value: 5}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.CreateComment(ctx, &db.Comment{PostID: post.ID, AuthorName: "a", AuthorEmail: "a@b.c", Content: "hi"}); err != nil {
		t.Fatalf("comment: %v", err)
	}
	s.db.Model(&db.Post{}).Where("id = ?", post.ID).UpdateColumns(map[string]any{"view_count": 40, "comment_count": 9})

	changed, err := s.ReconcileProjections(ctx)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if changed != 1 {
		t.Fatalf("expected 1 changed post, got %d", changed)
	}

	loaded, _ := s.GetPost(ctx, post.ID)
	if loaded.ViewCount != 1 || loaded.CommentCount != 1 || loaded.TotalRatings != 2 || loaded.Rating != 4.5 {
		t.Fatalf("unexpected projections %+v", loaded)
	}

	changed, err = s.ReconcileProjections(ctx)
	if err != nil || changed != 0 {
		t.Fatalf("expected idempotent reconcile, got %d %v", changed, err)
	}
}

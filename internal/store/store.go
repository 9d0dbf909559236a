// Package store is the persistence boundary of the content engine. Every
// operation either completes or returns an apperr-classified error.
package store

import (
	"context"
	"time"

	"github.com/inkwell/internal/db"
)

// PostFilter narrows ListPosts.
type PostFilter struct {
	PublishedOnly bool
	FeaturedOnly  bool
}

// ContentStore is the record store the services are written against.
type ContentStore interface {
	// Transaction runs fn against a store bound to a single transaction.
	Transaction(ctx context.Context, fn func(tx ContentStore) error) error

	CreatePost(ctx context.Context, post *db.Post) error
	// UpdatePostContent writes the author editable columns; projections are left untouched.
	UpdatePostContent(ctx context.Context, post *db.Post) error
	UpdatePostFields(ctx context.Context, id uint, fields map[string]any) error
	// SetProjections overwrites counter columns without touching updated_at.
	SetProjections(ctx context.Context, id uint, fields map[string]any) error
	GetPost(ctx context.Context, id uint) (*db.Post, error)
	// LockPost is GetPost holding the row lock until the transaction ends.
	LockPost(ctx context.Context, id uint) (*db.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*db.Post, error)
	SlugTaken(ctx context.Context, slug string, excludeID uint) (bool, error)
	ListPosts(ctx context.Context, filter PostFilter) ([]db.Post, error)
	ListCategories(ctx context.Context, publishedOnly bool) ([]string, error)
	DeletePost(ctx context.Context, id uint) error

	CreateComment(ctx context.Context, comment *db.Comment) error
	GetComment(ctx context.Context, id uint) (*db.Comment, error)
	ListComments(ctx context.Context, postID uint) ([]db.Comment, error)
	CountComments(ctx context.Context, postID uint) (int64, error)
	DeleteComment(ctx context.Context, id uint) error

	UpsertRating(ctx context.Context, rating *db.Rating) error
	GetRating(ctx context.Context, postID uint, userID string) (*db.Rating, error)
	ListRatingValues(ctx context.Context, postID uint) ([]int, error)

	// AppendView records one view and returns the post's new view count.
	AppendView(ctx context.Context, postID uint, viewer string, at time.Time) (uint64, error)
	ViewCount(ctx context.Context, postID uint) (uint64, error)

	// ReconcileProjections rebuilds counters from source rows and reports how many posts changed.
	ReconcileProjections(ctx context.Context) (int, error)
}

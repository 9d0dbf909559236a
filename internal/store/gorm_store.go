package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inkwell/internal/apperr"
	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/rating"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements ContentStore on top of gorm.
type GormStore struct {
	db *gorm.DB
}

var _ ContentStore = (*GormStore)(nil)

// editableColumns 是作者可以修改的列；计数投影不在其中。
var editableColumns = []string{
	"title", "excerpt", "content", "author_name", "author_id", "published_at",
	"category", "tags", "image_url", "video_url", "slug",
	"seo_title", "seo_description", "seo_keywords", "seo_canonical_url", "seo_og_type", "seo_structured_data",
	"updated_at",
}

func NewGormStore(gdb *gorm.DB) *GormStore {
	return &GormStore{db: gdb}
}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx ContentStore) error) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
	return apperr.Store("transaction", err)
}

func (s *GormStore) CreatePost(ctx context.Context, post *db.Post) error {
	if err := s.conn(ctx).Create(post).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict(fmt.Sprintf("slug %q is already taken", post.Slug))
		}
		return apperr.Store("create post", err)
	}
	return nil
}

func (s *GormStore) UpdatePostContent(ctx context.Context, post *db.Post) error {
	err := s.conn(ctx).Model(post).Select(editableColumns).Updates(post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict(fmt.Sprintf("slug %q is already taken", post.Slug))
		}
		return apperr.Store("update post", err)
	}
	return nil
}

func (s *GormStore) UpdatePostFields(ctx context.Context, id uint, fields map[string]any) error {
	err := s.conn(ctx).Model(&db.Post{}).Where("id = ?", id).Updates(fields).Error
	return apperr.Store("update post fields", err)
}

func (s *GormStore) SetProjections(ctx context.Context, id uint, fields map[string]any) error {
	err := s.conn(ctx).Model(&db.Post{}).Where("id = ?", id).UpdateColumns(fields).Error
	return apperr.Store("set projections", err)
}

func (s *GormStore) GetPost(ctx context.Context, id uint) (*db.Post, error) {
	var post db.Post
	if err := s.conn(ctx).First(&post, id).Error; err != nil {
		return nil, notFoundOr(err, "post", id, "get post")
	}
	return &post, nil
}

// LockPost reads the post and holds its row until the surrounding transaction
// ends, so concurrent recomputes of the same post run one after another.
func (s *GormStore) LockPost(ctx context.Context, id uint) (*db.Post, error) {
	var post db.Post
	if err := forUpdate(s.conn(ctx)).First(&post, id).Error; err != nil {
		return nil, notFoundOr(err, "post", id, "lock post")
	}
	return &post, nil
}

// sqlite 没有行锁，写事务由数据库级写锁串行化。
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (s *GormStore) GetPostBySlug(ctx context.Context, slug string) (*db.Post, error) {
	var post db.Post
	if err := s.conn(ctx).Where("slug = ?", slug).First(&post).Error; err != nil {
		return nil, notFoundOr(err, "post", slug, "get post by slug")
	}
	return &post, nil
}

func (s *GormStore) SlugTaken(ctx context.Context, slug string, excludeID uint) (bool, error) {
	query := s.conn(ctx).Model(&db.Post{}).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, apperr.Store("check slug", err)
	}
	return count > 0, nil
}

func (s *GormStore) ListPosts(ctx context.Context, filter PostFilter) ([]db.Post, error) {
	query := s.conn(ctx).Model(&db.Post{})
	if filter.PublishedOnly {
		query = query.Where("published = ?", true)
	}
	if filter.FeaturedOnly {
		query = query.Where("featured = ?", true)
	}

	var posts []db.Post
	if err := query.Order("published_at desc, id desc").Find(&posts).Error; err != nil {
		return nil, apperr.Store("list posts", err)
	}
	return posts, nil
}

func (s *GormStore) ListCategories(ctx context.Context, publishedOnly bool) ([]string, error) {
	query := s.conn(ctx).Model(&db.Post{})
	if publishedOnly {
		query = query.Where("published = ?", true)
	}
	var categories []string
	if err := query.Distinct().Order("category").Pluck("category", &categories).Error; err != nil {
		return nil, apperr.Store("list categories", err)
	}
	return categories, nil
}

// DeletePost 在同一事务中删除文章及其评论、评分和浏览记录。
func (s *GormStore) DeletePost(ctx context.Context, id uint) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var post db.Post
		if err := tx.Select("id").First(&post, id).Error; err != nil {
			return notFoundOr(err, "post", id, "get post")
		}
		for _, model := range []any{&db.PostView{}, &db.Rating{}, &db.Comment{}} {
			if err := tx.Where("post_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&db.Post{}, id).Error
	})
	return apperr.Store("delete post", err)
}

func (s *GormStore) CreateComment(ctx context.Context, comment *db.Comment) error {
	return apperr.Store("create comment", s.conn(ctx).Create(comment).Error)
}

func (s *GormStore) GetComment(ctx context.Context, id uint) (*db.Comment, error) {
	var comment db.Comment
	if err := s.conn(ctx).First(&comment, id).Error; err != nil {
		return nil, notFoundOr(err, "comment", id, "get comment")
	}
	return &comment, nil
}

func (s *GormStore) ListComments(ctx context.Context, postID uint) ([]db.Comment, error) {
	var comments []db.Comment
	if err := s.conn(ctx).Where("post_id = ?", postID).Order("created_at asc, id asc").Find(&comments).Error; err != nil {
		return nil, apperr.Store("list comments", err)
	}
	return comments, nil
}

func (s *GormStore) CountComments(ctx context.Context, postID uint) (int64, error) {
	var count int64
	if err := s.conn(ctx).Model(&db.Comment{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, apperr.Store("count comments", err)
	}
	return count, nil
}

func (s *GormStore) DeleteComment(ctx context.Context, id uint) error {
	result := s.conn(ctx).Delete(&db.Comment{}, id)
	if result.Error != nil {
		return apperr.Store("delete comment", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("comment", id)
	}
	return nil
}

func (s *GormStore) UpsertRating(ctx context.Context, r *db.Rating) error {
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(r).Error
	return apperr.Store("upsert rating", err)
}

func (s *GormStore) GetRating(ctx context.Context, postID uint, userID string) (*db.Rating, error) {
	var r db.Rating
	err := s.conn(ctx).Where("post_id = ? AND user_id = ?", postID, userID).First(&r).Error
	if err != nil {
		return nil, notFoundOr(err, "rating", userID, "get rating")
	}
	return &r, nil
}

func (s *GormStore) ListRatingValues(ctx context.Context, postID uint) ([]int, error) {
	var values []int
	if err := s.conn(ctx).Model(&db.Rating{}).Where("post_id = ?", postID).Pluck("value", &values).Error; err != nil {
		return nil, apperr.Store("list ratings", err)
	}
	return values, nil
}

// AppendView 用 view_count + 1 的 SQL 表达式自增，避免读-改-写丢失更新。
func (s *GormStore) AppendView(ctx context.Context, postID uint, viewer string, at time.Time) (uint64, error) {
	var count uint64
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&db.Post{}).Where("id = ?", postID).
			UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperr.NotFound("post", postID)
		}
		if err := tx.Create(&db.PostView{PostID: postID, Viewer: viewer, ViewedAt: at}).Error; err != nil {
			return err
		}
		var post db.Post
		if err := tx.Select("id", "view_count").First(&post, postID).Error; err != nil {
			return err
		}
		count = post.ViewCount
		return nil
	})
	if err != nil {
		return 0, apperr.Store("append view", err)
	}
	return count, nil
}

func (s *GormStore) ViewCount(ctx context.Context, postID uint) (uint64, error) {
	var post db.Post
	if err := s.conn(ctx).Select("id", "view_count").First(&post, postID).Error; err != nil {
		return 0, notFoundOr(err, "post", postID, "view count")
	}
	return post.ViewCount, nil
}

func (s *GormStore) ReconcileProjections(ctx context.Context) (int, error) {
	var ids []uint
	if err := s.conn(ctx).Model(&db.Post{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return 0, apperr.Store("list post ids", err)
	}

	changed := 0
	for _, id := range ids {
		err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
			var post db.Post
			if err := forUpdate(tx).First(&post, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil
				}
				return err
			}

			var views, comments int64
			if err := tx.Model(&db.PostView{}).Where("post_id = ?", id).Count(&views).Error; err != nil {
				return err
			}
			if err := tx.Model(&db.Comment{}).Where("post_id = ?", id).Count(&comments).Error; err != nil {
				return err
			}
			var values []int
			if err := tx.Model(&db.Rating{}).Where("post_id = ?", id).Pluck("value", &values).Error; err != nil {
				return err
			}
			summary := rating.Aggregate(values)

			if post.ViewCount == uint64(views) && post.CommentCount == uint(comments) &&
				post.TotalRatings == summary.Count && post.Rating == summary.Average {
				return nil
			}
			changed++
			return tx.Model(&db.Post{}).Where("id = ?", id).UpdateColumns(map[string]any{
				"view_count":    views,
				"comment_count": comments,
				"rating":        summary.Average,
				"total_ratings": summary.Count,
			}).Error
		})
		if err != nil {
			return changed, apperr.Store("reconcile projections", err)
		}
	}
	return changed, nil
}

func notFoundOr(err error, entity string, key any, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(entity, key)
	}
	return apperr.Store(op, err)
}

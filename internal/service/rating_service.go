package service

import (
	"context"
	"strings"
	"time"

	"github.com/inkwell/internal/apperr"
	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/rating"
	"github.com/inkwell/internal/store"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const maxUserIDLength = 64

// RatingService records one rating per (post, user) and keeps the post's
// rating projection in step with the stored rows.
type RatingService struct {
	store store.ContentStore
	now   func() time.Time
}

func NewRatingService(st store.ContentStore) *RatingService {
	return &RatingService{store: st, now: time.Now}
}

// Submit upserts the user's rating and rewrites rating and total_ratings from
// every stored value. Row and projection commit or roll back together.
func (s *RatingService) Submit(ctx context.Context, postID uint, userID string, value int) (rating.Summary, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return rating.Summary{}, apperr.Validation("user_id", "is required")
	}
	if len(userID) > maxUserIDLength {
		return rating.Summary{}, apperr.Validation("user_id", "is too long")
	}
	if err := rating.Validate(value); err != nil {
		return rating.Summary{}, err
	}

	var summary rating.Summary
	err := s.store.Transaction(ctx, func(tx store.ContentStore) error {
		if _, err := tx.LockPost(ctx, postID); err != nil {
			return err
		}
		now := s.now().UTC()
		if err := tx.UpsertRating(ctx, &db.Rating{
			PostID:    postID,
			UserID:    userID,
			Value:     value,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return err
		}
		values, err := tx.ListRatingValues(ctx, postID)
		if err != nil {
			return err
		}
		summary = rating.Aggregate(values)
		return tx.SetProjections(ctx, postID, map[string]any{
			"rating":        summary.Average,
			"total_ratings": summary.Count,
		})
	})
	if err != nil {
		return rating.Summary{}, err
	}
	ratingCounter.Add(ctx, 1, metric.WithAttributes(attribute.Int("value", value)))
	return summary, nil
}

// Get returns the user's current rating of the post.
func (s *RatingService) Get(ctx context.Context, postID uint, userID string) (*db.Rating, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperr.Validation("user_id", "is required")
	}
	return s.store.GetRating(ctx, postID, userID)
}

// Summary reads the cached projection from the post.
func (s *RatingService) Summary(ctx context.Context, postID uint) (rating.Summary, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return rating.Summary{}, err
	}
	return rating.Summary{Average: post.DisplayRating(), Count: post.TotalRatings}, nil
}

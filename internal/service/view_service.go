package service

import (
	"context"
	"strings"
	"time"

	"github.com/inkwell/internal/realtime"
	"github.com/inkwell/internal/store"
	"go.uber.org/zap"
)

const anonymousViewer = "anonymous"

// ViewService appends view records and fans the new count out to subscribers.
type ViewService struct {
	store  store.ContentStore
	broker realtime.Broker
	logger *zap.Logger
	now    func() time.Time
}

func NewViewService(st store.ContentStore, broker realtime.Broker, logger *zap.Logger) *ViewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewService{store: st, broker: broker, logger: logger, now: time.Now}
}

// Track records one view and returns the authoritative count. Views are not
// de-duplicated per viewer; the viewer is stored with the record.
func (s *ViewService) Track(ctx context.Context, postID uint, viewer string) (uint64, error) {
	viewer = strings.TrimSpace(viewer)
	if viewer == "" {
		viewer = anonymousViewer
	}
	at := s.now().UTC()
	count, err := s.store.AppendView(ctx, postID, viewer, at)
	if err != nil {
		return 0, err
	}
	viewCounter.Add(ctx, 1)

	// 推送失败不影响计数结果，订阅者会在下一次浏览时收敛。
	if err := s.broker.Publish(ctx, realtime.ViewUpdate{PostID: postID, Count: count, At: at}); err != nil {
		s.logger.Warn("publish view update failed", zap.Uint("post_id", postID), zap.Error(err))
	}
	return count, nil
}

func (s *ViewService) Count(ctx context.Context, postID uint) (uint64, error) {
	return s.store.ViewCount(ctx, postID)
}

// Subscribe follows the post's view count until ctx is done or the
// subscription is closed, whichever comes first.
func (s *ViewService) Subscribe(ctx context.Context, postID uint) (*realtime.Subscription, error) {
	if _, err := s.store.ViewCount(ctx, postID); err != nil {
		return nil, err
	}
	sub := s.broker.Subscribe(postID)
	context.AfterFunc(ctx, sub.Close)
	return sub, nil
}

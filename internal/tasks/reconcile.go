// Package tasks holds scheduled maintenance jobs.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const runTimeout = 3 * time.Minute

// ProjectionStore rebuilds cached counters from their source rows.
type ProjectionStore interface {
	ReconcileProjections(ctx context.Context) (int, error)
}

// Reconciler 定时把 view_count、comment_count、rating、total_ratings
// 与底层记录重新对齐，修复任何漂移。
type Reconciler struct {
	store    ProjectionStore
	cron     *cron.Cron
	schedule string
	logger   *zap.Logger
}

func NewReconciler(st ProjectionStore, schedule string, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		store:    st,
		cron:     cron.New(),
		schedule: schedule,
		logger:   logger,
	}
}

// Start registers the job and starts the scheduler in the background.
func (r *Reconciler) Start() error {
	entryID, err := r.cron.AddFunc(r.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		if _, err := r.Run(ctx); err != nil {
			r.logger.Error("projection reconcile failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule reconcile %q: %w", r.schedule, err)
	}
	r.cron.Start()
	r.logger.Info("projection reconcile scheduled", zap.String("schedule", r.schedule), zap.Int("entry_id", int(entryID)))
	return nil
}

// Stop halts the scheduler and waits for a running job to finish or ctx to end.
func (r *Reconciler) Stop(ctx context.Context) {
	select {
	case <-r.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Run performs one reconcile pass and reports how many posts were corrected.
func (r *Reconciler) Run(ctx context.Context) (int, error) {
	start := time.Now()
	changed, err := r.store.ReconcileProjections(ctx)
	if err != nil {
		return changed, err
	}
	r.logger.Info("projection reconcile finished", zap.Int("changed", changed), zap.Duration("took", time.Since(start)))
	return changed, nil
}

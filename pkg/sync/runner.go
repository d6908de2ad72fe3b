package sync

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/staffsense/staffsense-engine/pkg/apperrors"
)

// Runner invokes the engine on a fixed interval from a single goroutine.
// The engine's single-flight guard means a tick that fires while the
// previous pass is still running is skipped, not queued. Pass failures are
// logged and never terminate the loop.
type Runner struct {
	engine   *Engine
	interval time.Duration
	logger   *zap.Logger
}

// NewRunner creates a Runner.
func NewRunner(engine *Engine, interval time.Duration, logger *zap.Logger) *Runner {
	return &Runner{
		engine:   engine,
		interval: interval,
		logger:   logger.Named("sync-runner"),
	}
}

// Run blocks until ctx is done, running one pass immediately and then one
// per interval. Call it from its own goroutine.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("sync loop stopped")
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	result, err := r.engine.Sync(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrSyncInProgress) {
			r.logger.Warn("previous sync pass still running, skipping tick")
			return
		}
		r.logger.Error("sync pass failed", zap.Error(err))
		return
	}

	r.logger.Info("sync pass finished",
		zap.String("outcome", string(result.Outcome)),
		zap.Int("total", result.Total),
		zap.Int("updated", result.Updated),
		zap.Int("failed", result.Failed))
}

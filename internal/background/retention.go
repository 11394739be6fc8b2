package background

import (
	"context"
	"log/slog"
	"time"
)

// ImportRunStore is the slice of the import-run repository the sweeper needs.
type ImportRunStore interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionManager periodically removes import runs older than the retention
// window. Sessions are not swept here; stale session cookies are cleared
// lazily when their bearer next shows up.
type RetentionManager struct {
	runs      ImportRunStore
	logger    *slog.Logger
	interval  time.Duration
	retention time.Duration
	stopCh    chan struct{}
}

// NewRetentionManager creates a new retention manager
func NewRetentionManager(
	runs ImportRunStore,
	logger *slog.Logger,
	interval time.Duration,
	retention time.Duration,
) *RetentionManager {
	return &RetentionManager{
		runs:      runs,
		logger:    logger,
		interval:  interval,
		retention: retention,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic sweep
func (rm *RetentionManager) Start(ctx context.Context) {
	ticker := time.NewTicker(rm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	rm.sweep(ctx)

	for {
		select {
		case <-ticker.C:
			rm.sweep(ctx)
		case <-rm.stopCh:
			rm.logger.Info("retention manager stopped")
			return
		case <-ctx.Done():
			rm.logger.Info("retention manager context cancelled")
			return
		}
	}
}

func (rm *RetentionManager) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cutoff := time.Now().UTC().Add(-rm.retention)
	rowsDeleted, err := rm.runs.DeleteOlderThan(sweepCtx, cutoff)
	if err != nil {
		rm.logger.Error("failed to sweep old import runs", slog.Any("error", err))
		return
	}

	if rowsDeleted > 0 {
		rm.logger.Info("import run sweep completed", slog.Int64("rows_deleted", rowsDeleted))
	}
}

// Stop signals the retention manager to stop
func (rm *RetentionManager) Stop() {
	close(rm.stopCh)
}

package workers

import (
	"context"
	"errors"
	"time"

	"stratus-efb/chartvault/internal/logging"
	"stratus-efb/chartvault/internal/services"
)

// StartSyncScheduler runs the version check on a fixed interval. A pass
// already in flight (manual trigger, overlapping tick) is skipped rather
// than queued.
func StartSyncScheduler(ctx context.Context, sync *services.SyncService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logging.Info("Sync scheduler started", "interval", interval.String())

	runOnce(ctx, sync)

	for {
		select {
		case <-ticker.C:
			runOnce(ctx, sync)
		case <-ctx.Done():
			logging.Info("Sync scheduler shutting down")
			return
		}
	}
}

func runOnce(ctx context.Context, sync *services.SyncService) {
	err := sync.RunPass(ctx)
	if err == nil {
		return
	}

	if errors.Is(err, services.ErrSyncInProgress) {
		logging.Debug("Scheduled sync skipped, pass already running")
		return
	}
	// RunPass already logged the failure and updated the reporter.
}

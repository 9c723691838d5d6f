package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"stratus-efb/chartvault/internal/common"
	"stratus-efb/chartvault/internal/logging"
	"stratus-efb/chartvault/internal/services"
)

// SyncStatusHandler handles GET /api/v1/sync/status
func SyncStatusHandler(sync *services.SyncService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		common.RespondSuccess(w, start, "sync status", sync.Progress().Snapshot())
	}
}

// TriggerSyncHandler handles POST /api/v1/sync. The pass runs in the
// background; callers poll the status endpoint for progress. A pass
// already in flight answers 409.
func TriggerSyncHandler(sync *services.SyncService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		if sync.Progress().Snapshot().IsSyncing {
			common.RespondError(w, start, services.ErrSyncInProgress, "", http.StatusConflict)
			return
		}

		go func() {
			if err := sync.RunPass(context.Background()); err != nil && !errors.Is(err, services.ErrSyncInProgress) {
				logging.Error("Manual sync pass failed", "error", err.Error())
			}
		}()

		common.RespondSuccess(w, start, "sync pass started", nil, http.StatusAccepted)
	}
}

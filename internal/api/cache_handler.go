package api

import (
	"errors"
	"net/http"
	"time"

	"stratus-efb/chartvault/internal/common"
	"stratus-efb/chartvault/internal/services"
)

// CacheStatsHandler handles GET /api/v1/cache/stats
func CacheStatsHandler(stats *services.StatsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		resp, err := stats.CacheStats(r.Context())
		if err != nil {
			common.RespondError(w, start, err, "failed to compute cache statistics")
			return
		}

		common.RespondSuccess(w, start, "cache statistics", resp)
	}
}

// ClearCacheHandler handles POST /api/v1/cache/clear. Evicts every cycle
// except the current one.
func ClearCacheHandler(retention *services.RetentionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		if err := retention.ClearCache(r.Context()); err != nil {
			if errors.Is(err, services.ErrSyncInProgress) {
				common.RespondError(w, start, err, "", http.StatusConflict)
				return
			}
			common.RespondError(w, start, err, "failed to clear cache")
			return
		}

		common.RespondSuccess(w, start, "cache cleared", nil)
	}
}

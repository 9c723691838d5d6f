package services

import (
	"context"
	"time"

	"stratus-efb/chartvault/internal/cache"
	"stratus-efb/chartvault/internal/db/repositories"
	"stratus-efb/chartvault/internal/logging"
	"stratus-efb/chartvault/internal/metrics"
	gormModels "stratus-efb/chartvault/internal/models/gorm"

	"golang.org/x/sync/semaphore"
)

// RetentionService enforces "keep latest K cycles" across the metadata
// store and the content cache. Eviction is best-effort: a failure on one
// cycle is logged and the remaining cycles are still processed. The
// current cycle's data is never deleted.
type RetentionService struct {
	versions  *repositories.VersionRepository
	documents *repositories.DocumentRepository
	blobs     *cache.BlobCache
	metrics   *metrics.MetricsRegistry
	flight    *semaphore.Weighted
}

// NewRetentionService creates a new retention service sharing the sync
// engine's single-flight guard
func NewRetentionService(
	versions *repositories.VersionRepository,
	documents *repositories.DocumentRepository,
	blobs *cache.BlobCache,
	metricsReg *metrics.MetricsRegistry,
	flight *semaphore.Weighted,
) *RetentionService {
	return &RetentionService{
		versions:  versions,
		documents: documents,
		blobs:     blobs,
		metrics:   metricsReg,
		flight:    flight,
	}
}

// Retain keeps the newest latestK cycles by effective date and evicts
// the rest. Rejected while a sync pass holds the guard.
func (s *RetentionService) Retain(ctx context.Context, latestK int) error {
	if !s.flight.TryAcquire(1) {
		return ErrSyncInProgress
	}
	defer s.flight.Release(1)

	s.retainLocked(ctx, latestK)
	return nil
}

// ClearCache is the user-initiated "clear cache" action: everything but
// the current cycle goes.
func (s *RetentionService) ClearCache(ctx context.Context) error {
	return s.Retain(ctx, 0)
}

// SweepOrphans removes cache files older than maxAge regardless of
// version. Never touches metadata rows.
func (s *RetentionService) SweepOrphans(maxAge time.Duration) error {
	if !s.flight.TryAcquire(1) {
		return ErrSyncInProgress
	}
	defer s.flight.Release(1)

	s.sweepOrphansLocked(maxAge)
	return nil
}

// retainLocked runs the retention policy with the guard already held
// (the orchestrator calls this during Cleanup)
func (s *RetentionService) retainLocked(ctx context.Context, latestK int) {
	all, err := s.versions.ListByEffectiveDateDesc(ctx)
	if err != nil {
		logging.Error("Retention: failed to list cycles", "error", err.Error())
		return
	}

	evicted := 0
	for i, v := range all {
		if i < latestK {
			continue
		}
		if v.IsCurrent {
			continue
		}
		if s.evict(ctx, v) {
			evicted++
		}
	}

	if evicted > 0 {
		logging.Info("Retention pruned old cycles",
			"evicted", evicted,
			"retained", len(all)-evicted,
			"latest_k", latestK,
		)
	}
}

// evict removes one cycle's document rows, version row, and both cache
// partitions. Each step's failure is logged and the rest still runs.
func (s *RetentionService) evict(ctx context.Context, v gormModels.AiracVersion) bool {
	ok := true

	if err := s.documents.DeleteByVersion(ctx, v.Version); err != nil {
		logging.Warn("Retention: failed to delete document rows", "airac_version", v.Version, "error", err.Error())
		ok = false
	}

	if err := s.versions.Delete(ctx, v.Version); err != nil {
		logging.Warn("Retention: failed to delete cycle row", "airac_version", v.Version, "error", err.Error())
		ok = false
	}

	if err := s.blobs.RemoveVersion(v.Version); err != nil {
		logging.Warn("Retention: failed to remove cache partition", "airac_version", v.Version, "error", err.Error())
		ok = false
	}

	if ok && s.metrics != nil {
		s.metrics.VersionsEvictedTotal.Inc()
	}
	return ok
}

func (s *RetentionService) sweepOrphansLocked(maxAge time.Duration) {
	removed, err := s.blobs.SweepOlderThan(maxAge)
	if err != nil {
		logging.Warn("Orphan sweep finished with errors", "removed", removed, "error", err.Error())
	}

	if removed > 0 {
		logging.Info("Orphan sweep removed stale cache files", "removed", removed)
		if s.metrics != nil {
			s.metrics.OrphansSweptTotal.Add(float64(removed))
		}
	}
}

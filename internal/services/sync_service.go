package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stratus-efb/chartvault/internal/cache"
	"stratus-efb/chartvault/internal/constants"
	"stratus-efb/chartvault/internal/db/repositories"
	"stratus-efb/chartvault/internal/logging"
	"stratus-efb/chartvault/internal/metrics"
	"stratus-efb/chartvault/internal/models/dtos"
	gormModels "stratus-efb/chartvault/internal/models/gorm"
	"stratus-efb/chartvault/internal/providers"

	"golang.org/x/sync/semaphore"
)

// ErrSyncInProgress is returned when a pass or retention run already
// holds the single-flight guard
var ErrSyncInProgress = errors.New("a sync pass is already in progress")

// SyncService drives one full synchronization pass:
// CheckingVersion → Downloading → Persisting → DemotingOthers → Cleanup.
// Passes are serialized with retention runs through a shared capacity-1
// semaphore; overlapping triggers are rejected, not queued.
type SyncService struct {
	resolver  *VersionResolver
	catalog   providers.CatalogAPI
	versions  *repositories.VersionRepository
	airports  *repositories.AirportRepository
	documents *repositories.DocumentRepository
	blobs     *cache.BlobCache
	retention *RetentionService
	progress  *ProgressReporter
	metrics   *metrics.MetricsRegistry
	flight    *semaphore.Weighted
}

// NewSyncService creates the orchestrator. metricsReg may be nil.
func NewSyncService(
	catalog providers.CatalogAPI,
	versions *repositories.VersionRepository,
	airports *repositories.AirportRepository,
	documents *repositories.DocumentRepository,
	blobs *cache.BlobCache,
	retention *RetentionService,
	progress *ProgressReporter,
	metricsReg *metrics.MetricsRegistry,
	flight *semaphore.Weighted,
) *SyncService {
	return &SyncService{
		resolver:  NewVersionResolver(catalog, versions),
		catalog:   catalog,
		versions:  versions,
		airports:  airports,
		documents: documents,
		blobs:     blobs,
		retention: retention,
		progress:  progress,
		metrics:   metricsReg,
		flight:    flight,
	}
}

// Progress exposes the reporter for the UI surface
func (s *SyncService) Progress() *ProgressReporter {
	return s.progress
}

// RunPass executes one sync pass. Errors are trapped at pass granularity:
// the reporter's lastError is set, checkpointed rows stay in place, and
// the state machine returns to idle. The returned error mirrors the
// reporter for programmatic callers.
func (s *SyncService) RunPass(ctx context.Context) error {
	if !s.flight.TryAcquire(1) {
		s.countPass("rejected")
		return ErrSyncInProgress
	}
	defer s.flight.Release(1)

	start := time.Now()
	s.progress.Begin()

	outcome, err := s.runPassLocked(ctx)
	if err != nil {
		s.progress.Fail(err)
		s.countPass("error")
		logging.Error("Sync pass failed",
			"error", err.Error(),
			"transient", providers.IsTransient(err),
			"duration", time.Since(start).Truncate(time.Millisecond).String(),
		)
		return err
	}

	s.countPass(outcome)
	if s.metrics != nil {
		s.metrics.SyncPassDuration.Observe(time.Since(start).Seconds())
	}
	return nil
}

func (s *SyncService) runPassLocked(ctx context.Context) (string, error) {
	s.progress.SetState(StateCheckingVersion, "Checking published AIRAC cycle")

	res, err := s.resolver.Resolve(ctx)
	if err != nil {
		return "", err
	}

	if res.UpToDate {
		if err := s.repairCurrentFlag(ctx, res.Local); err != nil {
			return "", err
		}
		s.progress.Complete(fmt.Sprintf("Cycle %s is up to date", res.Remote.Version))
		return "up_to_date", nil
	}

	if err := s.downloadCycle(ctx, res.Remote); err != nil {
		return "", err
	}

	s.progress.SetState(StateCleanup, "Cleaning up old cycles")
	s.retention.retainLocked(ctx, constants.DefaultRetainVersions)
	s.retention.sweepOrphansLocked(constants.OrphanSweepMaxAge)

	s.progress.Complete(fmt.Sprintf("Cycle %s synchronized", res.Remote.Version))
	return "success", nil
}

// repairCurrentFlag restores the single-current invariant when a row for
// the published cycle exists but nothing is flagged current (e.g. a
// crash before an older promote committed, or manual store surgery).
func (s *SyncService) repairCurrentFlag(ctx context.Context, local *gormModels.AiracVersion) error {
	if local.IsCurrent {
		return nil
	}

	current, err := s.versions.GetCurrent(ctx)
	if err != nil {
		return err
	}
	if current != nil {
		return nil
	}

	logging.Warn("No cycle flagged current, repairing", "airac_version", local.Version)
	return s.versions.PromoteCurrent(ctx, local.Version)
}

// downloadCycle walks the catalog in two passes. The first fetches every
// airport's document list once (snapshotting each to the structured
// cache) to compute a stable progress denominator; the second persists
// rows from those snapshots, flushing a checkpoint every
// CheckpointAirportInterval airports so a crash loses bounded work.
func (s *SyncService) downloadCycle(ctx context.Context, remote *dtos.VersionInfo) error {
	log := logging.WithSync(remote.Version)
	s.progress.SetState(StateDownloading, fmt.Sprintf("Downloading cycle %s", remote.Version))

	// The row is created up front so an interrupted pass re-detects the
	// same target cycle and resumes through insert-if-absent writes.
	row := &gormModels.AiracVersion{
		Version:       remote.Version,
		EffectiveDate: remote.EffectiveDate,
	}
	if err := s.versions.CreateIfAbsent(ctx, row); err != nil {
		return err
	}

	airports, err := s.listAirports(ctx, remote.Version)
	if err != nil {
		return err
	}
	log.Infow("Fetched airport list", "airports", len(airports))

	// Count pass
	total := 0
	docLists := make(map[string][]dtos.DocumentInfo, len(airports))
	for _, ap := range airports {
		if err := ctx.Err(); err != nil {
			return err
		}

		docs, err := s.listDocuments(ctx, remote.Version, ap.ICAO)
		if err != nil {
			return err
		}
		docLists[ap.ICAO] = docs
		total += len(docs)
	}

	if err := s.versions.UpdateCounts(ctx, remote.Version, total, 0); err != nil {
		return err
	}
	log.Infow("Counted cycle documents", "total", total)

	// Persist pass
	var pendingAirports []gormModels.Airport
	var pendingDocs []gormModels.Document
	downloaded := 0
	processed := 0

	for _, ap := range airports {
		if err := ctx.Err(); err != nil {
			return err
		}

		pendingAirports = append(pendingAirports, gormModels.Airport{
			ICAO:              ap.ICAO,
			NameEn:            ap.NameEn,
			NameCn:            ap.NameCn,
			HasTerminalCharts: ap.HasTerminalCharts,
		})

		for _, di := range docLists[ap.ICAO] {
			pendingDocs = append(pendingDocs, documentRow(remote.Version, ap.ICAO, di))
		}
		downloaded += len(docLists[ap.ICAO])
		processed++

		if total > 0 {
			s.progress.SetFraction(float64(downloaded) / float64(total))
		}

		if processed%constants.CheckpointAirportInterval == 0 {
			if err := s.checkpoint(ctx, remote.Version, &pendingAirports, &pendingDocs, total, downloaded); err != nil {
				return err
			}
			log.Debugw("Checkpoint flushed", "airports_processed", processed, "documents", downloaded)
		}
	}

	s.progress.SetState(StatePersisting, "Finalizing cycle record")
	if err := s.checkpoint(ctx, remote.Version, &pendingAirports, &pendingDocs, total, downloaded); err != nil {
		return err
	}

	s.progress.SetState(StateDemotingOthers, "Switching current cycle")
	if err := s.versions.PromoteCurrent(ctx, remote.Version); err != nil {
		return err
	}

	log.Infow("Cycle persisted",
		"airports", len(airports),
		"documents", downloaded,
	)
	return nil
}

// checkpoint durably flushes the pending rows and progress counters.
// Inserts are if-absent, so replaying a checkpoint after a crash writes
// no duplicates.
func (s *SyncService) checkpoint(
	ctx context.Context,
	version string,
	pendingAirports *[]gormModels.Airport,
	pendingDocs *[]gormModels.Document,
	total, downloaded int,
) error {
	if err := s.airports.InsertIfAbsent(ctx, *pendingAirports); err != nil {
		return err
	}
	if err := s.documents.InsertIfAbsent(ctx, *pendingDocs); err != nil {
		return err
	}
	if err := s.versions.UpdateCounts(ctx, version, total, downloaded); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.DocumentsPersisted.Add(float64(len(*pendingDocs)))
	}

	*pendingAirports = (*pendingAirports)[:0]
	*pendingDocs = (*pendingDocs)[:0]
	return nil
}

// listAirports fetches the cycle's airport list, replaying the structured
// snapshot when a resumed pass already wrote one.
func (s *SyncService) listAirports(ctx context.Context, version string) ([]dtos.AirportInfo, error) {
	var airports []dtos.AirportInfo

	found, err := s.blobs.GetStructured(version, constants.SnapshotAirports, &airports)
	if err != nil {
		return nil, err
	}
	if found {
		s.countCache("snapshot", true)
		return airports, nil
	}
	s.countCache("snapshot", false)

	airports, err = s.catalog.ListAirports(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.blobs.PutStructured(version, constants.SnapshotAirports, airports); err != nil {
		// Snapshots only save refetches; the pass carries on without one.
		logging.Warn("Failed to snapshot airport list", "error", err.Error())
	}
	return airports, nil
}

func (s *SyncService) listDocuments(ctx context.Context, version, icao string) ([]dtos.DocumentInfo, error) {
	dataType := constants.SnapshotDocumentsPrefix + icao

	var docs []dtos.DocumentInfo
	found, err := s.blobs.GetStructured(version, dataType, &docs)
	if err != nil {
		return nil, err
	}
	if found {
		s.countCache("snapshot", true)
		return docs, nil
	}
	s.countCache("snapshot", false)

	docs, err = s.catalog.ListDocuments(ctx, icao)
	if err != nil {
		return nil, err
	}

	if err := s.blobs.PutStructured(version, dataType, docs); err != nil {
		logging.Warn("Failed to snapshot document list", "icao", icao, "error", err.Error())
	}
	return docs, nil
}

func (s *SyncService) countPass(outcome string) {
	if s.metrics != nil {
		s.metrics.SyncPassesTotal.WithLabelValues(outcome).Inc()
	}
}

func (s *SyncService) countCache(partition string, hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.CacheHitsTotal.WithLabelValues(partition).Inc()
	} else {
		s.metrics.CacheMissesTotal.WithLabelValues(partition).Inc()
	}
}

// documentRow maps a catalog entry onto a metadata row. The local id is
// derived as "<kind>_<remoteId>"; is_opened starts false on every cycle
// because each cycle owns its own rows.
func documentRow(version, icao string, di dtos.DocumentInfo) gormModels.Document {
	var parent *string
	if di.ParentID != "" {
		p := di.ParentID
		parent = &p
	}

	return gormModels.Document{
		LocalID:      fmt.Sprintf("%s_%s", di.Kind, di.DocumentID),
		DocumentID:   di.DocumentID,
		AiracVersion: version,
		ParentID:     parent,
		ICAO:         icao,
		NameEn:       di.NameEn,
		NameCn:       di.NameCn,
		Kind:         di.Kind,
		PdfPath:      di.PdfPath,
		HtmlPath:     di.HtmlPath,
		IsModified:   di.IsModified,
	}
}

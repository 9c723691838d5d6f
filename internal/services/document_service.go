package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stratus-efb/chartvault/internal/cache"
	"stratus-efb/chartvault/internal/common"
	"stratus-efb/chartvault/internal/constants"
	"stratus-efb/chartvault/internal/db/repositories"
	"stratus-efb/chartvault/internal/logging"
	"stratus-efb/chartvault/internal/metrics"
	"stratus-efb/chartvault/internal/models/dtos"
	"stratus-efb/chartvault/internal/providers"
)

// ErrNoCurrentVersion is returned when no cycle has been synchronized yet
var ErrNoCurrentVersion = errors.New("no current AIRAC cycle is available")

// DocumentService serves document reads. Payloads are fetch-through: a
// cache hit never touches the network; a miss asks the catalog for a
// signed retrieval reference, downloads the bytes, caches them, then
// serves. Signed references are memoized in memory until they expire.
type DocumentService struct {
	catalog   providers.CatalogAPI
	versions  *repositories.VersionRepository
	airports  *repositories.AirportRepository
	documents *repositories.DocumentRepository
	blobs     *cache.BlobCache
	memo      common.CacheInterface
	metrics   *metrics.MetricsRegistry
}

// NewDocumentService creates a new document service
func NewDocumentService(
	catalog providers.CatalogAPI,
	versions *repositories.VersionRepository,
	airports *repositories.AirportRepository,
	documents *repositories.DocumentRepository,
	blobs *cache.BlobCache,
	memo common.CacheInterface,
	metricsReg *metrics.MetricsRegistry,
) *DocumentService {
	return &DocumentService{
		catalog:   catalog,
		versions:  versions,
		airports:  airports,
		documents: documents,
		blobs:     blobs,
		memo:      memo,
		metrics:   metricsReg,
	}
}

// Open returns a document's payload for the current cycle
func (s *DocumentService) Open(ctx context.Context, kind, documentID string) ([]byte, error) {
	current, err := s.versions.GetCurrent(ctx)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrNoCurrentVersion
	}
	return s.OpenVersion(ctx, current.Version, kind, documentID)
}

// OpenVersion returns a document's payload within a specific cycle
func (s *DocumentService) OpenVersion(ctx context.Context, version, kind, documentID string) ([]byte, error) {
	data, err := s.blobs.Get(version, kind, documentID)
	if err != nil {
		return nil, err
	}
	if data != nil {
		s.countCache(true)
		s.markOpened(ctx, version, documentID)
		return data, nil
	}
	s.countCache(false)

	ref, err := s.retrievalReference(ctx, kind, documentID)
	if err != nil {
		return nil, err
	}

	data, err = s.catalog.FetchBlob(ctx, ref.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download document %s/%s: %w", kind, documentID, err)
	}

	if err := s.blobs.Put(version, kind, documentID, data); err != nil {
		// The bytes are already in hand; serve them and let the next read
		// retry the cache write.
		logging.Warn("Failed to cache document payload",
			"airac_version", version,
			"kind", kind,
			"document_id", documentID,
			"error", err.Error(),
		)
	}

	s.markOpened(ctx, version, documentID)
	return data, nil
}

// ListAirports returns the airport list for the UI. The decoded list is
// memoized briefly; airports only change on a cycle cutover.
func (s *DocumentService) ListAirports(ctx context.Context) ([]dtos.AirportInfo, error) {
	key := string(constants.CachePrefixAirportList) + "all"

	val, err := s.memo.GetOrSet(key, 5*time.Minute, func() (any, error) {
		rows, err := s.airports.ListAll(ctx)
		if err != nil {
			return nil, err
		}

		infos := make([]dtos.AirportInfo, 0, len(rows))
		for _, a := range rows {
			infos = append(infos, dtos.AirportInfo{
				ICAO:              a.ICAO,
				NameEn:            a.NameEn,
				NameCn:            a.NameCn,
				HasTerminalCharts: a.HasTerminalCharts,
			})
		}
		return infos, nil
	})
	if err != nil {
		return nil, err
	}

	return val.([]dtos.AirportInfo), nil
}

// ListDocuments returns one airport's documents in the current cycle
func (s *DocumentService) ListDocuments(ctx context.Context, icao string) ([]dtos.DocumentInfo, error) {
	current, err := s.versions.GetCurrent(ctx)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrNoCurrentVersion
	}

	rows, err := s.documents.ListByVersionAndICAO(ctx, current.Version, icao)
	if err != nil {
		return nil, err
	}

	infos := make([]dtos.DocumentInfo, 0, len(rows))
	for _, d := range rows {
		parent := ""
		if d.ParentID != nil {
			parent = *d.ParentID
		}
		infos = append(infos, dtos.DocumentInfo{
			DocumentID: d.DocumentID,
			ParentID:   parent,
			NameEn:     d.NameEn,
			NameCn:     d.NameCn,
			Kind:       d.Kind,
			PdfPath:    d.PdfPath,
			HtmlPath:   d.HtmlPath,
			IsModified: d.IsModified,
		})
	}
	return infos, nil
}

// retrievalReference memoizes signed URLs until shortly before expiry so
// repeated misses on a device don't re-negotiate references.
func (s *DocumentService) retrievalReference(ctx context.Context, kind, documentID string) (*dtos.RetrievalReference, error) {
	key := string(constants.CachePrefixRetrievalRef) + kind + ":" + documentID

	if val, found := s.memo.Get(key); found {
		if ref, ok := val.(*dtos.RetrievalReference); ok && time.Now().Before(ref.ExpiresAt) {
			return ref, nil
		}
		s.memo.Delete(key)
	}

	ref, err := s.catalog.GetRetrievalReference(ctx, kind, documentID)
	if err != nil {
		return nil, err
	}

	ttl := time.Until(ref.ExpiresAt) - 30*time.Second
	if ttl > 0 {
		s.memo.Set(key, ref, ttl)
	}
	return ref, nil
}

// markOpened flips the reader flag; a failure here never blocks the read
func (s *DocumentService) markOpened(ctx context.Context, version, documentID string) {
	if err := s.documents.MarkOpened(ctx, version, documentID); err != nil {
		logging.Warn("Failed to mark document opened",
			"airac_version", version,
			"document_id", documentID,
			"error", err.Error(),
		)
	}
}

func (s *DocumentService) countCache(hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.CacheHitsTotal.WithLabelValues("blob").Inc()
	} else {
		s.metrics.CacheMissesTotal.WithLabelValues("blob").Inc()
	}
}

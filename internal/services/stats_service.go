package services

import (
	"context"

	"stratus-efb/chartvault/internal/cache"
	"stratus-efb/chartvault/internal/common"
	"stratus-efb/chartvault/internal/db/repositories"
	"stratus-efb/chartvault/internal/metrics"
	"stratus-efb/chartvault/internal/models/dtos"
)

// StatsService assembles the settings/diagnostics screen payload from the
// content cache and the metadata store. Read-only.
type StatsService struct {
	blobs       *cache.BlobCache
	diagnostics *repositories.DiagnosticsRepository
	metrics     *metrics.MetricsRegistry
}

// NewStatsService creates a new stats service
func NewStatsService(
	blobs *cache.BlobCache,
	diagnostics *repositories.DiagnosticsRepository,
	metricsReg *metrics.MetricsRegistry,
) *StatsService {
	return &StatsService{
		blobs:       blobs,
		diagnostics: diagnostics,
		metrics:     metricsReg,
	}
}

// CacheStats returns total cache usage plus the per-cycle breakdown
func (s *StatsService) CacheStats(ctx context.Context) (*dtos.CacheStatsResponse, error) {
	stats, err := s.blobs.Statistics()
	if err != nil {
		return nil, err
	}

	usage, err := s.diagnostics.VersionUsage(ctx)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.CacheSizeBytes.Set(float64(stats.TotalBytes))
	}

	return &dtos.CacheStatsResponse{
		TotalBytes:      stats.TotalBytes,
		HumanSize:       common.FormatByteSize(stats.TotalBytes),
		BlobEntries:     stats.BlobEntries,
		SnapshotEntries: stats.SnapshotEntries,
		Versions:        usage,
	}, nil
}

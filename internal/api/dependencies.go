package api

import (
	"stratus-efb/chartvault/internal/cache"
	"stratus-efb/chartvault/internal/common"
	"stratus-efb/chartvault/internal/db/repositories"
	"stratus-efb/chartvault/internal/metrics"
	"stratus-efb/chartvault/internal/providers"
	"stratus-efb/chartvault/internal/services"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/semaphore"
	"gorm.io/gorm"
)

// Dependencies wires the repositories and services behind the HTTP surface
type Dependencies struct {
	Metrics *metrics.MetricsRegistry

	Repos struct {
		Versions    *repositories.VersionRepository
		Airports    *repositories.AirportRepository
		Documents   *repositories.DocumentRepository
		Diagnostics *repositories.DiagnosticsRepository
	}

	Services struct {
		Sync      *services.SyncService
		Retention *services.RetentionService
		Documents *services.DocumentService
		Stats     *services.StatsService
	}
}

// InitDependencies builds the full service graph from the shared handles
func InitDependencies(
	orm *gorm.DB,
	sqlxDB *sqlx.DB,
	blobs *cache.BlobCache,
	catalog providers.CatalogAPI,
	metricsReg *metrics.MetricsRegistry,
) *Dependencies {
	deps := &Dependencies{Metrics: metricsReg}

	deps.Repos.Versions = repositories.NewVersionRepository(orm)
	deps.Repos.Airports = repositories.NewAirportRepository(orm)
	deps.Repos.Documents = repositories.NewDocumentRepository(orm)
	deps.Repos.Diagnostics = repositories.NewDiagnosticsRepository(sqlxDB)

	// One guard serializes sync passes and retention runs.
	flight := semaphore.NewWeighted(1)

	memo := common.NewCacheService(300, 600)
	progress := services.NewProgressReporter()

	deps.Services.Retention = services.NewRetentionService(
		deps.Repos.Versions,
		deps.Repos.Documents,
		blobs,
		metricsReg,
		flight,
	)
	deps.Services.Sync = services.NewSyncService(
		catalog,
		deps.Repos.Versions,
		deps.Repos.Airports,
		deps.Repos.Documents,
		blobs,
		deps.Services.Retention,
		progress,
		metricsReg,
		flight,
	)
	deps.Services.Documents = services.NewDocumentService(
		catalog,
		deps.Repos.Versions,
		deps.Repos.Airports,
		deps.Repos.Documents,
		blobs,
		memo,
		metricsReg,
	)
	deps.Services.Stats = services.NewStatsService(blobs, deps.Repos.Diagnostics, metricsReg)

	return deps
}

package services

import (
	"context"
	"fmt"

	"stratus-efb/chartvault/internal/db/repositories"
	"stratus-efb/chartvault/internal/models/dtos"
	gormModels "stratus-efb/chartvault/internal/models/gorm"
	"stratus-efb/chartvault/internal/providers"
)

// Resolution is the outcome of comparing the published cycle against the
// local store. UpToDate means a fully downloaded row for the remote
// cycle already exists, regardless of its is_current flag; the
// orchestrator repairs current-flag drift without re-downloading. A row
// whose download never completed (interrupted pass) is not up to date,
// so the next pass resumes it through insert-if-absent writes.
type Resolution struct {
	UpToDate bool
	Remote   *dtos.VersionInfo
	Local    *gormModels.AiracVersion
}

// VersionResolver decides whether a download pass is needed
type VersionResolver struct {
	catalog  providers.CatalogAPI
	versions *repositories.VersionRepository
}

// NewVersionResolver creates a new version resolver
func NewVersionResolver(catalog providers.CatalogAPI, versions *repositories.VersionRepository) *VersionResolver {
	return &VersionResolver{
		catalog:  catalog,
		versions: versions,
	}
}

// Resolve asks the catalog for the published cycle and looks it up
// locally. Network failures propagate so the pass aborts with prior
// state unchanged.
func (s *VersionResolver) Resolve(ctx context.Context) (*Resolution, error) {
	remote, err := s.catalog.GetCurrentVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch published cycle: %w", err)
	}

	local, err := s.versions.GetByVersion(ctx, remote.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to look up cycle %s: %w", remote.Version, err)
	}

	return &Resolution{
		UpToDate: local != nil && downloadComplete(local),
		Remote:   remote,
		Local:    local,
	}, nil
}

// downloadComplete reports whether a cycle row represents a finished
// pass. A promoted cycle is always complete; an unpromoted one counts as
// complete once every counted document row has been persisted. Freshly
// created rows (0 of 0) are incomplete so interrupted passes resume.
func downloadComplete(v *gormModels.AiracVersion) bool {
	if v.IsCurrent {
		return true
	}
	return v.TotalDocumentCount > 0 && v.DownloadedDocumentCount >= v.TotalDocumentCount
}

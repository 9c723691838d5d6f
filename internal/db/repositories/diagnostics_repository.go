package repositories

import (
	"context"
	"fmt"

	"stratus-efb/chartvault/internal/models/dtos"

	"github.com/jmoiron/sqlx"
)

// DiagnosticsRepository answers read-only statistics queries for the
// settings screen. It runs raw SQL over the same store the ORM writes to.
type DiagnosticsRepository struct {
	db *sqlx.DB
}

// NewDiagnosticsRepository creates a new diagnostics repository
func NewDiagnosticsRepository(db *sqlx.DB) *DiagnosticsRepository {
	return &DiagnosticsRepository{db: db}
}

const versionUsageQuery = `
SELECT v.version                              AS version,
       v.is_current                           AS is_current,
       v.total_document_count                 AS total_documents,
       v.downloaded_document_count            AS downloaded_documents,
       COALESCE(SUM(CASE WHEN d.is_opened THEN 1 ELSE 0 END), 0) AS opened_documents
FROM airac_versions v
LEFT JOIN documents d ON d.airac_version = v.version
GROUP BY v.version, v.is_current, v.total_document_count, v.downloaded_document_count, v.effective_date
ORDER BY v.effective_date DESC`

// VersionUsage returns the per-cycle document breakdown, newest first
func (r *DiagnosticsRepository) VersionUsage(ctx context.Context) ([]dtos.VersionUsage, error) {
	usage := []dtos.VersionUsage{}

	if err := r.db.SelectContext(ctx, &usage, versionUsageQuery); err != nil {
		return nil, fmt.Errorf("failed to query version usage: %w", err)
	}

	return usage, nil
}

package dtos

import "time"

// APIResponse is the standardized JSON envelope for the local HTTP surface.
type APIResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
	ResponseTime string `json:"response_time,omitempty"`
	Data         any    `json:"data,omitempty"`
}

// SyncStatus is the polled snapshot of the progress reporter.
type SyncStatus struct {
	State            string     `json:"state"`
	IsSyncing        bool       `json:"is_syncing"`
	ProgressFraction float64    `json:"progress_fraction"`
	StatusMessage    string     `json:"status_message"`
	LastError        string     `json:"last_error,omitempty"`
	LastSyncedAt     *time.Time `json:"last_synced_at,omitempty"`
}

// VersionUsage is one row of the per-version diagnostics breakdown.
type VersionUsage struct {
	Version             string `json:"version" db:"version"`
	IsCurrent           bool   `json:"is_current" db:"is_current"`
	TotalDocuments      int    `json:"total_documents" db:"total_documents"`
	DownloadedDocuments int    `json:"downloaded_documents" db:"downloaded_documents"`
	OpenedDocuments     int    `json:"opened_documents" db:"opened_documents"`
}

// CacheStatsResponse is the settings/diagnostics screen payload.
type CacheStatsResponse struct {
	TotalBytes      int64          `json:"total_bytes"`
	HumanSize       string         `json:"human_size"`
	BlobEntries     int            `json:"blob_entries"`
	SnapshotEntries int            `json:"snapshot_entries"`
	Versions        []VersionUsage `json:"versions"`
}

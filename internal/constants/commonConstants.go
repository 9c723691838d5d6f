package constants

import "time"

type (
	APIStatus   string
	CachePrefix string
)

const (
	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixRetrievalRef CachePrefix = "RETRIEVAL_REF_"
	CachePrefixAirportList  CachePrefix = "AIRPORT_LIST_"
)

// Document kinds known to the catalog.
const (
	DocumentKindChart    = "chart"
	DocumentKindAIP      = "aip"
	DocumentKindBulletin = "bulletin"
	DocumentKindNotice   = "notice"
)

// Structured snapshot data types stored in the cache's snapshot partition.
const (
	SnapshotAirports        = "airports"
	SnapshotDocumentsPrefix = "documents_"
)

// Sync engine defaults.
const (
	// DefaultRetainVersions is how many AIRAC cycles stay resident.
	DefaultRetainVersions = 3

	// CheckpointAirportInterval is how many airports are processed between
	// durable flushes of pending metadata rows.
	CheckpointAirportInterval = 10

	// OrphanSweepMaxAge is the age past which cache files are removed
	// regardless of which version directory they live under.
	OrphanSweepMaxAge = 30 * 24 * time.Hour
)

package dtos

import "time"

// VersionInfo is the catalog service's published cycle descriptor.
type VersionInfo struct {
	Version       string    `json:"version"`
	EffectiveDate time.Time `json:"effectiveDate"`
}

// AirportInfo is one airport entry from the catalog's airport list.
type AirportInfo struct {
	ICAO              string `json:"icao"`
	NameEn            string `json:"nameEn"`
	NameCn            string `json:"nameCn"`
	HasTerminalCharts bool   `json:"hasTerminalCharts"`
}

// DocumentInfo is one document entry from a per-airport document list.
type DocumentInfo struct {
	DocumentID string `json:"documentId"`
	ParentID   string `json:"parentId,omitempty"`
	NameEn     string `json:"nameEn"`
	NameCn     string `json:"nameCn"`
	Kind       string `json:"kind"`
	PdfPath    string `json:"pdfPath,omitempty"`
	HtmlPath   string `json:"htmlPath,omitempty"`
	IsModified bool   `json:"isModified"`
}

// RetrievalReference is a short-lived signed URL for fetching one
// document's payload.
type RetrievalReference struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Catalog response envelopes. The service wraps every payload in
// {errorCode, result}.

type CurrentVersionResponse struct {
	ErrorCode int         `json:"errorCode"`
	Result    VersionInfo `json:"result"`
}

type AirportListResponse struct {
	ErrorCode int           `json:"errorCode"`
	Result    []AirportInfo `json:"result"`
}

type DocumentListResponse struct {
	ErrorCode int            `json:"errorCode"`
	Result    []DocumentInfo `json:"result"`
}

type RetrievalReferenceResponse struct {
	ErrorCode int                `json:"errorCode"`
	Result    RetrievalReference `json:"result"`
}

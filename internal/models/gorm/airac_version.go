package gorm

import "time"

// AiracVersion is one published catalog cycle known to this device.
// At most one row has is_current=true at any time.
type AiracVersion struct {
	Version                 string    `gorm:"column:version;primaryKey;type:varchar(16)"`
	EffectiveDate           time.Time `gorm:"column:effective_date;not null;index"`
	IsCurrent               bool      `gorm:"column:is_current;not null;default:false"`
	TotalDocumentCount      int       `gorm:"column:total_document_count;not null;default:0"`
	DownloadedDocumentCount int       `gorm:"column:downloaded_document_count;not null;default:0"`
	CreatedAt               time.Time `gorm:"column:created_at"`
	UpdatedAt               time.Time `gorm:"column:updated_at"`
}

// TableName specifies the table name for GORM
func (AiracVersion) TableName() string {
	return "airac_versions"
}

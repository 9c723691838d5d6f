package gorm

import "time"

// Document is one downloadable catalog unit (chart, AIP section, notice)
// tied to exactly one AIRAC cycle. Rows are immutable after the sync pass
// that wrote them except for the is_opened flag flipped by readers.
type Document struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement"`
	LocalID      string    `gorm:"column:local_id;not null;index"`
	DocumentID   string    `gorm:"column:document_id;not null;uniqueIndex:idx_documents_doc_version"`
	AiracVersion string    `gorm:"column:airac_version;not null;uniqueIndex:idx_documents_doc_version;index"`
	ParentID     *string   `gorm:"column:parent_id"`
	ICAO         string    `gorm:"column:icao;type:varchar(4);index"`
	NameEn       string    `gorm:"column:name_en;type:text"`
	NameCn       string    `gorm:"column:name_cn;type:text"`
	Kind         string    `gorm:"column:kind;not null;index"`
	PdfPath      string    `gorm:"column:pdf_path;type:text"`
	HtmlPath     string    `gorm:"column:html_path;type:text"`
	IsModified   bool      `gorm:"column:is_modified;not null;default:false"`
	IsOpened     bool      `gorm:"column:is_opened;not null;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

// TableName specifies the table name for GORM
func (Document) TableName() string {
	return "documents"
}

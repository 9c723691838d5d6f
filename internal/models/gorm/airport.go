package gorm

import "time"

// Airport is a shared namespace across cycles: rows are created on first
// sight and never overwritten or deleted by the sync engine.
type Airport struct {
	ICAO              string    `gorm:"column:icao;primaryKey;type:varchar(4)"`
	NameEn            string    `gorm:"column:name_en;type:text;not null"`
	NameCn            string    `gorm:"column:name_cn;type:text"`
	HasTerminalCharts bool      `gorm:"column:has_terminal_charts;not null;default:false"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

// TableName specifies the table name for GORM
func (Airport) TableName() string {
	return "airports"
}

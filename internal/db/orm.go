package db

import (
	"fmt"

	gormModels "stratus-efb/chartvault/internal/models/gorm"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var OrmDB *gorm.DB

// InitSQLiteORM opens the on-device metadata store and migrates the
// sync engine's tables.
func InitSQLiteORM(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite metadata store: %w", err)
	}

	if err := db.AutoMigrate(
		&gormModels.AiracVersion{},
		&gormModels.Airport{},
		&gormModels.Document{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate metadata store: %w", err)
	}

	OrmDB = db
	return db, nil
}

package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

var DB *sqlx.DB

// InitSQLiteX opens a read-mostly sqlx handle over the same metadata
// store file, used by the diagnostics queries and the health check.
func InitSQLiteX(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite (sqlx): %w", err)
	}

	// Single writer lives on the GORM handle; keep this one small.
	db.SetMaxOpenConns(2)

	DB = db
	return db, nil
}

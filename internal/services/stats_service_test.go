package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"stratus-efb/chartvault/internal/cache"
	"stratus-efb/chartvault/internal/constants"
	"stratus-efb/chartvault/internal/db/repositories"
	gormModels "stratus-efb/chartvault/internal/models/gorm"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestStatsService_CacheStats(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "stats.db")

	orm, err := gorm.Open(gormsqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open ORM handle: %v", err)
	}
	if err := orm.AutoMigrate(&gormModels.AiracVersion{}, &gormModels.Airport{}, &gormModels.Document{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	versions := repositories.NewVersionRepository(orm)
	documents := repositories.NewDocumentRepository(orm)
	ctx := context.Background()

	if err := versions.CreateIfAbsent(ctx, &gormModels.AiracVersion{
		Version:                 "2506",
		EffectiveDate:           time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		TotalDocumentCount:      2,
		DownloadedDocumentCount: 2,
	}); err != nil {
		t.Fatalf("CreateIfAbsent failed: %v", err)
	}
	if err := versions.PromoteCurrent(ctx, "2506"); err != nil {
		t.Fatalf("PromoteCurrent failed: %v", err)
	}
	if err := documents.InsertIfAbsent(ctx, []gormModels.Document{
		{LocalID: "chart_A", DocumentID: "A", AiracVersion: "2506", ICAO: "ZBAA", Kind: constants.DocumentKindChart},
		{LocalID: "chart_B", DocumentID: "B", AiracVersion: "2506", ICAO: "ZBAA", Kind: constants.DocumentKindChart},
	}); err != nil {
		t.Fatalf("InsertIfAbsent failed: %v", err)
	}
	if err := documents.MarkOpened(ctx, "2506", "A"); err != nil {
		t.Fatalf("MarkOpened failed: %v", err)
	}

	blobs, err := cache.NewBlobCache(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create blob cache: %v", err)
	}
	if err := blobs.Put("2506", constants.DocumentKindChart, "A", make([]byte, 2048)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	sqlxDB, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("Failed to open sqlx handle: %v", err)
	}
	defer sqlxDB.Close()

	svc := NewStatsService(blobs, repositories.NewDiagnosticsRepository(sqlxDB), nil)

	resp, err := svc.CacheStats(ctx)
	if err != nil {
		t.Fatalf("CacheStats failed: %v", err)
	}

	if resp.BlobEntries != 1 {
		t.Errorf("Expected 1 blob entry, got %d", resp.BlobEntries)
	}
	if resp.TotalBytes < 2048 {
		t.Errorf("Expected at least 2048 bytes, got %d", resp.TotalBytes)
	}
	if resp.HumanSize == "" {
		t.Error("Expected a human readable size")
	}
	if len(resp.Versions) != 1 {
		t.Fatalf("Expected 1 usage row, got %d", len(resp.Versions))
	}
	if resp.Versions[0].OpenedDocuments != 1 {
		t.Errorf("Expected 1 opened document, got %d", resp.Versions[0].OpenedDocuments)
	}
}

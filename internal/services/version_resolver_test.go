package services

import (
	"context"
	"testing"
	"time"

	"stratus-efb/chartvault/internal/db/repositories"
	"stratus-efb/chartvault/internal/models/dtos"
	gormModels "stratus-efb/chartvault/internal/models/gorm"
)

func resolverFixture(t *testing.T, catalog *mockCatalog) (*VersionResolver, *repositories.VersionRepository) {
	t.Helper()
	versions := repositories.NewVersionRepository(setupTestDB(t))
	return NewVersionResolver(catalog, versions), versions
}

func publishedCycle(version string) *mockCatalog {
	return &mockCatalog{
		getCurrentVersionFunc: func(ctx context.Context) (*dtos.VersionInfo, error) {
			return &dtos.VersionInfo{Version: version, EffectiveDate: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)}, nil
		},
	}
}

func TestVersionResolver_UnknownCycleNeedsDownload(t *testing.T) {
	resolver, _ := resolverFixture(t, publishedCycle("2506"))

	res, err := resolver.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.UpToDate {
		t.Error("Expected unknown cycle to need a download")
	}
	if res.Remote.Version != "2506" {
		t.Errorf("Expected remote 2506, got %s", res.Remote.Version)
	}
	if res.Local != nil {
		t.Errorf("Expected no local row, got %+v", res.Local)
	}
}

func TestVersionResolver_CompletedCycleIsUpToDate(t *testing.T) {
	resolver, versions := resolverFixture(t, publishedCycle("2506"))
	ctx := context.Background()

	if err := versions.CreateIfAbsent(ctx, &gormModels.AiracVersion{
		Version:                 "2506",
		EffectiveDate:           time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		TotalDocumentCount:      8,
		DownloadedDocumentCount: 8,
	}); err != nil {
		t.Fatalf("CreateIfAbsent failed: %v", err)
	}

	res, err := resolver.Resolve(ctx)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !res.UpToDate {
		t.Error("Expected a fully downloaded cycle to be up to date")
	}
}

func TestVersionResolver_InterruptedCycleResumes(t *testing.T) {
	resolver, versions := resolverFixture(t, publishedCycle("2506"))
	ctx := context.Background()

	// A row created by an interrupted pass: counters incomplete, not current
	if err := versions.CreateIfAbsent(ctx, &gormModels.AiracVersion{
		Version:                 "2506",
		EffectiveDate:           time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		TotalDocumentCount:      8,
		DownloadedDocumentCount: 3,
	}); err != nil {
		t.Fatalf("CreateIfAbsent failed: %v", err)
	}

	res, err := resolver.Resolve(ctx)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.UpToDate {
		t.Error("Expected a partially downloaded cycle to need a resume")
	}
	if res.Local == nil {
		t.Fatal("Expected the partial local row to be surfaced")
	}
}

func TestVersionResolver_FreshRowIsIncomplete(t *testing.T) {
	resolver, versions := resolverFixture(t, publishedCycle("2506"))
	ctx := context.Background()

	// A pass that crashed before the count pass finished leaves 0/0
	if err := versions.CreateIfAbsent(ctx, &gormModels.AiracVersion{
		Version:       "2506",
		EffectiveDate: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("CreateIfAbsent failed: %v", err)
	}

	res, err := resolver.Resolve(ctx)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.UpToDate {
		t.Error("Expected a 0/0 row to need a resume")
	}
}

func TestVersionResolver_PromotedCycleIsUpToDate(t *testing.T) {
	resolver, versions := resolverFixture(t, publishedCycle("2506"))
	ctx := context.Background()

	if err := versions.CreateIfAbsent(ctx, &gormModels.AiracVersion{
		Version:       "2506",
		EffectiveDate: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("CreateIfAbsent failed: %v", err)
	}
	if err := versions.PromoteCurrent(ctx, "2506"); err != nil {
		t.Fatalf("PromoteCurrent failed: %v", err)
	}

	res, err := resolver.Resolve(ctx)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !res.UpToDate {
		t.Error("Expected a promoted cycle to be up to date")
	}
}

func TestVersionResolver_NetworkFailurePropagates(t *testing.T) {
	catalog := publishedCycle("2506")
	catalog.getCurrentVersionFunc = func(ctx context.Context) (*dtos.VersionInfo, error) {
		return nil, context.DeadlineExceeded
	}
	resolver, _ := resolverFixture(t, catalog)

	if _, err := resolver.Resolve(context.Background()); err == nil {
		t.Error("Expected the catalog failure to propagate")
	}
}

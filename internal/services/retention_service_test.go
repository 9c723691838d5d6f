package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"stratus-efb/chartvault/internal/constants"
	gormModels "stratus-efb/chartvault/internal/models/gorm"
)

// seedCycle writes one complete cycle: a version row, one document row,
// and a cached blob.
func seedCycle(t *testing.T, fx *syncFixture, version string, effective time.Time, current bool) {
	t.Helper()
	ctx := context.Background()

	if err := fx.versions.CreateIfAbsent(ctx, &gormModels.AiracVersion{
		Version:                 version,
		EffectiveDate:           effective,
		TotalDocumentCount:      1,
		DownloadedDocumentCount: 1,
	}); err != nil {
		t.Fatalf("CreateIfAbsent failed: %v", err)
	}

	docID := fmt.Sprintf("doc-%s", version)
	if err := fx.documents.InsertIfAbsent(ctx, []gormModels.Document{{
		LocalID:      constants.DocumentKindChart + "_" + docID,
		DocumentID:   docID,
		AiracVersion: version,
		ICAO:         "ZBAA",
		Kind:         constants.DocumentKindChart,
	}}); err != nil {
		t.Fatalf("InsertIfAbsent failed: %v", err)
	}

	if err := fx.blobs.Put(version, constants.DocumentKindChart, docID, []byte(version)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if current {
		if err := fx.versions.PromoteCurrent(ctx, version); err != nil {
			t.Fatalf("PromoteCurrent failed: %v", err)
		}
	}
}

func effectiveDateFor(i int) time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 28*i)
}

func TestRetentionService_KeepsLatestK(t *testing.T) {
	fx := newSyncFixture(t, twoAirportCatalog())
	ctx := context.Background()

	for i, v := range []string{"2501", "2502", "2503", "2504"} {
		seedCycle(t, fx, v, effectiveDateFor(i), v == "2504")
	}

	if err := fx.retention.Retain(ctx, constants.DefaultRetainVersions); err != nil {
		t.Fatalf("Retain failed: %v", err)
	}

	all, err := fx.versions.ListByEffectiveDateDesc(ctx)
	if err != nil {
		t.Fatalf("ListByEffectiveDateDesc failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 cycles retained, got %d", len(all))
	}
	for _, v := range all {
		if v.Version == "2501" {
			t.Error("Expected the oldest cycle to be evicted")
		}
	}

	// Evicted cycle is gone from every store
	if n, _ := fx.documents.CountByVersion(ctx, "2501"); n != 0 {
		t.Errorf("Expected 0 document rows for evicted cycle, got %d", n)
	}
	if fx.blobs.Has("2501", constants.DocumentKindChart, "doc-2501") {
		t.Error("Expected evicted cycle's blobs to be removed")
	}

	// Retained cycles are untouched
	for _, v := range []string{"2502", "2503", "2504"} {
		if n, _ := fx.documents.CountByVersion(ctx, v); n != 1 {
			t.Errorf("Expected retained cycle %s to keep its rows, got %d", v, n)
		}
		if !fx.blobs.Has(v, constants.DocumentKindChart, "doc-"+v) {
			t.Errorf("Expected retained cycle %s to keep its blobs", v)
		}
	}
}

func TestRetentionService_NeverEvictsCurrent(t *testing.T) {
	fx := newSyncFixture(t, twoAirportCatalog())
	ctx := context.Background()

	// Current cycle is the OLDEST, so a naive latest-K cut would drop it
	seedCycle(t, fx, "2501", effectiveDateFor(0), true)
	seedCycle(t, fx, "2502", effectiveDateFor(1), false)
	seedCycle(t, fx, "2503", effectiveDateFor(2), false)

	if err := fx.retention.Retain(ctx, 1); err != nil {
		t.Fatalf("Retain failed: %v", err)
	}

	current, err := fx.versions.GetCurrent(ctx)
	if err != nil {
		t.Fatalf("GetCurrent failed: %v", err)
	}
	if current == nil || current.Version != "2501" {
		t.Fatal("Expected the current cycle to survive retention")
	}
	if !fx.blobs.Has("2501", constants.DocumentKindChart, "doc-2501") {
		t.Error("Expected the current cycle's blobs to survive")
	}
}

func TestRetentionService_ClearCacheKeepsOnlyCurrent(t *testing.T) {
	fx := newSyncFixture(t, twoAirportCatalog())
	ctx := context.Background()

	seedCycle(t, fx, "2504", effectiveDateFor(3), false)
	seedCycle(t, fx, "2505", effectiveDateFor(4), false)
	seedCycle(t, fx, "2506", effectiveDateFor(5), true)

	if err := fx.retention.ClearCache(ctx); err != nil {
		t.Fatalf("ClearCache failed: %v", err)
	}

	all, _ := fx.versions.ListByEffectiveDateDesc(ctx)
	if len(all) != 1 || all[0].Version != "2506" {
		t.Fatalf("Expected only the current cycle to remain, got %+v", all)
	}
	if !fx.blobs.Has("2506", constants.DocumentKindChart, "doc-2506") {
		t.Error("Expected the current cycle's blobs to remain")
	}
}

func TestRetentionService_RejectedWhileSyncing(t *testing.T) {
	fx := newSyncFixture(t, twoAirportCatalog())

	if !fx.flight.TryAcquire(1) {
		t.Fatal("Failed to acquire guard for test")
	}
	defer fx.flight.Release(1)

	if err := fx.retention.Retain(context.Background(), 3); !errors.Is(err, ErrSyncInProgress) {
		t.Errorf("Expected ErrSyncInProgress from Retain, got %v", err)
	}
	if err := fx.retention.ClearCache(context.Background()); !errors.Is(err, ErrSyncInProgress) {
		t.Errorf("Expected ErrSyncInProgress from ClearCache, got %v", err)
	}
	if err := fx.retention.SweepOrphans(time.Hour); !errors.Is(err, ErrSyncInProgress) {
		t.Errorf("Expected ErrSyncInProgress from SweepOrphans, got %v", err)
	}
}

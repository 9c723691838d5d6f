package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestCache(t *testing.T) *BlobCache {
	t.Helper()

	c, err := NewBlobCache(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	return c
}

func TestBlobCache_PutGetHas(t *testing.T) {
	c := newTestCache(t)

	if c.Has("2506", "chart", "ZBAA-10-1") {
		t.Error("Expected Has to be false before put")
	}

	data, err := c.Get("2506", "chart", "ZBAA-10-1")
	if err != nil {
		t.Fatalf("Expected no error on miss, got %v", err)
	}
	if data != nil {
		t.Errorf("Expected nil on miss, got %d bytes", len(data))
	}

	payload := []byte("%PDF-1.4 fake chart payload")
	if err := c.Put("2506", "chart", "ZBAA-10-1", payload); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if !c.Has("2506", "chart", "ZBAA-10-1") {
		t.Error("Expected Has to be true after put")
	}

	got, err := c.Get("2506", "chart", "ZBAA-10-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Cached bytes differ: got %q, want %q", got, payload)
	}
}

func TestBlobCache_PutOverwriteLastWriterWins(t *testing.T) {
	c := newTestCache(t)

	if err := c.Put("2506", "chart", "doc", []byte("first")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := c.Put("2506", "chart", "doc", []byte("second")); err != nil {
		t.Fatalf("Second put failed: %v", err)
	}

	got, _ := c.Get("2506", "chart", "doc")
	if string(got) != "second" {
		t.Errorf("Expected last write to win, got %q", got)
	}
}

func TestBlobCache_StructuredRoundTrip(t *testing.T) {
	c := newTestCache(t)

	type entry struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	in := []entry{{ID: "a", Name: "Alpha"}, {ID: "b", Name: "Bravo"}}

	var out []entry
	found, err := c.GetStructured("2506", "airports", &out)
	if err != nil {
		t.Fatalf("GetStructured failed: %v", err)
	}
	if found {
		t.Error("Expected miss before put")
	}

	if err := c.PutStructured("2506", "airports", in); err != nil {
		t.Fatalf("PutStructured failed: %v", err)
	}

	found, err = c.GetStructured("2506", "airports", &out)
	if err != nil {
		t.Fatalf("GetStructured failed: %v", err)
	}
	if !found {
		t.Fatal("Expected hit after put")
	}
	if len(out) != 2 || out[0].ID != "a" || out[1].Name != "Bravo" {
		t.Errorf("Round trip mismatch: %+v", out)
	}
}

func TestBlobCache_CorruptStructuredIsAMiss(t *testing.T) {
	c := newTestCache(t)

	path := c.snapshotPath("2506", "airports")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	var out []string
	found, err := c.GetStructured("2506", "airports", &out)
	if err != nil {
		t.Fatalf("Expected corrupt snapshot to be a miss, got error %v", err)
	}
	if found {
		t.Error("Expected corrupt snapshot to be a miss")
	}

	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("Expected corrupt snapshot file to be removed")
	}
}

func TestBlobCache_RemoveVersion(t *testing.T) {
	c := newTestCache(t)

	if err := c.Put("2505", "chart", "old", []byte("old")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := c.Put("2506", "chart", "new", []byte("new")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := c.PutStructured("2505", "airports", []string{"ZBAA"}); err != nil {
		t.Fatalf("PutStructured failed: %v", err)
	}

	if err := c.RemoveVersion("2505"); err != nil {
		t.Fatalf("RemoveVersion failed: %v", err)
	}

	if c.Has("2505", "chart", "old") {
		t.Error("Expected 2505 blob to be gone")
	}
	var out []string
	if found, _ := c.GetStructured("2505", "airports", &out); found {
		t.Error("Expected 2505 snapshot to be gone")
	}
	if !c.Has("2506", "chart", "new") {
		t.Error("Expected 2506 blob to survive")
	}
}

func TestBlobCache_SweepOlderThan(t *testing.T) {
	c := newTestCache(t)

	if err := c.Put("2501", "chart", "stale", []byte("stale")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := c.Put("2506", "chart", "fresh", []byte("fresh")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Age the stale file past the sweep threshold
	stalePath := c.blobPath("2501", "chart", "stale")
	old := time.Now().Add(-31 * 24 * time.Hour)
	if err := os.Chtimes(stalePath, old, old); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	removed, err := c.SweepOlderThan(30 * 24 * time.Hour)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 file swept, got %d", removed)
	}
	if c.Has("2501", "chart", "stale") {
		t.Error("Expected stale file to be swept")
	}
	if !c.Has("2506", "chart", "fresh") {
		t.Error("Expected fresh file to survive the sweep")
	}
}

func TestBlobCache_Statistics(t *testing.T) {
	c := newTestCache(t)

	if err := c.Put("2506", "chart", "a", make([]byte, 100)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := c.Put("2506", "aip", "b", make([]byte, 50)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := c.PutStructured("2506", "airports", []string{"ZBAA", "ZSPD"}); err != nil {
		t.Fatalf("PutStructured failed: %v", err)
	}

	stats, err := c.Statistics()
	if err != nil {
		t.Fatalf("Statistics failed: %v", err)
	}
	if stats.BlobEntries != 2 {
		t.Errorf("Expected 2 blob entries, got %d", stats.BlobEntries)
	}
	if stats.SnapshotEntries != 1 {
		t.Errorf("Expected 1 snapshot entry, got %d", stats.SnapshotEntries)
	}
	if stats.TotalBytes < 150 {
		t.Errorf("Expected at least 150 bytes, got %d", stats.TotalBytes)
	}

	size, err := c.SizeOf("2506")
	if err != nil {
		t.Fatalf("SizeOf failed: %v", err)
	}
	if size != stats.TotalBytes {
		t.Errorf("SizeOf(2506) = %d, want %d (only version present)", size, stats.TotalBytes)
	}
}

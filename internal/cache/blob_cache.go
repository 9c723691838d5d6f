package cache

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"stratus-efb/chartvault/internal/logging"

	"github.com/google/uuid"
)

// BlobCache is the filesystem-backed content store. Binary payloads live
// under <root>/blobs/<version>/<kind>/<id>, structured list snapshots
// under <root>/snapshots/<version>/<dataType>.json. Existence of a key is
// a pure path-existence predicate; there is no separate index.
type BlobCache struct {
	blobRoot string
	snapRoot string
}

// NewBlobCache creates both cache partitions under root
func NewBlobCache(root string) (*BlobCache, error) {
	c := &BlobCache{
		blobRoot: filepath.Join(root, "blobs"),
		snapRoot: filepath.Join(root, "snapshots"),
	}

	for _, dir := range []string{c.blobRoot, c.snapRoot} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
		}
	}

	return c, nil
}

func (c *BlobCache) blobPath(version, kind, id string) string {
	return filepath.Join(c.blobRoot, version, kind, id)
}

func (c *BlobCache) snapshotPath(version, dataType string) string {
	return filepath.Join(c.snapRoot, version, dataType+".json")
}

// Has reports whether a payload is cached. Never touches the network or
// mutates anything.
func (c *BlobCache) Has(version, kind, id string) bool {
	info, err := os.Stat(c.blobPath(version, kind, id))
	return err == nil && !info.IsDir()
}

// Get returns the cached bytes, or nil on a miss
func (c *BlobCache) Get(version, kind, id string) ([]byte, error) {
	data, err := os.ReadFile(c.blobPath(version, kind, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cached blob: %w", err)
	}
	return data, nil
}

// Put writes a payload under its key. The write goes to a temp file first
// and is renamed into place, so a concurrent reader never observes a
// partially written blob. Concurrent puts of the same key are a benign
// last-writer-wins race.
func (c *BlobCache) Put(version, kind, id string, data []byte) error {
	path := c.blobPath(version, kind, id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create blob directory: %w", err)
	}
	return atomicWrite(path, data)
}

// GetStructured decodes a list snapshot into out. A corrupt snapshot is
// removed and reported as a plain miss, which forces a refetch.
func (c *BlobCache) GetStructured(version, dataType string, out any) (bool, error) {
	path := c.snapshotPath(version, dataType)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read snapshot: %w", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		logging.Warn("Discarding corrupt cache snapshot",
			"version", version,
			"data_type", dataType,
			"error", err.Error(),
		)
		_ = os.Remove(path)
		return false, nil
	}

	return true, nil
}

// PutStructured serializes value as a list snapshot
func (c *BlobCache) PutStructured(version, dataType string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	path := c.snapshotPath(version, dataType)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return atomicWrite(path, data)
}

// RemoveVersion drops one cycle's directories from both partitions
func (c *BlobCache) RemoveVersion(version string) error {
	for _, dir := range []string{
		filepath.Join(c.blobRoot, version),
		filepath.Join(c.snapRoot, version),
	} {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to remove cache partition %s: %w", dir, err)
		}
	}
	return nil
}

// SweepOlderThan removes cache files whose last write is older than
// maxAge, regardless of version. A safety net against directories
// orphaned by earlier crashes; best-effort, per-file errors are logged.
func (c *BlobCache) SweepOlderThan(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for _, root := range []string{c.blobRoot, c.snapRoot} {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				return nil
			}

			if info.ModTime().Before(cutoff) {
				if err := os.Remove(path); err != nil {
					logging.Warn("Failed to sweep stale cache file", "path", path, "error", err.Error())
					return nil
				}
				removed++
			}
			return nil
		})
		if err != nil {
			return removed, fmt.Errorf("failed to sweep cache root %s: %w", root, err)
		}
	}

	return removed, nil
}

// SizeOf returns the bytes one cycle occupies across both partitions
func (c *BlobCache) SizeOf(version string) (int64, error) {
	var total int64

	for _, dir := range []string{
		filepath.Join(c.blobRoot, version),
		filepath.Join(c.snapRoot, version),
	} {
		size, _, err := dirUsage(dir)
		if err != nil {
			return 0, err
		}
		total += size
	}

	return total, nil
}

// atomicWrite writes data next to path and renames it into place
func atomicWrite(path string, data []byte) error {
	tmp := path + "." + uuid.NewString() + ".tmp"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to finalize cache file: %w", err)
	}

	return nil
}

func dirUsage(dir string) (int64, int, error) {
	var bytes int64
	var entries int

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		bytes += info.Size()
		entries++
		return nil
	})

	if err != nil && !os.IsNotExist(err) {
		return 0, 0, fmt.Errorf("failed to walk cache directory %s: %w", dir, err)
	}

	return bytes, entries, nil
}

package cache

// Statistics is the read-only introspection surface for the settings
// screen. Computing it never mutates the cache.
type Statistics struct {
	TotalBytes      int64
	BlobEntries     int
	SnapshotEntries int
}

// Statistics walks both partitions and totals their usage
func (c *BlobCache) Statistics() (*Statistics, error) {
	blobBytes, blobEntries, err := dirUsage(c.blobRoot)
	if err != nil {
		return nil, err
	}

	snapBytes, snapEntries, err := dirUsage(c.snapRoot)
	if err != nil {
		return nil, err
	}

	return &Statistics{
		TotalBytes:      blobBytes + snapBytes,
		BlobEntries:     blobEntries,
		SnapshotEntries: snapEntries,
	}, nil
}

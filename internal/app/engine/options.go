package engine

import "time"

// Options represents configuration options for the Engine.
type Options struct {
	// SyncPersist keeps the snapshot write inside the book's exclusive scope,
	// bounding throughput to storage latency but guaranteeing the caller is
	// only acknowledged after a durable write. When false the snapshot is
	// serialized under the scope and written after it is released.
	SyncPersist bool

	// SnapshotInterval is the period of the serve-mode resync ticker.
	SnapshotInterval time.Duration
}

// DefaultEngineOptions returns the default engine options.
func DefaultEngineOptions() *Options {
	return &Options{
		SyncPersist:      true,
		SnapshotInterval: 30 * time.Second,
	}
}

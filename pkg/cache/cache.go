// Package cache stores fetched datasets, rendered artifacts and uploaded
// charts.
//
// Backends implement [Cache]: [FileCache] for the CLI, [RedisCache] for a
// shared server deployment and [NullCache] when caching is off. Keys come
// from a [Keyer] so that every backend sees the same key space.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by backends that can drop every entry at once.
type Clearer interface {
	// Clear removes all entries and reports how many there were.
	Clear(ctx context.Context) (int, error)
}

// Default lifetimes per entry kind.
const (
	TTLDataset  = time.Hour
	TTLArtifact = 24 * time.Hour
	TTLChart    = 7 * 24 * time.Hour
)

// Package cache stores computed layouts between runs.
//
// A [Cache] is a byte-oriented key/value store with per-entry expiry. Three
// backends are provided:
//
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// Keys are produced by a [Keyer] so that every input that affects a layout
// (graph content and layout options) is part of the key.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored value and whether it was found. A miss is not
	// an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Entry lifetimes.
const (
	// TTLLayout is how long a computed layout is kept. Layouts are pure
	// functions of their key, so this only bounds disk and memory use.
	TTLLayout = 7 * 24 * time.Hour

	// TTLCheck is how long an invariant-check report is kept.
	TTLCheck = 24 * time.Hour
)

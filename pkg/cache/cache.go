// Package cache stores rendered artifacts keyed by content.
//
// A frame is fully determined by the tree document, the displayed root, the
// canvas and the render options, so [Keyer] hashes those into a key and any
// [Cache] backend can hold the bytes:
//
//   - [NullCache]: never stores anything (--no-cache)
//   - [FileCache]: one JSON file per entry under the user cache directory
//   - [RedisCache]: a shared Redis instance, for several viewer processes
//
// Backends treat a miss as (nil, false, nil); errors are reserved for
// backend failures.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by backends that can drop every entry.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

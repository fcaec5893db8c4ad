// Package cache stores computed results as opaque bytes keyed by a hash of
// the request that produced them.
//
// Three backends are provided: [FileCache] for the CLI (entries survive
// between runs), [MemoryCache] for long-lived processes such as the
// interactive explorer, and [NullCache] when caching is disabled. Keys come
// from a [Keyer] so that every caller derives identical keys for identical
// requests.
package cache

import (
	"context"
	"errors"
	"time"
)

// Default time-to-live per result kind. Results are pure functions of their
// keys, so TTLs only bound disk usage.
const (
	TTLFretboard = 7 * 24 * time.Hour
	TTLChord     = 30 * 24 * time.Hour
	TTLScale     = 30 * 24 * time.Hour
)

// Sentinel errors for caching operations.
var (
	// ErrCacheMiss is returned by helpers that require an entry to exist.
	ErrCacheMiss = errors.New("cache miss")

	// ErrClosed is returned when a closed cache is used.
	ErrClosed = errors.New("cache closed")
)

// Cache is a byte store with optional expiration. Implementations must be
// safe for concurrent use.
type Cache interface {
	// Get returns the entry for key. A miss is reported as ok=false with a
	// nil error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// MustGet returns the entry for key or ErrCacheMiss.
func MustGet(ctx context.Context, c Cache, key string) ([]byte, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCacheMiss
	}
	return data, nil
}

// WithMaxTTL caps the ttl of every Set on c. A non-positive max returns c
// unchanged.
func WithMaxTTL(c Cache, max time.Duration) Cache {
	if max <= 0 {
		return c
	}
	return &cappedCache{Cache: c, max: max}
}

type cappedCache struct {
	Cache
	max time.Duration
}

func (c *cappedCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl <= 0 || ttl > c.max {
		ttl = c.max
	}
	return c.Cache.Set(ctx, key, data, ttl)
}

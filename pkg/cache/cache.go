// Package cache provides the solve-result cache: a byte-level Cache
// interface with in-memory and Redis backends, canonical request hashing,
// and a typed wrapper for flow solutions.
package cache

import (
	"context"
	"errors"
	"time"

	"flowkit/pkg/config"
)

// Backend types for cache implementations.
const (
	// BackendMemory selects the in-process cache backend.
	BackendMemory = "memory"
	// BackendRedis selects the Redis cache backend.
	BackendRedis = "redis"
)

// Standard errors returned by cache operations.
var (
	// ErrKeyNotFound is returned when a requested key does not exist.
	ErrKeyNotFound = errors.New("key not found")
	// ErrCacheClosed is returned for operations on a closed cache.
	ErrCacheClosed = errors.New("cache is closed")
)

// Cache is the byte-level cache contract shared by the backends.
type Cache interface {
	// Get retrieves the value stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key with the given TTL, overwriting any
	// previous entry. A non-positive TTL falls back to the backend's
	// default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the entry; deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Exists reports whether key holds a live entry.
	Exists(ctx context.Context, key string) (bool, error)
	// GetWithTTL retrieves the value together with its remaining TTL.
	GetWithTTL(ctx context.Context, key string) (value []byte, ttl time.Duration, err error)

	// Keys returns the keys matching a glob-style pattern. Expensive on
	// large caches.
	Keys(ctx context.Context, pattern string) ([]string, error)
	// DeleteByPattern removes all keys matching the pattern and returns
	// how many were removed.
	DeleteByPattern(ctx context.Context, pattern string) (int64, error)

	// Stats reports cache effectiveness and size.
	Stats(ctx context.Context) (*Stats, error)
	// Clear removes every entry.
	Clear(ctx context.Context) error
	// Close releases backend resources.
	Close() error
}

// Stats holds cache performance and state counters.
type Stats struct {
	TotalKeys    int64
	Hits         int64
	Misses       int64
	HitRate      float64
	MemoryBytes  int64
	KeysByPrefix map[string]int64
	Backend      string
}

// Options configures cache construction.
type Options struct {
	Backend    string
	DefaultTTL time.Duration

	// Memory backend.
	MaxEntries      int
	CleanupInterval time.Duration

	// Redis backend.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPoolSize int
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() *Options {
	return &Options{
		Backend:         BackendMemory,
		DefaultTTL:      5 * time.Minute,
		MaxEntries:      100000,
		CleanupInterval: 1 * time.Minute,
		RedisAddr:       "localhost:6379",
		RedisDB:         0,
		RedisPoolSize:   10,
	}
}

// FromConfig builds cache options from the loaded configuration.
func FromConfig(cfg *config.CacheConfig) *Options {
	return &Options{
		Backend:         cfg.Driver,
		DefaultTTL:      cfg.DefaultTTL,
		MaxEntries:      cfg.MaxEntries,
		CleanupInterval: 1 * time.Minute,
		RedisAddr:       cfg.CacheAddr(),
		RedisPassword:   cfg.Password,
		RedisDB:         cfg.DB,
		RedisPoolSize:   10,
	}
}

// New creates a cache for the configured backend. Unknown backends fall
// back to memory.
func New(opts *Options) (Cache, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	switch opts.Backend {
	case BackendRedis:
		return NewRedisCache(opts)
	case BackendMemory, "":
		return NewMemoryCache(opts), nil
	default:
		return NewMemoryCache(opts), nil
	}
}

// MustNew creates a cache or panics.
func MustNew(opts *Options) Cache {
	c, err := New(opts)
	if err != nil {
		panic(err)
	}
	return c
}

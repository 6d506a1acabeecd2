package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheUnavailable is returned when the backing store cannot be reached.
// Callers treat the cache as best-effort and fall back to the database.
var ErrCacheUnavailable = errors.New("cache unavailable")

// Cache is the contract for the cache layer.
// It lets the Redis implementation be swapped for another store in tests.
type Cache interface {
	// Get loads the value at key into dest.
	// found = false on a cache miss, dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value as JSON under key with the given TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes the given keys.
	Delete(ctx context.Context, keys ...string) error

	// DeletePattern removes every key matching a glob pattern (e.g. "books:*").
	DeletePattern(ctx context.Context, pattern string) error

	Ping(ctx context.Context) error

	// Counter primitives used by the rate limiter.
	Increment(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
}

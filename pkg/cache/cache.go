// Package cache is the key/value layer behind web sessions and the query
// cache. Two drivers exist: "redis" for shared deployments and "memory" for
// a single BFF process (and tests).
//
//	store, err := cache.Connect()
//	_ = store.Set(ctx, "k", v, time.Minute)
//	hit, err := store.Get(ctx, "k", &v)
package cache

import (
	"context"
	"time"

	"github.com/smartshelf/shelfweb/config"
	"github.com/smartshelf/shelfweb/pkg/logger"
)

// Store is implemented by every cache driver. Values are JSON-encoded.
type Store interface {
	// Get decodes the value at key into dest and reports whether it existed.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value under key. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Del removes keys. Missing keys are not an error.
	Del(ctx context.Context, keys ...string) error

	// Incr atomically increments the integer at key and returns the new value.
	Incr(ctx context.Context, key string) (int64, error)

	// Driver names the backing implementation for metrics.
	Driver() string
}

// Connect builds the store named by CACHE_DRIVER. When Redis is selected
// but unreachable it logs a warning and falls back to memory.
func Connect() (Store, error) {
	if config.CacheDriver() != "redis" {
		return NewMemory(), nil
	}

	store, err := NewRedis(config.RedisAddr(), config.RedisPassword())
	if err != nil {
		logger.Warn("cache: redis unavailable, using memory store", "error", err)
		return NewMemory(), nil
	}
	return store, nil
}

// Package query is the declarative read cache in front of the backend.
//
// A read is identified by its endpoint and parameters; the result is kept
// per session scope until its TTL runs out or a mutation invalidates the
// endpoint:
//
//	products, err := query.Fetch(ctx, qc, sess.ID(), query.Key{Endpoint: "/products", Params: p},
//	    func(ctx context.Context) ([]models.Product, error) { return repo.List(ctx, p) })
//
//	_ = qc.Invalidate(ctx, "/pos", "/products")
//
// Invalidation is global: bumping an endpoint's generation makes every
// scope's entry for it unreachable. Ending a session drops its whole scope.
package query

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/smartshelf/shelfweb/pkg/cache"
	"github.com/smartshelf/shelfweb/pkg/event"
	"github.com/smartshelf/shelfweb/pkg/logger"
	"github.com/smartshelf/shelfweb/pkg/metrics"
	"github.com/smartshelf/shelfweb/pkg/session"
)

const prefix = "smartshelf:query:"

// Key names one backend read.
type Key struct {
	Endpoint string
	Params   url.Values
}

func (k Key) String() string {
	if len(k.Params) == 0 {
		return k.Endpoint
	}
	return k.Endpoint + "?" + k.Params.Encode()
}

// Cache stores query results in a cache.Store. A nil *Cache disables
// caching: every Fetch calls its loader.
type Cache struct {
	store cache.Store
	ttl   time.Duration
}

// New returns a Cache. When bus is non-nil the cache drops a session's
// scope as soon as the session ends.
func New(store cache.Store, ttl time.Duration, bus *event.Bus) *Cache {
	c := &Cache{store: store, ttl: ttl}
	if bus != nil {
		bus.Listen(session.EventLogout, func(p interface{}) {
			if ended, ok := p.(session.Ended); ok {
				_ = c.DropScope(context.Background(), ended.ID)
			}
		})
	}
	return c
}

// Fetch returns the cached result for key in scope, or runs load and
// caches what it returns. Errors are never cached.
func Fetch[T any](ctx context.Context, c *Cache, scope string, key Key, load func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return load(ctx)
	}
	log := logger.WithCtx(ctx)

	k, err := c.entryKey(ctx, scope, key)
	if err != nil {
		log.Warn("query: cache unavailable, loading directly", "key", key.String(), "error", err)
		return load(ctx)
	}

	var cached T
	if hit, err := c.store.Get(ctx, k, &cached); err == nil && hit {
		return cached, nil
	} else if err != nil {
		log.Warn("query: cache read failed", "key", key.String(), "error", err)
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if err := c.store.Set(ctx, k, v, c.ttl); err != nil {
		log.Warn("query: cache write failed", "key", key.String(), "error", err)
	}
	return v, nil
}

// Invalidate makes every cached result for the given endpoints stale.
func (c *Cache) Invalidate(ctx context.Context, endpoints ...string) error {
	if c == nil {
		return nil
	}
	for _, e := range endpoints {
		if _, err := c.store.Incr(ctx, prefix+"gen:"+e); err != nil {
			return fmt.Errorf("query: invalidate %s: %w", e, err)
		}
		metrics.QueryInvalidations.WithLabelValues(e).Inc()
	}
	return nil
}

// DropScope forgets everything cached for scope. The scope's epoch becomes
// a fresh value that lives as long as an entry does; once it expires, every
// entry written under an older epoch has expired too.
func (c *Cache) DropScope(ctx context.Context, scope string) error {
	if c == nil || scope == "" {
		return nil
	}
	k := prefix + "epoch:" + scope
	cur, err := c.counter(ctx, k)
	if err != nil {
		return fmt.Errorf("query: drop scope: %w", err)
	}
	if err := c.store.Set(ctx, k, max(time.Now().UnixNano(), cur+1), c.ttl); err != nil {
		return fmt.Errorf("query: drop scope: %w", err)
	}
	return nil
}

func (c *Cache) entryKey(ctx context.Context, scope string, key Key) (string, error) {
	epoch, err := c.counter(ctx, prefix+"epoch:"+scope)
	if err != nil {
		return "", err
	}
	gen, err := c.counter(ctx, prefix+"gen:"+key.Endpoint)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s:%d:%s:%d:%s", prefix, scope, epoch, key.Endpoint, gen, key.Params.Encode()), nil
}

func (c *Cache) counter(ctx context.Context, k string) (int64, error) {
	var n int64
	if _, err := c.store.Get(ctx, k, &n); err != nil {
		return 0, err
	}
	return n, nil
}

package session

import (
	"context"
	"fmt"
	"time"

	"github.com/smartshelf/shelfweb/pkg/cache"
	"github.com/smartshelf/shelfweb/pkg/crypt"
)

// CacheStore keeps encrypted session records in a cache.Store, keyed by
// session id. Entries expire together with the token they hold.
type CacheStore struct {
	cache  cache.Store
	cipher *crypt.Cipher
	now    func() time.Time
}

// NewCacheStore wraps store; records are sealed with cipher.
func NewCacheStore(store cache.Store, cipher *crypt.Cipher) *CacheStore {
	return &CacheStore{cache: store, cipher: cipher, now: time.Now}
}

func cacheKey(id string) string { return "smartshelf:session:" + id }

func (c *CacheStore) Read(ctx context.Context, id string) (Record, bool, error) {
	var sealed string
	hit, err := c.cache.Get(ctx, cacheKey(id), &sealed)
	if err != nil || !hit {
		return Record{}, false, err
	}

	var rec Record
	if err := c.cipher.DecryptJSON(sealed, &rec); err != nil {
		// A record sealed under a rotated APP_KEY is as good as absent.
		_ = c.cache.Del(ctx, cacheKey(id))
		return Record{}, false, nil
	}
	return rec, true, nil
}

func (c *CacheStore) Write(ctx context.Context, id string, rec Record) error {
	sealed, err := c.cipher.EncryptJSON(rec)
	if err != nil {
		return fmt.Errorf("session: seal: %w", err)
	}

	var ttl time.Duration
	if !rec.ExpiresAt.IsZero() {
		ttl = rec.ExpiresAt.Sub(c.now())
		if ttl <= 0 {
			return c.Remove(ctx, id)
		}
	}
	return c.cache.Set(ctx, cacheKey(id), sealed, ttl)
}

func (c *CacheStore) Remove(ctx context.Context, id string) error {
	return c.cache.Del(ctx, cacheKey(id))
}

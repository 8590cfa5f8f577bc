package search

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/goliatone/go-lore/pkg/interfaces"
)

// MemoryCache is an in-process CacheProvider backed by go-cache.
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a cache whose entries expire after defaultTTL and
// are purged every cleanup interval.
func NewMemoryCache(defaultTTL, cleanup time.Duration) *MemoryCache {
	return &MemoryCache{cache: gocache.New(defaultTTL, cleanup)}
}

var _ interfaces.CacheProvider = (*MemoryCache)(nil)

func (c *MemoryCache) Get(_ context.Context, key string) (any, error) {
	if value, found := c.cache.Get(key); found {
		return value, nil
	}
	return nil, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.cache.Set(key, value, ttl)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.cache.Delete(key)
	return nil
}

func (c *MemoryCache) Clear(context.Context) error {
	c.cache.Flush()
	return nil
}

// Len reports the number of cached entries, expired ones included until the
// next cleanup.
func (c *MemoryCache) Len() int {
	return c.cache.ItemCount()
}

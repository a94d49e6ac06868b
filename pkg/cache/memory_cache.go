package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is the in-process fallback used when Redis is not reachable.
type MemoryCache struct {
	cache *gocache.Cache
}

func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	// Purge expired items every 10 minutes
	return &MemoryCache{
		cache: gocache.New(defaultTTL, 10*time.Minute),
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string) (string, bool) {
	if x, found := c.cache.Get(key); found {
		if value, ok := x.(string); ok {
			return value, true
		}
	}
	return "", false
}

func (c *MemoryCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	c.cache.Set(key, value, ttl)
	return nil
}

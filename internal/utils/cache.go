package utils

import (
	"log"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheItem wraps cached data with its expiry.
type cacheItem struct {
	Data      interface{}
	ExpiresAt time.Time
}

// PageCache is a process-local LRU with per-entry TTL, used for the
// public post listing and detail responses.
type PageCache struct {
	lruCache *lru.Cache[string, cacheItem]
}

var cacheInstance *PageCache

// GetCache returns the singleton cache instance.
func GetCache() *PageCache {
	if cacheInstance == nil {
		l, err := lru.New[string, cacheItem](500)
		if err != nil {
			log.Fatalf("Failed to create LRU cache: %v", err)
		}
		cacheInstance = &PageCache{
			lruCache: l,
		}
	}
	return cacheInstance
}

func (c *PageCache) Set(key string, data interface{}, ttl time.Duration) {
	c.lruCache.Add(key, cacheItem{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
	})
}

// Get returns nil when the key is missing or expired.
func (c *PageCache) Get(key string) interface{} {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return nil
	}

	if time.Now().After(val.ExpiresAt) {
		c.lruCache.Remove(key)
		return nil
	}

	return val.Data
}

func (c *PageCache) Delete(key string) {
	c.lruCache.Remove(key)
}

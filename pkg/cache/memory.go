package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/matzehuels/autoreqs/pkg/observability"
)

// DefaultMemorySize bounds the number of entries a MemoryCache holds.
const DefaultMemorySize = 1024

// MemoryCache is an in-process LRU cache with optional per-entry expiry.
type MemoryCache struct {
	entries *lru.Cache[string, memoryEntry]
	now     func() time.Time
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemoryCache creates a memory cache holding at most size entries.
// A non-positive size falls back to DefaultMemorySize.
func NewMemoryCache(size int) (Cache, error) {
	if size <= 0 {
		size = DefaultMemorySize
	}
	entries, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{entries: entries, now: time.Now}, nil
}

// Get retrieves a value from the cache. Expired entries are evicted and
// reported as a miss.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, ok := c.entries.Get(key)
	if !ok {
		observability.Cache().OnCacheMiss(ctx, key)
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		c.entries.Remove(key)
		observability.Cache().OnCacheMiss(ctx, key)
		return nil, false, nil
	}
	observability.Cache().OnCacheHit(ctx, key)
	return entry.data, true, nil
}

// Set stores a copy of data under key.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	entry := memoryEntry{data: append([]byte(nil), data...)}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}
	c.entries.Add(key, entry)
	observability.Cache().OnCacheSet(ctx, key, len(data))
	return nil
}

// Delete removes a value from the cache.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.entries.Remove(key)
	return nil
}

// Close drops every entry.
func (c *MemoryCache) Close() error {
	c.entries.Purge()
	return nil
}

// Len reports the number of live and not yet evicted entries.
func (c *MemoryCache) Len() int {
	return c.entries.Len()
}

// Ensure MemoryCache implements Cache.
var _ Cache = (*MemoryCache)(nil)

// Package cache provides the key/value cache used to memoize package index
// responses for the duration of a single run.
//
// Nothing is persisted: the only state autoreqs keeps across invocations is
// the manifest file. [MemoryCache] is the default backend and [NullCache]
// disables memoization entirely.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte payloads under string keys.
//
// A ttl of 0 means the entry lives as long as the cache does.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// NullCache stores nothing. Every lookup misses, so each index request goes
// to the network; runners and clients fall back to it when no cache is given.
type NullCache struct{}

var _ Cache = NullCache{}

// NewNullCache returns a cache that disables memoization.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NullCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (NullCache) Delete(context.Context, string) error {
	return nil
}

func (NullCache) Close() error {
	return nil
}

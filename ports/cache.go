package ports

import (
	"context"
	"encoding/json"
	"time"
)

// CacheEntry is one durable cache record. Freshness is the source-data
// version the payload was computed from; CachedAt is when the entry was
// written. An entry is valid only while Freshness is at or after the
// maximum modification time of the declared source tables and, for sample
// entries, the CachedAt of the owning study's current entry.
type CacheEntry struct {
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	Freshness time.Time       `json:"freshness"`
	CachedAt  time.Time       `json:"cached_at"`
}

// IsFreshFor reports whether the entry still covers the given source version.
func (e CacheEntry) IsFreshFor(sourceVersion time.Time) bool {
	return !e.Freshness.Before(sourceVersion)
}

// CacheStore is the durable key-value contract behind the analysis cache.
// Put must replace atomically: a concurrent Get never observes a partially
// written entry. Get returns core.ErrCacheMiss for absent keys and wraps
// core.ErrCacheCorrupt for unreadable entries; callers treat both as a miss.
type CacheStore interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Put(ctx context.Context, entry CacheEntry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

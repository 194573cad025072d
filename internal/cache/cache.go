// Package cache layers an in-process map over a durable CacheStore.
// Memory answers repeat lookups within a process; the store survives
// restarts. Both tiers are invalidated by source freshness, never by age.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"compendium/domain/core"
	"compendium/internal"
	"compendium/ports"
)

// Layered is a two-tier cache keyed by string. Get validates entries
// against the caller's required freshness: an entry computed before the
// source data last changed is a miss, and a newly observed source version
// evicts the whole memory tier so stale siblings cannot linger.
type Layered struct {
	store ports.CacheStore
	log   *internal.Logger

	mu       sync.RWMutex
	memory   map[string]ports.CacheEntry
	lastSeen time.Time

	// now is swappable for tests.
	now func() time.Time
}

// NewLayered wraps store with an in-memory tier.
func NewLayered(store ports.CacheStore, log *internal.Logger) *Layered {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &Layered{
		store:  store,
		log:    log,
		memory: make(map[string]ports.CacheEntry),
		now:    time.Now,
	}
}

// Get returns the entry under key if it is fresh for requiredFreshness.
// A stale, absent, or unreadable entry is reported as core.ErrCacheMiss;
// corruption is logged but never surfaces as a distinct failure.
func (c *Layered) Get(ctx context.Context, key string, requiredFreshness time.Time) (*ports.CacheEntry, error) {
	c.evictIfAdvanced(requiredFreshness)

	c.mu.RLock()
	entry, ok := c.memory[key]
	c.mu.RUnlock()
	if ok {
		if entry.IsFreshFor(requiredFreshness) {
			return &entry, nil
		}
		c.mu.Lock()
		delete(c.memory, key)
		c.mu.Unlock()
	}

	stored, err := c.store.Get(ctx, key)
	if err != nil {
		if core.IsCacheCorrupt(err) {
			c.log.Warn("discarding corrupt cache entry %s: %v", key, err)
			return nil, core.ErrCacheMiss
		}
		return nil, err
	}
	if !stored.IsFreshFor(requiredFreshness) {
		c.log.Debug("cache entry %s is stale (freshness %s < source %s)",
			key, stored.Freshness.Format(time.RFC3339), requiredFreshness.Format(time.RFC3339))
		return nil, core.ErrCacheMiss
	}

	c.mu.Lock()
	c.memory[key] = *stored
	c.mu.Unlock()
	return stored, nil
}

// Put marshals value and writes it through both tiers. The returned entry
// carries the CachedAt stamp dependent entries validate against.
func (c *Layered) Put(ctx context.Context, key string, value any, freshness time.Time) (*ports.CacheEntry, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	entry := ports.CacheEntry{
		Key:       key,
		Payload:   payload,
		Freshness: freshness,
		CachedAt:  c.now(),
	}
	if err := c.store.Put(ctx, entry); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.memory[key] = entry
	c.mu.Unlock()
	return &entry, nil
}

// Delete removes key from both tiers.
func (c *Layered) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.memory, key)
	c.mu.Unlock()
	return c.store.Delete(ctx, key)
}

// InvalidateAll drops every entry from both tiers.
func (c *Layered) InvalidateAll(ctx context.Context) error {
	c.mu.Lock()
	c.memory = make(map[string]ports.CacheEntry)
	c.mu.Unlock()
	return c.store.Clear(ctx)
}

// evictIfAdvanced clears the memory tier when the source version moves past
// the last one observed. Durable entries are validated individually on read.
func (c *Layered) evictIfAdvanced(sourceVersion time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sourceVersion.After(c.lastSeen) {
		if !c.lastSeen.IsZero() && len(c.memory) > 0 {
			c.log.Info("source data changed, dropping %d in-memory cache entries", len(c.memory))
			c.memory = make(map[string]ports.CacheEntry)
		}
		c.lastSeen = sourceVersion
	}
}

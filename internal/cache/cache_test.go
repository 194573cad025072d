package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"compendium/domain/core"
	"compendium/ports"
)

// memStore is a minimal durable store with call counting.
type memStore struct {
	entries map[string]ports.CacheEntry
	gets    int
	corrupt map[string]bool
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]ports.CacheEntry), corrupt: make(map[string]bool)}
}

func (m *memStore) Get(_ context.Context, key string) (*ports.CacheEntry, error) {
	m.gets++
	if m.corrupt[key] {
		return nil, core.NewCacheCorruptError(key, errors.New("bad payload"))
	}
	e, ok := m.entries[key]
	if !ok {
		return nil, core.ErrCacheMiss
	}
	return &e, nil
}

func (m *memStore) Put(_ context.Context, entry ports.CacheEntry) error {
	m.entries[entry.Key] = entry
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	delete(m.entries, key)
	return nil
}

func (m *memStore) Clear(_ context.Context) error {
	m.entries = make(map[string]ports.CacheEntry)
	return nil
}

func TestLayered_PutThenGet(t *testing.T) {
	store := newMemStore()
	c := NewLayered(store, nil)
	ctx := context.Background()
	source := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	if _, err := c.Put(ctx, "study/s1", map[string]int{"n": 3}, source); err != nil {
		t.Fatalf("put: %v", err)
	}

	entry, err := c.Get(ctx, "study/s1", source)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(entry.Payload) != `{"n":3}` {
		t.Errorf("payload = %s", entry.Payload)
	}
}

func TestLayered_MemoryTierSkipsStore(t *testing.T) {
	store := newMemStore()
	c := NewLayered(store, nil)
	ctx := context.Background()
	source := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	c.Put(ctx, "k", "v", source)
	c.Get(ctx, "k", source)
	c.Get(ctx, "k", source)
	if store.gets != 0 {
		t.Errorf("memory hit should not touch the store, saw %d store gets", store.gets)
	}
}

func TestLayered_StaleEntryIsMiss(t *testing.T) {
	store := newMemStore()
	c := NewLayered(store, nil)
	ctx := context.Background()

	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.Put(ctx, "k", "v", old)

	newer := old.Add(time.Hour)
	if _, err := c.Get(ctx, "k", newer); !core.IsCacheMiss(err) {
		t.Errorf("expected miss for advanced source, got %v", err)
	}
}

func TestLayered_SourceAdvanceEvictsMemory(t *testing.T) {
	store := newMemStore()
	c := NewLayered(store, nil)
	ctx := context.Background()

	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.Put(ctx, "a", 1, t0)
	c.Get(ctx, "a", t0)

	// Source moves forward; the memory tier must not serve t0 entries.
	t1 := t0.Add(time.Minute)
	if _, err := c.Get(ctx, "a", t1); !core.IsCacheMiss(err) {
		t.Fatalf("expected miss after source advance, got %v", err)
	}

	// Recompute at t1; subsequent reads hit again.
	c.Put(ctx, "a", 2, t1)
	if _, err := c.Get(ctx, "a", t1); err != nil {
		t.Errorf("expected hit after refresh: %v", err)
	}
}

func TestLayered_CorruptEntryIsMiss(t *testing.T) {
	store := newMemStore()
	c := NewLayered(store, nil)
	ctx := context.Background()
	source := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	store.corrupt["bad"] = true
	if _, err := c.Get(ctx, "bad", source); !core.IsCacheMiss(err) {
		t.Errorf("corrupt entry should read as miss, got %v", err)
	}
}

func TestLayered_AbsentKeyIsMiss(t *testing.T) {
	c := NewLayered(newMemStore(), nil)
	if _, err := c.Get(context.Background(), "nope", time.Now()); !core.IsCacheMiss(err) {
		t.Errorf("expected miss, got %v", err)
	}
}

func TestLayered_InvalidateAll(t *testing.T) {
	store := newMemStore()
	c := NewLayered(store, nil)
	ctx := context.Background()
	source := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	c.Put(ctx, "a", 1, source)
	c.Put(ctx, "b", 2, source)
	if err := c.InvalidateAll(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := c.Get(ctx, "a", source); !core.IsCacheMiss(err) {
		t.Errorf("expected miss after invalidate, got %v", err)
	}
	if len(store.entries) != 0 {
		t.Errorf("store should be empty, has %d", len(store.entries))
	}
}

func TestLayered_DurableEntrySurvivesNewProcess(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	source := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	first := NewLayered(store, nil)
	first.Put(ctx, "k", "v", source)

	// A fresh layered cache over the same store simulates a restart.
	second := NewLayered(store, nil)
	if _, err := second.Get(ctx, "k", source); err != nil {
		t.Errorf("durable entry should survive restart: %v", err)
	}
}

// Package cachestore provides the durable CacheStore implementations: a
// per-key JSON file store and an embedded SQLite store.
package cachestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"compendium/domain/core"
	"compendium/ports"
)

// FileStore keeps one JSON file per cache key. Writes go to a uniquely
// named temp file in the same directory and are renamed into place, so a
// concurrent reader never observes a partially written entry.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, sanitizeKey(key)+".json")
}

// sanitizeKey flattens the key's path separators so every entry lives
// directly under the cache directory.
func sanitizeKey(key string) string {
	key = strings.ReplaceAll(key, "/", "__")
	return strings.ReplaceAll(key, string(os.PathSeparator), "__")
}

func (s *FileStore) Get(_ context.Context, key string) (*ports.CacheEntry, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.ErrCacheMiss
		}
		return nil, fmt.Errorf("reading cache entry %s: %w", key, err)
	}

	var entry ports.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, core.NewCacheCorruptError(key, err)
	}
	return &entry, nil
}

func (s *FileStore) Put(_ context.Context, entry ports.CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry %s: %w", entry.Key, err)
	}

	target := s.path(entry.Key)
	tmp := target + "." + uuid.NewString() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing cache entry %s: %w", entry.Key, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing cache entry %s: %w", entry.Key, err)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting cache entry %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Clear(_ context.Context) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("listing cache dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
	}
	return nil
}

var _ ports.CacheStore = (*FileStore)(nil)

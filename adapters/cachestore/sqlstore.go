package cachestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"compendium/domain/core"
	"compendium/ports"
)

const sqlSchema = `
CREATE TABLE IF NOT EXISTS analysis_cache (
	key       TEXT PRIMARY KEY,
	payload   BLOB NOT NULL,
	freshness INTEGER NOT NULL,
	cached_at INTEGER NOT NULL
)`

// SQLStore keeps cache entries in an embedded SQLite database. Upserts are
// single statements, so replacement is atomic. Timestamps are stored as
// Unix nanoseconds.
type SQLStore struct {
	db *sqlx.DB
}

func NewSQLStore(path string) (*SQLStore, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache db %s: %w", path, err)
	}
	if _, err := db.Exec(sqlSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing cache schema: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

type cacheRow struct {
	Key       string `db:"key"`
	Payload   []byte `db:"payload"`
	Freshness int64  `db:"freshness"`
	CachedAt  int64  `db:"cached_at"`
}

func (s *SQLStore) Get(ctx context.Context, key string) (*ports.CacheEntry, error) {
	var row cacheRow
	err := s.db.GetContext(ctx, &row,
		`SELECT key, payload, freshness, cached_at FROM analysis_cache WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache entry %s: %w", key, err)
	}

	return &ports.CacheEntry{
		Key:       row.Key,
		Payload:   row.Payload,
		Freshness: time.Unix(0, row.Freshness).UTC(),
		CachedAt:  time.Unix(0, row.CachedAt).UTC(),
	}, nil
}

func (s *SQLStore) Put(ctx context.Context, entry ports.CacheEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO analysis_cache (key, payload, freshness, cached_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   payload = excluded.payload,
		   freshness = excluded.freshness,
		   cached_at = excluded.cached_at`,
		entry.Key, []byte(entry.Payload), entry.Freshness.UnixNano(), entry.CachedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("writing cache entry %s: %w", entry.Key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM analysis_cache WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting cache entry %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM analysis_cache`); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}

var _ ports.CacheStore = (*SQLStore)(nil)

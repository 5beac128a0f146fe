// Package sqlite provides a Store backed by a single-file SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/terencehorsman/ChemoCare/schedule"
	"github.com/terencehorsman/ChemoCare/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	key      TEXT PRIMARY KEY,
	value    BLOB NOT NULL,
	modified TEXT NOT NULL
);`

// Store persists the plan and override documents in a documents table keyed
// by storage.KeyPlan / storage.KeyOverrides.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM documents WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *Store) put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents(key, value, modified) VALUES(?,?,?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value, modified=excluded.modified`,
		key, value, time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *Store) GetPlan(ctx context.Context) (schedule.Plan, error) {
	data, err := s.get(ctx, storage.KeyPlan)
	if err != nil {
		return schedule.Plan{}, err
	}
	return storage.DecodePlan(data)
}

func (s *Store) PutPlan(ctx context.Context, p schedule.Plan) error {
	data, err := storage.EncodePlan(p)
	if err != nil {
		return err
	}
	return s.put(ctx, storage.KeyPlan, data)
}

func (s *Store) GetOverrides(ctx context.Context) ([]schedule.Override, error) {
	data, err := s.get(ctx, storage.KeyOverrides)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return storage.DecodeOverrides(data)
}

func (s *Store) PutOverrides(ctx context.Context, overrides []schedule.Override) error {
	data, err := storage.EncodeOverrides(overrides)
	if err != nil {
		return err
	}
	return s.put(ctx, storage.KeyOverrides, data)
}

func (s *Store) Reset(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE key IN (?, ?)`, storage.KeyPlan, storage.KeyOverrides)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv_entries (
	key        TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	expires_at TIMESTAMPTZ
);
ALTER TABLE kv_entries ADD COLUMN IF NOT EXISTS expires_at TIMESTAMPTZ;
CREATE INDEX IF NOT EXISTS idx_kv_entries_expires_at ON kv_entries (expires_at) WHERE expires_at IS NOT NULL`

const unexpired = "(expires_at IS NULL OR expires_at > NOW())"

// Store is the PostgreSQL backend; each key is one JSONB row
type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Migrate creates the key-value table if needed
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate kv_entries: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// Get retrieves the raw value of a key
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.GetContext(ctx, &value, "SELECT value FROM kv_entries WHERE key = $1 AND "+unexpired, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Update locks the row (FOR UPDATE) and writes fn's result in the same transaction
func (s *Store) Update(ctx context.Context, key string, fn UpdateFunc) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// serializes first writes too, when there is no row to lock yet
	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", key); err != nil {
		return fmt.Errorf("failed to lock %s: %w", key, err)
	}

	var current []byte
	err = tx.GetContext(ctx, &current,
		"SELECT value FROM kv_entries WHERE key = $1 AND "+unexpired+" FOR UPDATE", key)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to lock %s: %w", key, err)
	}

	next, err := fn(current)
	if err != nil {
		return err
	}
	if next == nil {
		return nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO kv_entries (key, value, updated_at, expires_at)
		VALUES ($1, $2, NOW(), NULL)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW(), expires_at = NULL`,
		key, string(next))
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	return tx.Commit()
}

// Expire sets the row's deadline and purges rows whose deadline has passed
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE kv_entries SET expires_at = NOW() + $2 * INTERVAL '1 millisecond' WHERE key = $1",
		key, ttl.Milliseconds())
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, "DELETE FROM kv_entries WHERE expires_at <= NOW()")
	return err
}

// Delete removes a key
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM kv_entries WHERE key = $1", key)
	return err
}

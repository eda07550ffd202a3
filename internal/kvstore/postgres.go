package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	createKVTableSQL = `
		CREATE TABLE IF NOT EXISTS kv_entries (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`

	getKVSQL = `SELECT value FROM kv_entries WHERE key = $1`

	upsertKVSQL = `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()
	`

	deleteKVSQL = `DELETE FROM kv_entries WHERE key = $1`
)

// PostgresStore implements Store on a single postgres table.
// The pool is owned by the caller and is not closed by Close.
type PostgresStore struct {
	db *pgxpool.Pool
}

// creates a new postgres-backed store
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// creates the kv table if it doesn't exist
func (s *PostgresStore) Initialize(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createKVTableSQL); err != nil {
		return fmt.Errorf("failed to create kv_entries: %w", err)
	}

	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, error) {
	var value string

	err := s.db.QueryRow(ctx, getKVSQL, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}

	if err != nil {
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}

	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.Exec(ctx, upsertKVSQL, key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	return nil
}

func (s *PostgresStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, deleteKVSQL, key); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}

	return nil
}

func (s *PostgresStore) Close() error {
	return nil
}

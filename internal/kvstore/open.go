package kvstore

import (
	"context"
	"fmt"

	"codeberg.org/tubetrack/server/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

const redisKeyPrefix = "tubetrack:"

// opens the store selected by cfg.KVBackend; db is only used by the postgres backend
func Open(ctx context.Context, cfg *config.Config, db *pgxpool.Pool) (Store, error) {
	switch cfg.KVBackend {
	case config.BackendMemory:
		return NewMemoryStore(), nil

	case config.BackendRedis:
		return NewRedisStoreFromURL(cfg.RedisURL, redisKeyPrefix)

	case config.BackendSQLite:
		return NewSQLiteStore(cfg.SQLitePath)

	case config.BackendPostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres kv backend requires a database pool")
		}

		store := NewPostgresStore(db)
		if err := store.Initialize(ctx); err != nil {
			return nil, err
		}

		return store, nil
	}

	return nil, fmt.Errorf("unknown kv backend %q", cfg.KVBackend)
}

package main

import (
	"context"
	"fmt"

	"codeberg.org/tubetrack/server/internal/attribution"
	"codeberg.org/tubetrack/server/internal/config"
	"codeberg.org/tubetrack/server/internal/kvstore"
	"codeberg.org/tubetrack/server/internal/logger"
	"codeberg.org/tubetrack/server/internal/snapshots"
	"codeberg.org/tubetrack/server/tubetrack/accounts"
	"codeberg.org/tubetrack/server/tubetrack/tracked"
	"github.com/jackc/pgx/v5/pgxpool"
)

// connections shared by every subcommand
type Deps struct {
	DB          *pgxpool.Pool
	KV          kvstore.Store
	Accounts    *accounts.Repository
	Tracked     *tracked.Repository
	Snapshots   *snapshots.Manager
	Attribution *attribution.Service
}

func connect(ctx context.Context, cfg *config.Config) (*Deps, error) {
	db, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("connected to database")

	kv, err := kvstore.Open(ctx, cfg, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open kv store: %w", err)
	}

	trackedRepo := tracked.NewRepository(db)
	stores := snapshots.NewManager(kv)

	return &Deps{
		DB:          db,
		KV:          kv,
		Accounts:    accounts.NewRepository(db),
		Tracked:     trackedRepo,
		Snapshots:   stores,
		Attribution: attribution.NewService(stores, trackedRepo),
	}, nil
}

func (d *Deps) Close() {
	if err := d.KV.Close(); err != nil {
		logger.ErrorErr(err, "failed to close kv store")
	}

	d.DB.Close()
}

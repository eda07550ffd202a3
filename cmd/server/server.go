package main

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/tubetrack/server/internal/config"
	"codeberg.org/tubetrack/server/internal/events"
	"codeberg.org/tubetrack/server/internal/kvstore"
	"codeberg.org/tubetrack/server/internal/logger"
	"codeberg.org/tubetrack/server/tubetrack/accounts"
	"codeberg.org/tubetrack/server/tubetrack/tracked"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// opens a small postgres pool. the simple protocol keeps it usable behind
// a transaction-mode PgBouncer.
func openDatabase(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	ctx, cancel := context.WithCancel(context.Background())

	cleanup := func(closers ...func()) {
		for _, c := range closers {
			c()
		}
		cancel()
	}

	db, err := openDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		cancel()
		return nil, err
	}

	accountRepo := accounts.NewRepository(db)
	trackedRepo := tracked.NewRepository(db)

	if err := accountRepo.Initialize(ctx); err != nil {
		cleanup(db.Close)
		return nil, fmt.Errorf("failed to initialize accounts table: %w", err)
	}

	if err := trackedRepo.Initialize(ctx); err != nil {
		cleanup(db.Close)
		return nil, fmt.Errorf("failed to initialize tracked videos table: %w", err)
	}

	kv, err := kvstore.Open(ctx, cfg, db)
	if err != nil {
		cleanup(db.Close)
		return nil, fmt.Errorf("failed to open kv store: %w", err)
	}

	closeKV := func() {
		kv.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
	}

	redisClient, err := connectRedis(ctx, cfg.RedisURL)
	if err != nil {
		cleanup(closeKV, db.Close)
		return nil, err
	}

	hub := events.NewHub()

	services, err := InitializeServices(cfg, kv, redisClient, accountRepo, trackedRepo, hub)
	if err != nil {
		if redisClient != nil {
			redisClient.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		}
		cleanup(closeKV, db.Close)
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	server := &Server{
		db:          db,
		redis:       redisClient,
		config:      cfg,
		accountRepo: accountRepo,
		trackedRepo: trackedRepo,
		kv:          kv,
		services:    services,
		hub:         hub,
		router:      router,
		ctx:         ctx,
		cancel:      cancel,
	}

	RegisterRoutes(router, server)

	logger.Info("server initialized",
		"kv_backend", cfg.KVBackend,
		"snapshot_hour", cfg.SnapshotHour,
		"timezone", cfg.Location.String(),
		"next_run", services.Scheduler.Next(),
		"redis", redisClient != nil,
	)

	return server, nil
}

// releases every connection held by the server
func (s *Server) Close() {
	s.cancel()

	if err := s.kv.Close(); err != nil {
		logger.ErrorErr(err, "failed to close kv store")
	}

	if s.redis != nil {
		s.redis.Close() //nolint:errcheck,gosec // best-effort cleanup on shutdown
	}

	s.db.Close()
}

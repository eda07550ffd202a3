package main

import (
	"context"
	"fmt"

	"codeberg.org/tubetrack/server/internal/attribution"
	"codeberg.org/tubetrack/server/internal/auth"
	"codeberg.org/tubetrack/server/internal/config"
	"codeberg.org/tubetrack/server/internal/events"
	"codeberg.org/tubetrack/server/internal/kvstore"
	"codeberg.org/tubetrack/server/internal/ratelimit"
	"codeberg.org/tubetrack/server/internal/scheduler"
	"codeberg.org/tubetrack/server/internal/snapshots"
	"codeberg.org/tubetrack/server/internal/youtube"
	"codeberg.org/tubetrack/server/tubetrack/accounts"
	"codeberg.org/tubetrack/server/tubetrack/tracked"
	"github.com/redis/go-redis/v9"
)

// creates and wires the snapshot pipeline
func InitializeServices(
	cfg *config.Config,
	kv kvstore.Store,
	redisClient *redis.Client,
	accountRepo *accounts.Repository,
	trackedRepo *tracked.Repository,
	hub *events.Hub,
) (*Services, error) {
	tokens := auth.NewTokenSources(auth.OAuthConfig(cfg), accountRepo)
	provider := youtube.NewProvider(tokens.For, kv, cfg.CacheTTL)

	stores := snapshots.NewManager(kv)

	opts := scheduler.Options{
		AnchorHour:    cfg.SnapshotHour,
		Location:      cfg.Location,
		CheckInterval: cfg.SchedulerCheckInterval,
		CallDelay:     cfg.SnapshotCallDelay,
	}

	runner := scheduler.NewRunner(accountRepo, trackedRepo, provider, stores, hub, opts)

	rateLimit, err := ratelimit.New(cfg.RateLimit, redisClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limiter: %w", err)
	}

	return &Services{
		YouTube:     provider,
		Snapshots:   stores,
		Attribution: attribution.NewService(stores, trackedRepo),
		Runner:      runner,
		Scheduler:   scheduler.New(runner, opts),
		RateLimit:   rateLimit,
	}, nil
}

// connects to redis when REDIS_URL is set; nil otherwise
func connectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

package main

import (
	"context"

	"codeberg.org/tubetrack/server/internal/attribution"
	"codeberg.org/tubetrack/server/internal/config"
	"codeberg.org/tubetrack/server/internal/events"
	"codeberg.org/tubetrack/server/internal/kvstore"
	"codeberg.org/tubetrack/server/internal/scheduler"
	"codeberg.org/tubetrack/server/internal/snapshots"
	"codeberg.org/tubetrack/server/internal/youtube"
	"codeberg.org/tubetrack/server/tubetrack/accounts"
	"codeberg.org/tubetrack/server/tubetrack/tracked"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// holds all dependencies and state for the API server
type Server struct {
	db          *pgxpool.Pool
	redis       *redis.Client
	config      *config.Config
	accountRepo *accounts.Repository
	trackedRepo *tracked.Repository
	kv          kvstore.Store
	services    *Services
	hub         *events.Hub
	router      *gin.Engine

	// cancelled on shutdown; parent of scheduler and background runs
	ctx    context.Context
	cancel context.CancelFunc
}

// holds the snapshot pipeline: youtube access, storage, estimation and scheduling
type Services struct {
	YouTube     youtube.Factory
	Snapshots   *snapshots.Manager
	Attribution *attribution.Service
	Runner      *scheduler.Runner
	Scheduler   *scheduler.Scheduler
	RateLimit   gin.HandlerFunc
}

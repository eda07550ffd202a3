package main

import (
	"context"
	"errors"

	"codeberg.org/tubetrack/server/api/rest/auth"
	"codeberg.org/tubetrack/server/api/rest/health"
	snapshotsapi "codeberg.org/tubetrack/server/api/rest/snapshots"
	"codeberg.org/tubetrack/server/api/rest/tracking"
	"codeberg.org/tubetrack/server/api/rest/videos"
	ytapi "codeberg.org/tubetrack/server/api/rest/youtube"
	"codeberg.org/tubetrack/server/api/websocket"
	"codeberg.org/tubetrack/server/internal/kvstore"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) {
	router.Use(CORSMiddleware(server.config.AllowedOrigins))
	router.Use(server.services.RateLimit)

	router.GET("/health", health.Handler)
	router.GET("/ready", health.ReadyHandler(readinessChecks(server)))

	v1 := router.Group("/api/v1")

	{
		v1.GET("/ping", health.PingHandler)

		auth.RegisterRoutes(v1, server.accountRepo)
		ytapi.RegisterRoutes(v1, server.accountRepo, server.services.YouTube)
		tracking.RegisterRoutes(v1, server.trackedRepo, server.accountRepo, server.services.YouTube, server.services.Snapshots)
		videos.RegisterRoutes(v1, server.services.Snapshots, server.services.Attribution, server.accountRepo, server.services.Runner)
		snapshotsapi.RegisterRoutes(v1, server.ctx, server.services.Runner, server.services.Scheduler)
		websocket.RegisterRoutes(v1, server.hub)
	}
}

// allows the configured dashboard origins, or any origin when none are set
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: len(allowedOrigins) > 0,
	}

	if len(allowedOrigins) > 0 {
		cfg.AllowOrigins = allowedOrigins
	} else {
		cfg.AllowAllOrigins = true
	}

	return cors.New(cfg)
}

func readinessChecks(server *Server) map[string]health.Pinger {
	checks := map[string]health.Pinger{
		"postgres": server.db,
		"kv": health.PingFunc(func(ctx context.Context) error {
			_, err := server.kv.Get(ctx, "readiness_probe")
			if err == nil || errors.Is(err, kvstore.ErrNotFound) {
				return nil
			}

			return err
		}),
	}

	if server.redis != nil {
		checks["redis"] = health.PingFunc(func(ctx context.Context) error {
			return server.redis.Ping(ctx).Err()
		})
	}

	return checks
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/tubetrack/server/internal/auth"
	"codeberg.org/tubetrack/server/internal/config"
	"codeberg.org/tubetrack/server/internal/logger"
)

// @title tubetrack API
// @version 1.0
// @description Daily YouTube video snapshots and playlist impact estimates
// @description
// @description Features:
// @description - Google sign-in with read-only YouTube access
// @description - Track videos and record their views and playlists once a day
// @description - Estimate how much of each video's growth every playlist contributed
// @description - Export reports as CSV, JSON, YAML or Markdown
// @description - Live run progress over WebSockets

// @contact.name API Support
// @contact.url https://codeberg.org/tubetrack/server

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authenticated requests. Format: Bearer {token}

func main() {
	logger.Info("starting tubetrack server")

	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	logger.SetDefault(logger.New(cfg.Environment, os.Getenv("LOG_LEVEL")))

	if err := auth.InitializeProviders(cfg); err != nil {
		logger.Fatal("failed to initialize OAuth providers", "error", err)
	}

	srv, err := NewServer(cfg)
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      srv.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	// start websocket hub
	go srv.hub.Run()

	// daily snapshot loop; stops when srv.ctx is cancelled
	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		srv.services.Scheduler.Start(srv.ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// cancels the scheduler and any background run
	srv.cancel()
	<-schedulerDone

	// notify websocket clients and close connections first
	srv.hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	srv.Close()

	logger.Info("server stopped")
}

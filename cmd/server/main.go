// Package main is the entry point for the Basket portfolio grouping engine.
// It ingests brokerage export files, maintains named ticker groups, and
// serves the aggregated allocation report over HTTP.
//
// Startup sequence:
// 1. Load configuration from environment variables
// 2. Wire dependencies via the DI container (databases, repositories, services)
// 3. Load persisted workspace state (groups, positions, settings)
// 4. Start the cron scheduler (export rescan, daily snapshot)
// 5. Start the HTTP server and wait for a shutdown signal
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

	"github.com/aristath/basket/internal/config"
	"github.com/aristath/basket/internal/di"
	"github.com/aristath/basket/internal/scheduler"
	"github.com/aristath/basket/internal/server"
	"github.com/aristath/basket/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	log.Info().Msg("Starting Basket")

	// Wire all dependencies: databases, repositories, the workspace service.
	// InitializeServices overlays engine tunables from the settings database,
	// so cfg reflects stored settings from here on.
	container, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	// Restore persisted state: groups and manual tickers from workspace.db,
	// the latest position set from cache.db. Unreadable storage means an
	// empty workspace, never a failed start.
	container.Workspace.Load()

	// Background jobs. The rescan job picks up export files dropped into the
	// watched directory; the snapshot job records the daily view history.
	sched := scheduler.New(log)

	rescanJob := scheduler.NewExportRescanJob(container.Workspace, log)
	if cfg.RescanInterval > 0 {
		schedule := fmt.Sprintf("@every %ds", int(cfg.RescanInterval/time.Second))
		if err := sched.AddJob(schedule, rescanJob); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule export rescan job")
		}
	} else {
		log.Info().Msg("Export rescan disabled (interval is zero)")
	}

	snapshotJob := scheduler.NewDailySnapshotJob(container.Workspace, log)
	if err := sched.AddJob("0 5 0 * * *", snapshotJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule daily snapshot job")
	}

	sched.Start()

	// Catch up on exports that arrived while the engine was down.
	if cfg.RescanInterval > 0 {
		if err := sched.RunNow(rescanJob); err != nil {
			log.Warn().Err(err).Msg("Startup export rescan failed")
		}
	}

	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
		Container: container,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

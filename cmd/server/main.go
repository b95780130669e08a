// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/snapkeep/internal/api"
	"github.com/tomtom215/snapkeep/internal/backup"
	"github.com/tomtom215/snapkeep/internal/config"
	"github.com/tomtom215/snapkeep/internal/logging"
	"github.com/tomtom215/snapkeep/internal/supervisor"
	"github.com/tomtom215/snapkeep/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logging.Info().Str("version", version).Str("database", cfg.Database.Path).Msg("Starting snapkeep")

	backupCfg, err := cfg.ToBackupConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid backup configuration")
	}
	manager, err := backup.NewManager(backupCfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize backup manager")
	}
	logging.Info().
		Bool("enabled", backupCfg.Enabled).
		Str("dir", backupCfg.BackupDir).
		Str("schedule", string(backupCfg.Schedule)).
		Int("retention_days", backupCfg.RetentionDays).
		Msg("Backup manager initialized")

	if cfg.Security.APIToken == "" {
		logging.Warn().Msg("API_TOKEN is not set: the backup API, including restore, is open to anyone who can reach it")
	}

	router := api.NewRouter(api.NewHandler(manager, version), api.RouterConfig{
		APIToken: cfg.Security.APIToken,
		Middleware: &api.ChiMiddlewareConfig{
			CORSAllowedOrigins: cfg.Security.CORSOrigins,
			CORSMaxAge:         300,
			RateLimitRequests:  cfg.Security.RateLimitReqs,
			RateLimitWindow:    cfg.Security.RateLimitWindow,
			RateLimitDisabled:  cfg.Security.RateLimitDisabled,
		},
	})

	// WriteTimeout is left at zero: snapshot downloads can outlive any
	// request timeout. Handlers are bounded by ReadTimeout and IdleTimeout.
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	tree.AddBackupService(services.NewBackupSchedulerService(manager))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Received shutdown signal, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Msg("snapkeep stopped")
}

// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

/*
Package supervisor provides process supervision for snapkeep-server using
suture v4.

# Overview

	RootSupervisor ("snapkeep")
	├── BackupSupervisor ("backup-layer")
	│   └── BackupSchedulerService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A listener that dies (port stolen, TLS reload, panic in a handler chain that
escaped Recoverer) is restarted inside the api layer. The backup schedule is
not restarted with it, so no extra startup backup is triggered.

# Usage Example

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddBackupService(services.NewBackupSchedulerService(manager))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("Supervisor stopped")
	}

# Configuration

Zero values in TreeConfig fall back to suture's defaults:
  - FailureThreshold: 5 failures
  - FailureDecay: 30 seconds
  - FailureBackoff: 15 seconds
  - ShutdownTimeout: 10 seconds

# Service Interface

All services implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Returning an error restarts the service; returning after ctx is canceled ends it.

# Logging

Supervisor events (service failures, restarts, backoff) are reported through
sutureslog into the zerolog logger via logging.NewSlogLogger.

# Debugging Shutdown Issues

	report, _ := tree.UnstoppedServiceReport()
	for _, svc := range report {
	    logging.Warn().Interface("service", svc).Msg("Service did not stop")
	}
*/
package supervisor

// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

/*
Package services provides suture.Service wrappers for snapkeep components.

Each wrapper translates a component's own lifecycle (Start/Shutdown,
ListenAndServe/Shutdown) into suture's context-aware Serve:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server for the admin API
  - Graceful Shutdown with a configurable drain timeout (HTTP_SHUTDOWN_TIMEOUT)

Backup Scheduler (BackupSchedulerService):
  - Wraps *backup.Manager
  - Starts the cron schedule and startup run, stops it when Serve returns
  - A backup already in progress is allowed to finish on its own

# Error Handling

Serve returns ctx.Err() on graceful shutdown and a wrapped error otherwise;
suture restarts the service with backoff in the latter case.
*/
package services

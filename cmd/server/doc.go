// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

/*
Command server runs snapkeep as a long-lived sidecar next to an application
that owns a SQLite database.

It takes scheduled online backups of DATABASE_PATH into BACKUP_DIR, prunes
snapshots older than BACKUP_RETENTION_DAYS and serves the admin API on
HTTP_HOST:HTTP_PORT.

# Process Layout

	RootSupervisor ("snapkeep")
	├── BackupSupervisor ("backup-layer")
	│   └── backup-scheduler
	└── APISupervisor ("api-layer")
	    └── http-server

# Example Usage

	export DATABASE_PATH=/data/app.db
	export BACKUP_DIR=/data/backups
	export API_TOKEN=$(openssl rand -hex 24)
	./snapkeep-server

Configuration is layered: built-in defaults, then the first of config.yaml,
config.yml or /etc/snapkeep/config.yaml (or CONFIG_PATH), then environment
variables.

# Signal Handling

SIGINT and SIGTERM stop the scheduler, drain HTTP connections for up to
HTTP_SHUTDOWN_TIMEOUT and exit. A copy cut off by the exit leaves only a
.partial- file, which listings and retention never see.
*/
package main

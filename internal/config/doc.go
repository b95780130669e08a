// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

/*
Package config loads Snapkeep's configuration with koanf v2.

# Configuration Sources

Layers are applied in order, later layers win:
 1. Built-in defaults (structs provider)
 2. YAML file: $CONFIG_PATH, ./config.yaml, ./config.yml,
    /etc/snapkeep/config.yaml, /etc/snapkeep/config.yml (first found)
 3. Environment variables listed below. Empty and unlisted variables are ignored.

# Environment Variables

Database:
  - DATABASE_PATH: live SQLite file (required)

Backup:
  - BACKUP_ENABLED: scheduled backups on/off (default: true)
  - BACKUP_DIR: snapshot directory (default: backups)
  - BACKUP_PREFIX: snapshot filename prefix (default: snapkeep_backup)
  - BACKUP_RETENTION_DAYS: days to keep snapshots (default: 30)
  - BACKUP_SCHEDULE: hourly, daily or weekly (default: daily)
  - BACKUP_HOUR: hour of day for daily/weekly (default: 2)
  - BACKUP_WEEKDAY: 0-6 or day name for weekly (default: 0, Sunday)
  - BACKUP_ON_START: one backup shortly after start (default: true)
  - BACKUP_STARTUP_DELAY: delay for the startup backup (default: 10s)
  - BACKUP_TIMEZONE: IANA zone for names, schedule and retention (default: host zone)

Server:
  - HTTP_HOST: bind address (default: 127.0.0.1)
  - HTTP_PORT: listen port (default: 8089)
  - HTTP_TIMEOUT: read/write timeout (default: 30s)
  - HTTP_SHUTDOWN_TIMEOUT: graceful shutdown limit (default: 10s)

Security:
  - API_TOKEN: bearer token for the admin API, at least 16 characters.
    Empty disables authentication.
  - CORS_ORIGINS: comma-separated allowed origins (default: none)
  - RATE_LIMIT_REQUESTS: requests per window per IP (default: 60)
  - RATE_LIMIT_WINDOW: rate limit window (default: 1m)
  - RATE_LIMIT_DISABLED: turn rate limiting off (default: false)

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: include caller file:line (default: false)

# Example YAML

	database:
	  path: /var/lib/app/app.db
	backup:
	  dir: /var/backups/app
	  schedule: weekly
	  weekday: saturday
	  hour: 3
	  retention_days: 14
	security:
	  api_token: change-me-to-something-long
	  cors_origins:
	    - https://admin.example.com
*/
package config

// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

/*
Package metrics provides the Prometheus instrumentation for Snapkeep.

All collectors are registered on the default registry through promauto and
exposed by the API at /metrics:

	curl http://127.0.0.1:8089/metrics

# Available Metrics

Backup Metrics:
  - snapkeep_backups_total: backup attempts (counter)
    Labels: trigger (manual, scheduled, startup), result (success, failure, disabled)
  - snapkeep_backup_duration_seconds: copy duration (histogram)
    Labels: trigger
  - snapkeep_backup_last_success_timestamp_seconds (gauge)
  - snapkeep_backup_last_size_bytes (gauge)

Inventory Metrics:
  - snapkeep_snapshots: snapshots in the backup directory (gauge)
  - snapkeep_snapshots_bytes: their total size (gauge)

Retention Metrics:
  - snapkeep_retention_deletions_total: Labels: result (deleted, failed)
  - snapkeep_retention_reclaimed_bytes_total (counter)

Restore Metrics:
  - snapkeep_restores_total: Labels: result (success, aborted, failed)
    "aborted" means the live database was left untouched.
  - snapkeep_restore_duration_seconds (histogram)

API Metrics:
  - snapkeep_api_requests_total: Labels: method, route, status
  - snapkeep_api_request_duration_seconds: Labels: method, route

# Example Alerts

	- alert: SnapkeepBackupStale
	  expr: time() - snapkeep_backup_last_success_timestamp_seconds > 2 * 86400
	- alert: SnapkeepRestoreLeftLiveModified
	  expr: increase(snapkeep_restores_total{result="failed"}[1h]) > 0
*/
package metrics

// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the backup core and the admin API.

var (
	// Backup Metrics
	BackupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapkeep_backups_total",
			Help: "Total number of backup attempts by trigger and result",
		},
		[]string{"trigger", "result"}, // trigger: manual, scheduled, startup; result: success, failure, disabled
	)

	BackupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "snapkeep_backup_duration_seconds",
			Help:    "Duration of online backup copies in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"trigger"},
	)

	BackupLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapkeep_backup_last_success_timestamp_seconds",
			Help: "Unix time of the last successful backup",
		},
	)

	BackupLastSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapkeep_backup_last_size_bytes",
			Help: "Size of the last successful backup in bytes",
		},
	)

	// Inventory Metrics
	SnapshotCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapkeep_snapshots",
			Help: "Number of snapshots in the backup directory",
		},
	)

	SnapshotBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapkeep_snapshots_bytes",
			Help: "Total size of snapshots in the backup directory",
		},
	)

	// Retention Metrics
	RetentionDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapkeep_retention_deletions_total",
			Help: "Snapshots removed by retention, by result",
		},
		[]string{"result"}, // "deleted", "failed"
	)

	RetentionReclaimedBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "snapkeep_retention_reclaimed_bytes_total",
			Help: "Bytes reclaimed by retention cleanup",
		},
	)

	// Restore Metrics
	RestoresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapkeep_restores_total",
			Help: "Total number of restore attempts by result",
		},
		[]string{"result"}, // "success", "aborted" (live untouched), "failed" (live modified)
	)

	RestoreDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "snapkeep_restore_duration_seconds",
			Help:    "Duration of successful restores in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapkeep_api_requests_total",
			Help: "Total number of admin API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "snapkeep_api_request_duration_seconds",
			Help:    "Duration of admin API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordBackup records a finished backup attempt
func RecordBackup(trigger string, duration time.Duration, sizeBytes int64, err error) {
	if err != nil {
		BackupsTotal.WithLabelValues(trigger, "failure").Inc()
		return
	}
	BackupsTotal.WithLabelValues(trigger, "success").Inc()
	BackupDuration.WithLabelValues(trigger).Observe(duration.Seconds())
	BackupLastSuccess.Set(float64(time.Now().Unix()))
	BackupLastSize.Set(float64(sizeBytes))
}

// RecordBackupDisabled records a scheduled trigger refused because backups are disabled
func RecordBackupDisabled(trigger string) {
	BackupsTotal.WithLabelValues(trigger, "disabled").Inc()
}

// RecordRetention records the outcome of one cleanup pass
func RecordRetention(deleted, failed int, reclaimedBytes int64) {
	if deleted > 0 {
		RetentionDeleted.WithLabelValues("deleted").Add(float64(deleted))
	}
	if failed > 0 {
		RetentionDeleted.WithLabelValues("failed").Add(float64(failed))
	}
	if reclaimedBytes > 0 {
		RetentionReclaimedBytes.Add(float64(reclaimedBytes))
	}
}

// UpdateSnapshotInventory sets the snapshot count and size gauges
func UpdateSnapshotInventory(count int, totalBytes int64) {
	SnapshotCount.Set(float64(count))
	SnapshotBytes.Set(float64(totalBytes))
}

// RecordRestore records a restore attempt. liveModified distinguishes a
// failure that left the live file untouched from one that did not.
func RecordRestore(duration time.Duration, err error, liveModified bool) {
	switch {
	case err == nil:
		RestoresTotal.WithLabelValues("success").Inc()
		RestoreDuration.Observe(duration.Seconds())
	case liveModified:
		RestoresTotal.WithLabelValues("failed").Inc()
	default:
		RestoresTotal.WithLabelValues("aborted").Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

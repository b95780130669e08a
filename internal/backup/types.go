// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

package backup

import (
	"fmt"
	"strings"
	"time"
)

// Snapshot is one finished backup file in the snapshot directory.
// Snapshots are never modified after the copier renames them into place.
type Snapshot struct {
	Filename  string    `json:"filename"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"date"`
	SizeBytes int64     `json:"size"`
	SizeMB    float64   `json:"size_mb"`
}

func newSnapshot(filename, path string, createdAt time.Time, size int64) Snapshot {
	return Snapshot{
		Filename:  filename,
		Path:      path,
		CreatedAt: createdAt,
		SizeBytes: size,
		SizeMB:    float64(size) / (1024 * 1024),
	}
}

// Schedule selects the recurring backup cadence.
type Schedule string

const (
	// ScheduleHourly fires at minute 0 of every hour
	ScheduleHourly Schedule = "hourly"

	// ScheduleDaily fires once a day at the configured hour (default 02:00)
	ScheduleDaily Schedule = "daily"

	// ScheduleWeekly fires once a week on the configured weekday and hour
	// (default Sunday 02:00)
	ScheduleWeekly Schedule = "weekly"
)

// ParseSchedule converts a configuration string to a Schedule.
func ParseSchedule(s string) (Schedule, error) {
	switch Schedule(strings.ToLower(strings.TrimSpace(s))) {
	case ScheduleHourly:
		return ScheduleHourly, nil
	case ScheduleDaily, "":
		return ScheduleDaily, nil
	case ScheduleWeekly:
		return ScheduleWeekly, nil
	default:
		return "", fmt.Errorf("unknown backup schedule %q (want hourly, daily or weekly)", s)
	}
}

// Trigger records what started a backup.
type Trigger string

const (
	TriggerManual    Trigger = "manual"
	TriggerScheduled Trigger = "scheduled"
	TriggerStartup   Trigger = "startup"
)

// RetentionResult summarizes one cleanup pass.
type RetentionResult struct {
	Deleted      []Snapshot `json:"deleted"`
	Failed       []string   `json:"failed,omitempty"`
	DeletedBytes int64      `json:"deleted_bytes"`
	Kept         int        `json:"kept"`
}

// RetentionPreview shows what a cleanup pass would do without deleting.
type RetentionPreview struct {
	RetentionDays int        `json:"retention_days"`
	WouldDelete   []Snapshot `json:"would_delete"`
	WouldKeep     []Snapshot `json:"would_keep"`
	ReclaimBytes  int64      `json:"reclaim_bytes"`
}

// RestoreResult describes a restore that completed or got far enough to
// produce a safety copy.
type RestoreResult struct {
	Snapshot       Snapshot      `json:"snapshot"`
	LivePath       string        `json:"live_path"`
	SafetyCopyPath string        `json:"safety_copy_path,omitempty"`
	RestoredBytes  int64         `json:"restored_bytes"`
	Duration       time.Duration `json:"duration"`
	Warnings       []string      `json:"warnings,omitempty"`
}

// Status is a point-in-time view of the manager.
type Status struct {
	Enabled        bool      `json:"enabled"`
	Schedule       Schedule  `json:"schedule"`
	SchedulerState string    `json:"scheduler_state"`
	NextRun        time.Time `json:"next_run,omitempty"`
	RetentionDays  int       `json:"retention_days"`
	BackupDir      string    `json:"backup_dir"`
	SnapshotCount  int       `json:"snapshot_count"`
	TotalBytes     int64     `json:"total_bytes"`
	LastBackup     *Snapshot `json:"last_backup,omitempty"`
	LastError      string    `json:"last_error,omitempty"`
	LastErrorAt    time.Time `json:"last_error_at,omitempty"`
}

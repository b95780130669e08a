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

// DefaultPrefix is the snapshot filename prefix used when none is configured.
const DefaultPrefix = "snapkeep_backup"

// Config holds all backup-related configuration
type Config struct {
	// Enabled gates scheduled backups. Manual backups run regardless.
	Enabled bool

	// DatabasePath is the live SQLite file.
	DatabasePath string

	// BackupDir is the snapshot directory.
	BackupDir string

	// Prefix is the fixed filename prefix of every snapshot.
	Prefix string

	// RetentionDays is the age in whole days after which a snapshot may be
	// pruned. Zero prunes everything older than today.
	RetentionDays int

	// Schedule is the recurring cadence.
	Schedule Schedule

	// Hour is the hour of day (0-23) for daily and weekly schedules.
	Hour int

	// Weekday is the day for the weekly schedule.
	Weekday time.Weekday

	// RunOnStart queues one extra backup StartupDelay after Start.
	RunOnStart bool

	// StartupDelay is the delay for the startup backup.
	StartupDelay time.Duration

	// Location is the time zone used to name snapshots, evaluate cron
	// expressions and compare retention days. Nil means time.Local.
	Location *time.Location
}

// DefaultConfig returns the default backup configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		BackupDir:     "backups",
		Prefix:        DefaultPrefix,
		RetentionDays: 30,
		Schedule:      ScheduleDaily,
		Hour:          2,
		Weekday:       time.Sunday,
		RunOnStart:    true,
		StartupDelay:  10 * time.Second,
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database path is required")
	}
	if strings.TrimSpace(c.BackupDir) == "" {
		return fmt.Errorf("BACKUP_DIR is required")
	}
	if c.Prefix == "" {
		return fmt.Errorf("BACKUP_PREFIX must not be empty")
	}
	if strings.ContainsAny(c.Prefix, `/\`) {
		return fmt.Errorf("BACKUP_PREFIX must not contain path separators, got %q", c.Prefix)
	}
	if c.RetentionDays < 0 {
		return fmt.Errorf("BACKUP_RETENTION_DAYS must be >= 0, got %d", c.RetentionDays)
	}
	if _, err := ParseSchedule(string(c.Schedule)); err != nil {
		return fmt.Errorf("BACKUP_SCHEDULE: %w", err)
	}
	if c.Hour < 0 || c.Hour > 23 {
		return fmt.Errorf("BACKUP_HOUR must be between 0 and 23, got %d", c.Hour)
	}
	if c.Weekday < time.Sunday || c.Weekday > time.Saturday {
		return fmt.Errorf("BACKUP_WEEKDAY must be between 0 (Sunday) and 6 (Saturday), got %d", c.Weekday)
	}
	if c.StartupDelay < 0 {
		return fmt.Errorf("BACKUP_STARTUP_DELAY must not be negative, got %v", c.StartupDelay)
	}
	return nil
}

func (c *Config) location() *time.Location {
	if c.Location != nil {
		return c.Location
	}
	return time.Local
}

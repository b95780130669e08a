// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/snapkeep/internal/backup"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables, in that order of precedence.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Backup   BackupConfig   `koanf:"backup"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DatabaseConfig points at the live SQLite file being protected
type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// BackupConfig holds the snapshot, schedule and retention settings
type BackupConfig struct {
	Enabled       bool          `koanf:"enabled"`
	Dir           string        `koanf:"dir"`
	Prefix        string        `koanf:"prefix"`
	RetentionDays int           `koanf:"retention_days"`
	Schedule      string        `koanf:"schedule"`
	Hour          int           `koanf:"hour"`
	Weekday       string        `koanf:"weekday"` // 0-6 or an English day name
	RunOnStart    bool          `koanf:"run_on_start"`
	StartupDelay  time.Duration `koanf:"startup_delay"`
	Timezone      string        `koanf:"timezone"` // IANA name; empty means the host zone
}

// ServerConfig holds the admin HTTP server settings
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// SecurityConfig holds admin API access controls
type SecurityConfig struct {
	APIToken          string        `koanf:"api_token"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ToBackupConfig converts the loaded settings into the backup package's
// configuration. It resolves the timezone and weekday names.
func (c *Config) ToBackupConfig() (backup.Config, error) {
	schedule, err := backup.ParseSchedule(c.Backup.Schedule)
	if err != nil {
		return backup.Config{}, fmt.Errorf("BACKUP_SCHEDULE: %w", err)
	}

	weekday, err := ParseWeekday(c.Backup.Weekday)
	if err != nil {
		return backup.Config{}, fmt.Errorf("BACKUP_WEEKDAY: %w", err)
	}

	var loc *time.Location
	if c.Backup.Timezone != "" {
		loc, err = time.LoadLocation(c.Backup.Timezone)
		if err != nil {
			return backup.Config{}, fmt.Errorf("BACKUP_TIMEZONE: %w", err)
		}
	}

	return backup.Config{
		Enabled:       c.Backup.Enabled,
		DatabasePath:  c.Database.Path,
		BackupDir:     c.Backup.Dir,
		Prefix:        c.Backup.Prefix,
		RetentionDays: c.Backup.RetentionDays,
		Schedule:      schedule,
		Hour:          c.Backup.Hour,
		Weekday:       weekday,
		RunOnStart:    c.Backup.RunOnStart,
		StartupDelay:  c.Backup.StartupDelay,
		Location:      loc,
	}, nil
}

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// ParseWeekday accepts 0-6 (Sunday = 0) or an English day name. Empty means Sunday.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return time.Sunday, nil
	}
	if d, ok := weekdayNames[s]; ok {
		return d, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 6 {
		return 0, fmt.Errorf("invalid weekday %q (want 0-6 or a day name)", s)
	}
	return time.Weekday(n), nil
}

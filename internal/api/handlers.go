// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

package api

import (
	"context"
	"io"
	"time"

	"github.com/tomtom215/snapkeep/internal/backup"
)

// BackupManager is the subset of *backup.Manager the handlers use.
type BackupManager interface {
	CreateBackup(ctx context.Context, manual bool) (*backup.Snapshot, error)
	ListBackups() ([]backup.Snapshot, error)
	OpenBackup(filename string) (io.ReadCloser, backup.Snapshot, error)
	RestoreBackup(ctx context.Context, filename string) (*backup.RestoreResult, error)
	Status() (*backup.Status, error)
	PreviewRetention() (*backup.RetentionPreview, error)
	ApplyRetention(ctx context.Context) (*backup.RetentionResult, error)
}

// Handler serves the admin API.
type Handler struct {
	backupManager BackupManager
	version       string
	startTime     time.Time
}

// NewHandler creates a handler. bm may be nil, in which case backup routes
// answer 503 BACKUP_DISABLED.
func NewHandler(bm BackupManager, version string) *Handler {
	return &Handler{
		backupManager: bm,
		version:       version,
		startTime:     time.Now(),
	}
}

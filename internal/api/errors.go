// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/snapkeep/internal/backup"
)

// Error codes returned in APIError.Code.
const (
	CodeBackupDisabled     = "BACKUP_DISABLED"
	CodeBackupFailed       = "BACKUP_FAILED"
	CodeSourceNotFound     = "SOURCE_NOT_FOUND"
	CodeSnapshotNotFound   = "SNAPSHOT_NOT_FOUND"
	CodeSafetyCopyFailed   = "SAFETY_COPY_FAILED"
	CodeRestoreFailed      = "RESTORE_FAILED"
	CodeDirectoryUnavail   = "BACKUP_DIR_UNAVAILABLE"
	CodeRetentionFailed    = "RETENTION_FAILED"
	CodeInvalidRequestBody = "INVALID_REQUEST"
)

// classifyBackupError maps backup errors to an HTTP status and error code.
// fallback is the code for errors with no more specific mapping.
func classifyBackupError(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, backup.ErrDisabled):
		return http.StatusServiceUnavailable, CodeBackupDisabled
	case errors.Is(err, backup.ErrSnapshotNotFound):
		return http.StatusNotFound, CodeSnapshotNotFound
	case errors.Is(err, backup.ErrSourceNotFound):
		return http.StatusInternalServerError, CodeSourceNotFound
	case errors.Is(err, backup.ErrSafetyCopyFailed):
		return http.StatusInternalServerError, CodeSafetyCopyFailed
	case errors.Is(err, backup.ErrDirectoryUnavailable):
		return http.StatusServiceUnavailable, CodeDirectoryUnavail
	default:
		return http.StatusInternalServerError, fallback
	}
}

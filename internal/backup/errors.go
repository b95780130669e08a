// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

package backup

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceNotFound is returned when the live database file does not exist.
	ErrSourceNotFound = errors.New("source database not found")

	// ErrIntegrityCheckFailed is returned when a copy is missing, empty or
	// fails SQLite's quick_check.
	ErrIntegrityCheckFailed = errors.New("backup integrity check failed")

	// ErrCopyFailed is returned for I/O or engine errors during a copy.
	ErrCopyFailed = errors.New("backup copy failed")

	// ErrSnapshotNotFound is returned when a requested snapshot is missing,
	// empty or not a snapshot name at all.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrSafetyCopyFailed is returned when the pre-restore safety copy could
	// not be written. The live file is untouched when this is returned.
	ErrSafetyCopyFailed = errors.New("safety copy failed")

	// ErrDeleteFailed is returned when a snapshot file cannot be removed.
	ErrDeleteFailed = errors.New("snapshot delete failed")

	// ErrDirectoryUnavailable is returned when the snapshot directory cannot
	// be created or read.
	ErrDirectoryUnavailable = errors.New("backup directory unavailable")

	// ErrDisabled is returned for non-manual backups while backups are disabled.
	ErrDisabled = errors.New("backups are disabled")
)

// RestoreStage identifies the step a restore failed in.
type RestoreStage string

const (
	StageValidate   RestoreStage = "validate"
	StageSafetyCopy RestoreStage = "safety_copy"
	StagePrepare    RestoreStage = "prepare"
	StageOverwrite  RestoreStage = "overwrite"
	StageCleanup    RestoreStage = "cleanup"
	StageVerify     RestoreStage = "verify"
)

// RestoreError reports a failed restore.
//
// LiveModified is false when the live file is byte-identical to its state
// before the restore started, and true when the live file was already
// replaced (or may have been) when the failure happened. In the latter case
// the safety copy at SafetyCopyPath is the recovery point.
type RestoreError struct {
	Stage          RestoreStage
	LiveModified   bool
	SafetyCopyPath string
	Err            error
}

func (e *RestoreError) Error() string {
	state := "live database untouched"
	if e.LiveModified {
		state = "live database modified"
	}
	return fmt.Sprintf("restore failed at %s (%s): %v", e.Stage, state, e.Err)
}

func (e *RestoreError) Unwrap() error {
	return e.Err
}

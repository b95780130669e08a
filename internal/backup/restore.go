// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

/*
restore.go - Restore Coordinator

Restore replaces the live database with a snapshot without ever leaving the
pre-restore state unrecoverable or the live path half written.

Restore Sequence:
 1. validate     snapshot exists and is non-empty          (live untouched)
 2. safety_copy  live file -> <stem>_before_restore_<ts>.db (live untouched)
 3. prepare      host hook, e.g. close database handles     (live untouched)
 4. overwrite    snapshot -> temp file in live dir, fsync, rename over live
 5. cleanup      drop stale -wal/-shm/-journal beside live  (live replaced)
 6. verify       live exists and is non-empty               (live replaced)

Steps 1-4 fail with RestoreError.LiveModified == false: the rename in step 4
is the single point where the live path switches from old to new content.
Failures in 5-6 report LiveModified == true so the operator knows to look at
the safety copy.

The safety copy is taken with the online backup API so WAL content is
included. Only when SQLite reports the live file itself as damaged (not a
database, corrupt, failed quick_check) is a raw byte copy taken instead, and
then the -wal and -journal files are copied beside it. Busy, locked and I/O
errors fail the restore with ErrSafetyCopyFailed.
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/tomtom215/snapkeep/internal/logging"
)

// BeforeOverwriteFunc runs after the safety copy and before the live file is
// replaced. Returning an error aborts the restore with the live file intact.
type BeforeOverwriteFunc func(ctx context.Context, snap Snapshot) error

// Restorer replaces the live database with a snapshot.
type Restorer struct {
	livePath        string
	namer           Namer
	copier          *Copier
	now             func() time.Time
	beforeOverwrite BeforeOverwriteFunc
}

// NewRestorer creates a restorer for livePath.
func NewRestorer(livePath string, namer Namer, copier *Copier) *Restorer {
	return &Restorer{
		livePath: livePath,
		namer:    namer,
		copier:   copier,
		now:      time.Now,
	}
}

// SetBeforeOverwrite installs the pre-overwrite hook.
func (r *Restorer) SetBeforeOverwrite(fn BeforeOverwriteFunc) {
	r.beforeOverwrite = fn
}

// Restore replaces the live file with snap. See the file comment for the
// ordering and failure guarantees.
func (r *Restorer) Restore(ctx context.Context, snap Snapshot) (*RestoreResult, error) {
	start := r.now()
	result := &RestoreResult{Snapshot: snap, LivePath: r.livePath}

	size, err := fileSize(snap.Path)
	if err != nil || size == 0 {
		if err == nil {
			err = fmt.Errorf("%s is empty", snap.Filename)
		}
		return nil, &RestoreError{Stage: StageValidate, Err: fmt.Errorf("%w: %w", ErrSnapshotNotFound, err)}
	}

	safetyPath, warning, err := r.writeSafetyCopy(ctx, start)
	if err != nil {
		return nil, &RestoreError{Stage: StageSafetyCopy, Err: err}
	}
	result.SafetyCopyPath = safetyPath
	if warning != "" {
		result.Warnings = append(result.Warnings, warning)
	}

	if r.beforeOverwrite != nil {
		if err := r.beforeOverwrite(ctx, snap); err != nil {
			return result, &RestoreError{Stage: StagePrepare, SafetyCopyPath: safetyPath, Err: err}
		}
	}

	restored, err := r.overwrite(ctx, snap.Path)
	if err != nil {
		return result, &RestoreError{Stage: StageOverwrite, SafetyCopyPath: safetyPath, Err: err}
	}

	// From here on the live path holds the snapshot's bytes.
	if err := removeSidecars(r.livePath); err != nil {
		return result, &RestoreError{Stage: StageCleanup, LiveModified: true, SafetyCopyPath: safetyPath, Err: err}
	}
	if err := syncDir(filepath.Dir(r.livePath)); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("sync live directory: %v", err))
	}

	liveSize, err := fileSize(r.livePath)
	if err == nil && liveSize == 0 {
		err = errors.New("restored database is empty")
	}
	if err != nil {
		return result, &RestoreError{Stage: StageVerify, LiveModified: true, SafetyCopyPath: safetyPath, Err: err}
	}
	if err := quickCheck(ctx, r.livePath); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("post-restore check: %v", err))
	}

	result.RestoredBytes = restored
	result.Duration = r.now().Sub(start)
	return result, nil
}

// writeSafetyCopy copies the current live file beside itself. It returns an
// empty path when there is no live file to protect.
func (r *Restorer) writeSafetyCopy(ctx context.Context, at time.Time) (path, warning string, err error) {
	if _, err := fileSize(r.livePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logging.Warn().Str("live_path", r.livePath).Msg("Live database missing, restoring without safety copy")
			return "", "live database did not exist, no safety copy taken", nil
		}
		return "", "", fmt.Errorf("%w: %w", ErrSafetyCopyFailed, err)
	}

	path = r.namer.SafetyCopyPath(r.livePath, at)
	if _, err := os.Lstat(path); err == nil {
		return "", "", fmt.Errorf("%w: %s already exists", ErrSafetyCopyFailed, filepath.Base(path))
	}

	if _, copyErr := r.copier.Create(ctx, r.livePath, path); copyErr != nil {
		if !isUnreadable(copyErr) {
			return "", "", fmt.Errorf("%w: %w", ErrSafetyCopyFailed, copyErr)
		}
		logging.Warn().Err(copyErr).Str("live_path", r.livePath).Msg("Live database unreadable, falling back to raw copy")
		if err := rawCopyWithSidecars(ctx, r.livePath, path); err != nil {
			return "", "", fmt.Errorf("%w: %w", ErrSafetyCopyFailed, errors.Join(copyErr, err))
		}
		warning = fmt.Sprintf("safety copy taken as raw bytes: %v", copyErr)
	}

	logging.Info().Str("safety_copy", path).Msg("Safety copy created")
	return path, warning, nil
}

// overwrite copies src into a temp file beside the live file and renames it
// over the live path. The live path is untouched unless the rename succeeds.
func (r *Restorer) overwrite(ctx context.Context, src string) (int64, error) {
	dir := filepath.Dir(r.livePath)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.livePath)+".restore-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	renamed := false
	defer func() {
		if !renamed {
			_ = removeIfExists(tmpPath)
		}
	}()

	n, err := copyFileSync(src, tmp)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, fmt.Errorf("copy snapshot: %w", err)
	}

	if info, err := os.Stat(r.livePath); err == nil {
		_ = os.Chmod(tmpPath, info.Mode().Perm())
	}

	if err := renameWithRetry(ctx, tmpPath, r.livePath); err != nil {
		return 0, err
	}
	renamed = true
	return n, nil
}

// rawCopyWithSidecars copies src and any -wal/-journal beside it to dst, so
// committed transactions still held in the WAL survive the restore's
// sidecar cleanup. On failure nothing is left at dst.
func rawCopyWithSidecars(ctx context.Context, src, dst string) error {
	if err := rawCopy(ctx, src, dst); err != nil {
		return err
	}
	for _, suffix := range []string{"-wal", "-journal"} {
		if _, err := os.Lstat(src + suffix); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := rawCopy(ctx, src+suffix, dst+suffix); err != nil {
			_ = removeIfExists(dst)
			_ = removeSidecars(dst)
			return fmt.Errorf("copy %s: %w", suffix, err)
		}
	}
	return nil
}

// rawCopy writes a byte-for-byte copy of src to dst via a temp file.
func rawCopy(ctx context.Context, src, dst string) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	_, err = copyFileSync(src, tmp)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = renameWithRetry(ctx, tmpPath, dst)
	}
	if err != nil {
		_ = removeIfExists(tmpPath)
		return err
	}
	return nil
}

// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

const (
	maxFSRetries   = 5
	fsRetryBackoff = 50 * time.Millisecond
)

// sqliteSidecars are the files SQLite keeps next to a database. A stale WAL
// beside a replaced database would be replayed into it on next open.
var sqliteSidecars = []string{"-wal", "-shm", "-journal"}

// isTransient reports errors worth retrying on local and network filesystems.
func isTransient(err error) bool {
	return errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EBUSY) ||
		errors.Is(err, syscall.ETIMEDOUT)
}

// retryFS runs fn with exponential backoff while it fails transiently.
func retryFS(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxFSRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isTransient(lastErr) {
			return fmt.Errorf("%s: %w", op, lastErr)
		}
		if attempt < maxFSRetries {
			time.Sleep(fsRetryBackoff * time.Duration(1<<(attempt-1)))
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", op, maxFSRetries, lastErr)
}

func renameWithRetry(ctx context.Context, oldPath, newPath string) error {
	return retryFS(ctx, "rename", func() error {
		return os.Rename(oldPath, newPath)
	})
}

// copyFileSync copies src into the already created dst and fsyncs it.
//
//nolint:gosec // G304: paths come from the snapshot store and configuration
func copyFileSync(src string, dst *os.File) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	n, err := io.Copy(dst, in)
	if err != nil {
		return n, err
	}
	return n, dst.Sync()
}

// syncDir fsyncs a directory so a rename inside it is durable.
// Filesystems that do not support fsync on directories are ignored.
func syncDir(dir string) error {
	d, err := os.Open(dir) //nolint:gosec // G304: directory of a configured path
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Sync(); err != nil && !errors.Is(err, syscall.EINVAL) && !errors.Is(err, syscall.ENOTSUP) {
		return err
	}
	return nil
}

// removeIfExists removes path and treats a missing file as success.
func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// removeSidecars drops SQLite WAL/SHM/journal files left beside dbPath.
func removeSidecars(dbPath string) error {
	var errs []error
	for _, suffix := range sqliteSidecars {
		if err := removeIfExists(dbPath + suffix); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// fileSize returns the size of a regular file.
func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("%s is not a regular file", filepath.Base(path))
	}
	return info.Size(), nil
}

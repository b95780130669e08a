// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

/*
copier.go - Consistent Snapshot Copies

The copier never reads the live file byte by byte. It opens a connection to
the live database and drives SQLite's online backup API (sqlite3_backup_init /
step / finish) through the modernc.org/sqlite driver, so pages are copied
under SQLite's own locking and a concurrent writer can never produce a torn
copy. All pages are copied in a single step, so a steady stream of writes
from other connections cannot keep restarting the copy.

Copy Sequence:
 1. Stat the source (missing -> ErrSourceNotFound)
 2. Online backup into <destination>.partial-<uuid>
 3. Verify: non-empty and PRAGMA quick_check == "ok"
 4. fsync, rename the partial file to the destination, fsync the directory

Any failure removes the partial file. Partial names never match the snapshot
pattern, so listings and retention cannot see an in-flight copy.
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/tomtom215/snapkeep/internal/logging"
)

const (
	// pagesPerStep of -1 copies every page in one sqlite3_backup_step call.
	pagesPerStep = -1

	// busyPause and maxBusyRetries bound waiting on a locked source.
	busyPause      = 50 * time.Millisecond
	maxBusyRetries = 200

	partialMarker = ".partial-"
)

// onlineBackuper is implemented by modernc.org/sqlite driver connections.
type onlineBackuper interface {
	NewBackup(dstURI string) (*sqlite.Backup, error)
}

// Copier produces page-consistent copies of a live SQLite database.
type Copier struct {
	namer Namer

	// backupFn and verifyFn are swapped in tests to inject failures.
	backupFn func(ctx context.Context, src, dst string) error
	verifyFn func(ctx context.Context, path string) error
}

// NewCopier creates a copier. The namer is used to read the snapshot time
// back from destination filenames.
func NewCopier(namer Namer) *Copier {
	return &Copier{
		namer:    namer,
		backupFn: onlineBackup,
		verifyFn: quickCheck,
	}
}

// Create copies sourcePath into destinationPath.
//
// On success the destination exists, is non-empty and passed quick_check.
// On failure nothing is left at destinationPath or in its partial file.
func (c *Copier) Create(ctx context.Context, sourcePath, destinationPath string) (*Snapshot, error) {
	if _, err := fileSize(sourcePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, sourcePath)
		}
		return nil, fmt.Errorf("%w: stat source: %w", ErrCopyFailed, err)
	}

	partial := destinationPath + partialMarker + uuid.New().String()
	committed := false
	defer func() {
		if committed {
			return
		}
		if err := removeIfExists(partial); err != nil {
			logging.Warn().Err(err).Str("path", partial).Msg("Failed to remove partial backup file")
		}
		_ = removeSidecars(partial)
	}()

	if err := c.backupFn(ctx, sourcePath, partial); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCopyFailed, err)
	}

	size, err := fileSize(partial)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: copy produced no file", ErrIntegrityCheckFailed)
	case err != nil:
		return nil, fmt.Errorf("%w: stat copy: %w", ErrCopyFailed, err)
	case size == 0:
		return nil, fmt.Errorf("%w: copy is empty", ErrIntegrityCheckFailed)
	}

	if err := c.verifyFn(ctx, partial); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIntegrityCheckFailed, err)
	}
	_ = removeSidecars(partial)

	if err := syncFile(partial); err != nil {
		return nil, fmt.Errorf("%w: sync copy: %w", ErrCopyFailed, err)
	}
	if err := renameWithRetry(ctx, partial, destinationPath); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCopyFailed, err)
	}
	committed = true

	if err := syncDir(filepath.Dir(destinationPath)); err != nil {
		logging.Warn().Err(err).Str("dir", filepath.Dir(destinationPath)).Msg("Failed to sync backup directory")
	}

	name := filepath.Base(destinationPath)
	createdAt, ok := c.namer.Parse(name)
	if !ok {
		createdAt = time.Now().Truncate(time.Second)
	}
	snap := newSnapshot(name, destinationPath, createdAt, size)
	return &snap, nil
}

// sourceDSN opens the live file read-write without create, so a vanished
// source fails instead of silently producing an empty database.
func sourceDSN(path string) string {
	return "file:" + filepath.ToSlash(path) + "?mode=rw&_pragma=busy_timeout(5000)"
}

// onlineBackup copies src to dst with sqlite3_backup_step, retrying while the
// source is locked.
func onlineBackup(ctx context.Context, src, dst string) error {
	db, err := sql.Open("sqlite", sourceDSN(src))
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer db.Close()

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("connect source: %w", err)
	}
	defer conn.Close()

	return conn.Raw(func(driverConn any) error {
		b, ok := driverConn.(onlineBackuper)
		if !ok {
			return fmt.Errorf("driver connection %T does not support online backup", driverConn)
		}

		bck, err := b.NewBackup(dst)
		if err != nil {
			return fmt.Errorf("init backup: %w", err)
		}

		busy := 0
		for {
			more, err := bck.Step(pagesPerStep)
			if err != nil {
				if isBusy(err) && busy < maxBusyRetries && ctx.Err() == nil {
					busy++
					time.Sleep(busyPause)
					continue
				}
				_ = bck.Finish()
				return fmt.Errorf("backup step: %w", err)
			}
			if !more {
				break
			}
			if err := ctx.Err(); err != nil {
				_ = bck.Finish()
				return err
			}
		}
		return bck.Finish()
	})
}

func isBusy(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	switch serr.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return false
}

// isUnreadable reports copy failures caused by the source file itself being
// damaged, as opposed to locking or I/O trouble.
func isUnreadable(err error) bool {
	if errors.Is(err, ErrIntegrityCheckFailed) {
		return true
	}
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	switch serr.Code() & 0xff {
	case sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_CORRUPT:
		return true
	}
	return false
}

// quickCheck runs PRAGMA quick_check against a finished copy. The copy is
// opened read-write because a WAL-mode header would otherwise need sidecar
// files that a read-only connection may not create.
func quickCheck(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(path)+"?mode=rw")
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, "PRAGMA quick_check")
	if err != nil {
		return fmt.Errorf("quick_check: %w", err)
	}
	defer rows.Close()

	var problems []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return fmt.Errorf("quick_check: %w", err)
		}
		if line != "ok" {
			problems = append(problems, line)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("quick_check: %w", err)
	}
	if len(problems) > 0 {
		return fmt.Errorf("quick_check: %s", strings.Join(problems, "; "))
	}
	return nil
}

func syncFile(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0) //nolint:gosec // G304: partial file created by this package
	if err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

package backup

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tomtom215/snapkeep/internal/logging"
)

// Store owns the snapshot directory. It is the only component that lists or
// removes files there; the copier only ever adds finished files by rename.
type Store struct {
	dir   string
	namer Namer
}

// NewStore creates a store over dir.
func NewStore(dir string, namer Namer) *Store {
	return &Store{dir: dir, namer: namer}
}

// Dir returns the snapshot directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the absolute location a snapshot with this filename would have.
func (s *Store) Path(filename string) string {
	return filepath.Join(s.dir, filename)
}

// EnsureDirectory creates the snapshot directory if needed. Safe to call repeatedly.
func (s *Store) EnsureDirectory() error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDirectoryUnavailable, s.dir, err)
	}
	return nil
}

// List returns all snapshots, newest first. Files whose names do not parse
// are skipped with a warning; partial files are skipped silently.
func (s *Store) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDirectoryUnavailable, s.dir, err)
	}

	snaps := make([]Snapshot, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.Contains(name, partialMarker) {
			continue
		}

		createdAt, ok := s.namer.Parse(name)
		if !ok {
			logging.Warn().Str("filename", name).Str("dir", s.dir).Msg("Skipping file with unrecognized snapshot name")
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			logging.Warn().Err(err).Str("filename", name).Msg("Skipping unreadable snapshot")
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		snaps = append(snaps, newSnapshot(name, s.Path(name), createdAt, info.Size()))
	}

	sortNewestFirst(snaps)
	return snaps, nil
}

// Get resolves a snapshot by bare filename. Names with path components,
// names that are not snapshot names, missing files and empty files all
// return ErrSnapshotNotFound.
func (s *Store) Get(filename string) (Snapshot, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.ContainsAny(filename, `/\`) {
		return Snapshot{}, fmt.Errorf("%w: invalid filename %q", ErrSnapshotNotFound, filename)
	}

	createdAt, ok := s.namer.Parse(filename)
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %q is not a snapshot name", ErrSnapshotNotFound, filename)
	}

	path := s.Path(filename)
	size, err := fileSize(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %s: %w", ErrSnapshotNotFound, filename, err)
	}
	if size == 0 {
		return Snapshot{}, fmt.Errorf("%w: %s is empty", ErrSnapshotNotFound, filename)
	}

	return newSnapshot(filename, path, createdAt, size), nil
}

// Open returns a reader over a snapshot's bytes. The caller closes it.
func (s *Store) Open(filename string) (io.ReadCloser, Snapshot, error) {
	snap, err := s.Get(filename)
	if err != nil {
		return nil, Snapshot{}, err
	}

	f, err := os.Open(snap.Path) //nolint:gosec // G304: path resolved by Get inside the snapshot directory
	if err != nil {
		return nil, Snapshot{}, fmt.Errorf("%w: %s: %w", ErrSnapshotNotFound, filename, err)
	}
	return f, snap, nil
}

// Delete removes one snapshot file. A file that is already gone is reported
// as ErrDeleteFailed so callers can count it, but it does not stop batches.
func (s *Store) Delete(snap Snapshot) error {
	if _, ok := s.namer.Parse(snap.Filename); !ok {
		return fmt.Errorf("%w: %q is not a snapshot name", ErrDeleteFailed, snap.Filename)
	}
	if err := os.Remove(s.Path(snap.Filename)); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDeleteFailed, snap.Filename, err)
	}
	return nil
}

// DeleteAll removes every given snapshot, continuing past individual failures.
func (s *Store) DeleteAll(snaps []Snapshot) RetentionResult {
	result := RetentionResult{Deleted: []Snapshot{}}
	for _, snap := range snaps {
		if err := s.Delete(snap); err != nil {
			logging.Warn().Err(err).Str("filename", snap.Filename).Msg("Failed to delete expired snapshot")
			result.Failed = append(result.Failed, snap.Filename)
			continue
		}
		logging.Debug().Str("filename", snap.Filename).Msg("Deleted expired snapshot")
		result.Deleted = append(result.Deleted, snap)
		result.DeletedBytes += snap.SizeBytes
	}
	return result
}

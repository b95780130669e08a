// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

package backup

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"
)

// testEnv holds the common test environment setup
type testEnv struct {
	dir       string
	backupDir string
	dbPath    string
	namer     Namer
}

// newTestEnv creates a temp directory with a live database holding marker.
func newTestEnv(t *testing.T, marker string) *testEnv {
	t.Helper()

	dir := t.TempDir()
	env := &testEnv{
		dir:       dir,
		backupDir: filepath.Join(dir, "backups"),
		dbPath:    filepath.Join(dir, "app.db"),
		namer:     NewNamer(DefaultPrefix, time.UTC),
	}
	writeMarker(t, env.dbPath, marker)
	return env
}

// newTestConfig returns a valid manager config for the environment.
func (e *testEnv) newTestConfig() Config {
	cfg := DefaultConfig()
	cfg.DatabasePath = e.dbPath
	cfg.BackupDir = e.backupDir
	cfg.Location = time.UTC
	cfg.RunOnStart = false
	return cfg
}

// newTestManager creates a manager whose clock advances one second per call.
func (e *testEnv) newTestManager(t *testing.T, cfg Config) *Manager {
	t.Helper()
	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	m.now = steppingClock(time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC))
	t.Cleanup(m.Shutdown)
	return m
}

// steppingClock returns a clock starting at start that advances a second per read.
func steppingClock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		t := next
		next = next.Add(time.Second)
		return t
	}
}

// writeMarker creates or updates a one-row table holding marker.
func writeMarker(t *testing.T, path, marker string) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer db.Close()

	for _, stmt := range []string{
		"CREATE TABLE IF NOT EXISTS marker (v TEXT NOT NULL)",
		"DELETE FROM marker",
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}
	if _, err := db.Exec("INSERT INTO marker (v) VALUES (?)", marker); err != nil {
		t.Fatalf("insert marker: %v", err)
	}
}

// readMarker returns the marker stored in the database at path.
func readMarker(t *testing.T, path string) string {
	t.Helper()

	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(path)+"?mode=ro")
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer db.Close()

	var v string
	if err := db.QueryRow("SELECT v FROM marker").Scan(&v); err != nil {
		t.Fatalf("read marker from %s: %v", path, err)
	}
	return v
}

// writeFakeSnapshot writes arbitrary bytes under a snapshot name for t.
func writeFakeSnapshot(t *testing.T, dir string, namer Namer, at time.Time, size int) Snapshot {
	t.Helper()
	name := namer.Format(at)
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte{'x'}, size), 0o600); err != nil {
		t.Fatal(err)
	}
	return newSnapshot(name, path, at, int64(size))
}

// dirNames returns sorted entry names in dir containing substr.
func dirNames(t *testing.T, dir, substr string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read %s: %v", dir, err)
	}
	var names []string
	for _, e := range entries {
		if strings.Contains(e.Name(), substr) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

func filenames(snaps []Snapshot) []string {
	out := make([]string, len(snaps))
	for i, s := range snaps {
		out[i] = s.Filename
	}
	return out
}

// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

package main

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tomtom215/snapkeep/internal/backup"
)

func newCLIManager(t *testing.T) (*backup.Manager, backup.Config) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "app.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := db.Exec(`CREATE TABLE t (v TEXT); INSERT INTO t VALUES ('a')`); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	cfg := backup.DefaultConfig()
	cfg.DatabasePath = dbPath
	cfg.BackupDir = filepath.Join(dir, "backups")
	cfg.Location = time.UTC
	cfg.Enabled = false

	m, err := backup.NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(m.Shutdown)
	return m, cfg
}

func runCLI(t *testing.T, m *backup.Manager, args ...string) (string, error) {
	t.Helper()
	root := newRootCmdWith(func() (*backup.Manager, error) { return m, nil })
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestBackupAndList(t *testing.T) {
	m, cfg := newCLIManager(t)

	out, err := runCLI(t, m, "backup")
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	if !strings.HasPrefix(out, "created "+cfg.Prefix) {
		t.Errorf("backup output = %q", out)
	}

	out, err = runCLI(t, m, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "FILENAME") || !strings.Contains(out, cfg.Prefix) {
		t.Errorf("list output = %q", out)
	}

	out, err = runCLI(t, m, "list", "--json")
	if err != nil {
		t.Fatalf("list --json: %v", err)
	}
	if !strings.Contains(out, `"filename"`) {
		t.Errorf("list --json output = %q", out)
	}
}

func TestPruneDryRun(t *testing.T) {
	m, _ := newCLIManager(t)
	if _, err := runCLI(t, m, "backup"); err != nil {
		t.Fatalf("backup: %v", err)
	}

	out, err := runCLI(t, m, "prune", "--dry-run")
	if err != nil {
		t.Fatalf("prune --dry-run: %v", err)
	}
	if !strings.Contains(out, "0 to delete, 1 kept") {
		t.Errorf("prune output = %q", out)
	}
}

func TestRestoreRequiresConfirmation(t *testing.T) {
	m, _ := newCLIManager(t)

	_, err := runCLI(t, m, "restore", "snapkeep_backup_20260101_020000.db")
	if err == nil || !strings.Contains(err.Error(), "--yes") {
		t.Fatalf("restore without --yes: err = %v", err)
	}

	if _, err := runCLI(t, m, "restore"); err == nil {
		t.Error("restore without a filename should fail")
	}
}

func TestRestoreWithConfirmation(t *testing.T) {
	m, cfg := newCLIManager(t)
	if _, err := runCLI(t, m, "backup"); err != nil {
		t.Fatalf("backup: %v", err)
	}
	snaps, err := m.ListBackups()
	if err != nil || len(snaps) != 1 {
		t.Fatalf("ListBackups = %v, %v", snaps, err)
	}

	out, err := runCLI(t, m, "restore", snaps[0].Filename, "--yes")
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !strings.Contains(out, "restored "+snaps[0].Filename) {
		t.Errorf("restore output = %q", out)
	}
	if !strings.Contains(out, "_before_restore_") {
		t.Errorf("restore output should name the safety copy: %q", out)
	}
	if _, err := os.Stat(cfg.DatabasePath); err != nil {
		t.Errorf("live database missing after restore: %v", err)
	}
}

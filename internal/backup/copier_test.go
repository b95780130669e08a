// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

package backup

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestCopier_Create(t *testing.T) {
	env := newTestEnv(t, "alpha")
	if err := os.MkdirAll(env.backupDir, 0o750); err != nil {
		t.Fatal(err)
	}
	c := NewCopier(env.namer)

	at := time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC)
	dst := filepath.Join(env.backupDir, env.namer.Format(at))

	snap, err := c.Create(context.Background(), env.dbPath, dst)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if snap.Path != dst || snap.SizeBytes == 0 || !snap.CreatedAt.Equal(at) {
		t.Errorf("Create() = %+v", snap)
	}
	if got := readMarker(t, dst); got != "alpha" {
		t.Errorf("copy marker = %q, want alpha", got)
	}
	if leftovers := dirNames(t, env.backupDir, partialMarker); len(leftovers) != 0 {
		t.Errorf("partial files left behind: %v", leftovers)
	}
}

func TestCopier_SourceNotFound(t *testing.T) {
	dir := t.TempDir()
	c := NewCopier(NewNamer(DefaultPrefix, time.UTC))
	dst := filepath.Join(dir, "snapkeep_backup_20260301_020000.db")

	_, err := c.Create(context.Background(), filepath.Join(dir, "missing.db"), dst)
	if !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("Create() error = %v, want ErrSourceNotFound", err)
	}
	if names := dirNames(t, dir, ""); len(names) != 0 {
		t.Errorf("artifacts left behind: %v", names)
	}
}

func TestCopier_FailuresLeaveNoArtifact(t *testing.T) {
	tests := []struct {
		name     string
		backupFn func(ctx context.Context, src, dst string) error
		verifyFn func(ctx context.Context, path string) error
		wantErr  error
	}{
		{
			name: "copy fails midway",
			backupFn: func(_ context.Context, _, dst string) error {
				if err := os.WriteFile(dst, []byte("half a database"), 0o600); err != nil {
					return err
				}
				return errors.New("disk full")
			},
			wantErr: ErrCopyFailed,
		},
		{
			name: "copy produces nothing",
			backupFn: func(context.Context, string, string) error {
				return nil
			},
			wantErr: ErrIntegrityCheckFailed,
		},
		{
			name: "copy is empty",
			backupFn: func(_ context.Context, _, dst string) error {
				return os.WriteFile(dst, nil, 0o600)
			},
			wantErr: ErrIntegrityCheckFailed,
		},
		{
			name: "quick_check fails",
			verifyFn: func(context.Context, string) error {
				return errors.New("*** in database main ***")
			},
			wantErr: ErrIntegrityCheckFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "alpha")
			if err := os.MkdirAll(env.backupDir, 0o750); err != nil {
				t.Fatal(err)
			}
			c := NewCopier(env.namer)
			if tt.backupFn != nil {
				c.backupFn = tt.backupFn
			}
			if tt.verifyFn != nil {
				c.verifyFn = tt.verifyFn
			}

			dst := filepath.Join(env.backupDir, env.namer.Format(time.Now()))
			_, err := c.Create(context.Background(), env.dbPath, dst)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
			}
			if names := dirNames(t, env.backupDir, ""); len(names) != 0 {
				t.Errorf("artifacts left behind: %v", names)
			}
		})
	}
}

func TestCopier_CorruptCopyRejected(t *testing.T) {
	env := newTestEnv(t, "alpha")
	if err := os.MkdirAll(env.backupDir, 0o750); err != nil {
		t.Fatal(err)
	}
	c := NewCopier(env.namer)
	c.backupFn = func(_ context.Context, _, dst string) error {
		return os.WriteFile(dst, []byte("this is not an sqlite database file at all"), 0o600)
	}

	dst := filepath.Join(env.backupDir, env.namer.Format(time.Now()))
	if _, err := c.Create(context.Background(), env.dbPath, dst); !errors.Is(err, ErrIntegrityCheckFailed) {
		t.Fatalf("Create() error = %v, want ErrIntegrityCheckFailed", err)
	}
	if names := dirNames(t, env.backupDir, ""); len(names) != 0 {
		t.Errorf("artifacts left behind: %v", names)
	}
}

func TestCopier_CanceledContext(t *testing.T) {
	env := newTestEnv(t, "alpha")
	if err := os.MkdirAll(env.backupDir, 0o750); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dst := filepath.Join(env.backupDir, env.namer.Format(time.Now()))
	if _, err := NewCopier(env.namer).Create(ctx, env.dbPath, dst); err == nil {
		t.Fatal("Create() with canceled context should fail")
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Errorf("destination exists after canceled copy: %v", err)
	}
}

func TestCopier_ConcurrentWriter(t *testing.T) {
	env := newTestEnv(t, "alpha")
	if err := os.MkdirAll(env.backupDir, 0o750); err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(env.dbPath)+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if _, err := db.Exec("CREATE TABLE rows (n INTEGER, pad TEXT)"); err != nil {
		t.Fatal(err)
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			_, _ = db.Exec("INSERT INTO rows (n, pad) VALUES (?, ?)", i, "0123456789abcdef0123456789abcdef")
		}
	}()

	c := NewCopier(env.namer)
	for i := 0; i < 3; i++ {
		dst := filepath.Join(env.backupDir, env.namer.Format(time.Date(2026, 3, 1, 2, 0, i, 0, time.UTC)))
		if _, err := c.Create(context.Background(), env.dbPath, dst); err != nil {
			close(stop)
			wg.Wait()
			t.Fatalf("Create() under concurrent writes error = %v", err)
		}
		if err := quickCheck(context.Background(), dst); err != nil {
			t.Errorf("copy %d failed quick_check: %v", i, err)
		}
	}
	close(stop)
	wg.Wait()
}

// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

// Package backup provides online backup, retention and restore for a live
// SQLite database file.
//
// # Overview
//
// The package takes page-consistent snapshots of a database that other
// processes keep reading and writing, stores them under timestamped names,
// prunes them by age without ever removing the last recovery point, and
// restores any snapshot over the live file behind a safety copy.
//
// # Architecture
//
//	Namer      - <prefix>_<YYYYMMDD>_<HHMMSS>.db format/parse pair
//	Copier     - SQLite online backup API into a partial file, verified, renamed
//	Store      - owns the snapshot directory (list, get, delete, ensure)
//	Expired    - day-granular retention decision, newest snapshot always kept
//	Scheduler  - cron trigger (hourly, daily, weekly) plus a one-shot startup run
//	Restorer   - safety copy, hook, temp file + rename, verification
//	Manager    - composition root used by the HTTP API, the CLI and the supervisor
//
// # Usage
//
//	cfg := backup.DefaultConfig()
//	cfg.DatabasePath = "/data/app.db"
//
//	manager, err := backup.NewManager(cfg)
//	if err != nil {
//		return err
//	}
//	if err := manager.Start(ctx); err != nil {
//		return err
//	}
//	defer manager.Shutdown()
//
//	snap, err := manager.CreateBackup(ctx, true)
//	if err != nil {
//		logging.Error().Err(err).Msg("Manual backup failed")
//	}
//
//	result, err := manager.RestoreBackup(ctx, snap.Filename)
//	var rerr *backup.RestoreError
//	if errors.As(err, &rerr) && rerr.LiveModified {
//		// live file state is not trustworthy, use result.SafetyCopyPath
//	}
//
// # Filesystem Layout
//
// The snapshot directory only ever contains finished snapshots and, while a
// copy runs, a uniquely named partial file that never matches the snapshot
// pattern:
//
//	backups/app_backup_20260301_020000.db
//	backups/app_backup_20260302_020000.db
//	backups/app_backup_20260302_020000.db.partial-1f0c...
//
// Safety copies live beside the live file and are never listed or pruned:
//
//	/data/app_before_restore_20260302_101500.db
//
// # Error Handling
//
// Failures are reported through sentinel errors matched with errors.Is
// (ErrSourceNotFound, ErrIntegrityCheckFailed, ErrCopyFailed,
// ErrSnapshotNotFound, ErrSafetyCopyFailed, ErrDeleteFailed,
// ErrDirectoryUnavailable, ErrDisabled). Restore failures are wrapped in a
// *RestoreError carrying the failed stage and whether the live file was
// touched.
//
// # Thread Safety
//
// Manager, Store, Copier and Restorer are safe for concurrent use. Two backups
// may run at once; each writes its own partial file and the final rename is
// last-writer-wins when both land in the same second.
package backup

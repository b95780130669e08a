// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

/*
manager.go - Backup Manager

The Manager is the composition root of the backup core. It is constructed once
at process start and handed to whatever needs it (HTTP handlers, the CLI, the
supervisor service). There is no package-level instance.

Responsibilities:
  - Own process-lifetime configuration (enabled flag, paths, retention)
  - Own the scheduler's running/stopped state
  - Run backups: name, copy, record, then best-effort retention cleanup
  - Serialize restores against each other
  - Expose status for the admin API

Concurrency:
Backups are not serialized. A manual backup may run beside a scheduled one;
the copier shares no mutable state between calls and filenames differ by
timestamp. Two backups started in the same second resolve to the same file
and the later rename wins. Restores take restoreMu so only one restore runs
at a time.
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/snapkeep/internal/logging"
	"github.com/tomtom215/snapkeep/internal/metrics"
)

// Manager handles backup and restore operations
type Manager struct {
	cfg       Config
	namer     Namer
	store     *Store
	copier    *Copier
	restorer  *Restorer
	scheduler *Scheduler
	now       func() time.Time

	// Last outcome, for Status
	mu         sync.RWMutex
	lastErr    string
	lastErrAt  time.Time
	onComplete func(*Snapshot)

	restoreMu sync.Mutex

	// startupDone is set once the startup backup has fired, so a supervisor
	// restart of the scheduler does not queue another one.
	startupDone atomic.Bool
}

// NewManager validates cfg, creates the snapshot directory and returns a
// stopped manager.
func NewManager(cfg Config) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backup configuration: %w", err)
	}

	loc := cfg.location()
	namer := NewNamer(cfg.Prefix, loc)
	store := NewStore(cfg.BackupDir, namer)
	if err := store.EnsureDirectory(); err != nil {
		return nil, err
	}
	copier := NewCopier(namer)

	return &Manager{
		cfg:       cfg,
		namer:     namer,
		store:     store,
		copier:    copier,
		restorer:  NewRestorer(cfg.DatabasePath, namer, copier),
		scheduler: NewScheduler(loc),
		now:       func() time.Time { return time.Now().In(loc) },
	}, nil
}

// Config returns a copy of the manager's configuration.
func (m *Manager) Config() Config {
	return m.cfg
}

// Enabled reports whether scheduled backups are enabled.
func (m *Manager) Enabled() bool {
	return m.cfg.Enabled
}

// OnBackupComplete registers a callback run after every successful backup.
func (m *Manager) OnBackupComplete(fn func(*Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onComplete = fn
}

// OnBeforeRestore registers a hook run after the safety copy and before the
// live file is replaced. A host typically closes its database handles here.
func (m *Manager) OnBeforeRestore(fn BeforeOverwriteFunc) {
	m.restoreMu.Lock()
	defer m.restoreMu.Unlock()
	m.restorer.SetBeforeOverwrite(fn)
}

// Start begins scheduled backups. It is a no-op when backups are disabled or
// the scheduler already runs. ctx carries request-scoped values into ticks;
// cancelling it does not stop the scheduler, Shutdown does. The startup
// backup is queued on every Start until it has fired once.
func (m *Manager) Start(ctx context.Context) error {
	if !m.cfg.Enabled {
		logging.Info().Msg("Scheduled backups disabled")
		return nil
	}

	spec := ScheduleSpec{
		Schedule:     m.cfg.Schedule,
		Hour:         m.cfg.Hour,
		Weekday:      m.cfg.Weekday,
		RunOnStart:   m.cfg.RunOnStart && !m.startupDone.Load(),
		StartupDelay: m.cfg.StartupDelay,
	}
	base := context.WithoutCancel(ctx)
	return m.scheduler.Start(spec, func(trigger Trigger) {
		if trigger == TriggerStartup {
			m.startupDone.Store(true)
		}
		tickCtx := logging.ContextWithNewCorrelationID(base)
		if _, err := m.createBackup(tickCtx, trigger); err != nil {
			logging.Ctx(tickCtx).Error().Err(err).Str("trigger", string(trigger)).Msg("Scheduled backup failed")
		}
	})
}

// Shutdown stops the scheduler. It is idempotent and does not wait for an
// in-flight backup.
func (m *Manager) Shutdown() {
	m.scheduler.Stop()
}

// CreateBackup takes a snapshot of the live database. When backups are
// disabled only manual requests are honored; others return ErrDisabled.
func (m *Manager) CreateBackup(ctx context.Context, manual bool) (*Snapshot, error) {
	trigger := TriggerScheduled
	if manual {
		trigger = TriggerManual
	}
	if !manual && !m.cfg.Enabled {
		metrics.RecordBackupDisabled(string(trigger))
		return nil, ErrDisabled
	}
	return m.createBackup(ctx, trigger)
}

func (m *Manager) createBackup(ctx context.Context, trigger Trigger) (*Snapshot, error) {
	start := m.now()
	filename := m.namer.Format(start)
	log := logging.Ctx(ctx).With().Str("trigger", string(trigger)).Str("filename", filename).Logger()

	log.Info().Str("source", m.cfg.DatabasePath).Msg("Starting backup")

	snap, err := m.copier.Create(ctx, m.cfg.DatabasePath, m.store.Path(filename))
	duration := m.now().Sub(start)
	if err != nil {
		metrics.RecordBackup(string(trigger), duration, 0, err)
		m.recordError(err)
		log.Error().Err(err).Dur("duration", duration).Msg("Backup failed")
		return nil, err
	}

	metrics.RecordBackup(string(trigger), duration, snap.SizeBytes, nil)
	log.Info().
		Int64("size_bytes", snap.SizeBytes).
		Dur("duration", duration).
		Msg("Backup completed")

	m.mu.RLock()
	onComplete := m.onComplete
	m.mu.RUnlock()

	if onComplete != nil {
		onComplete(snap)
	}

	// Cleanup failures never fail the backup that triggered them.
	if _, err := m.ApplyRetention(ctx); err != nil {
		log.Warn().Err(err).Msg("Retention cleanup after backup failed")
	}

	return snap, nil
}

// ApplyRetention deletes expired snapshots. Individual delete failures are
// collected in the result, not returned as an error.
func (m *Manager) ApplyRetention(ctx context.Context) (*RetentionResult, error) {
	snaps, err := m.store.List()
	if err != nil {
		return nil, err
	}

	expired, kept := PlanRetention(snaps, m.localNow(), m.cfg.RetentionDays)
	result := m.store.DeleteAll(expired)
	result.Kept = len(kept)

	var keptBytes int64
	for _, s := range kept {
		keptBytes += s.SizeBytes
	}
	// Files that failed to delete are still on disk.
	for _, s := range expired {
		for _, name := range result.Failed {
			if s.Filename == name {
				keptBytes += s.SizeBytes
			}
		}
	}

	metrics.RecordRetention(len(result.Deleted), len(result.Failed), result.DeletedBytes)
	metrics.UpdateSnapshotInventory(len(kept)+len(result.Failed), keptBytes)

	if len(expired) > 0 {
		logging.Ctx(ctx).Info().
			Int("deleted", len(result.Deleted)).
			Int("failed", len(result.Failed)).
			Int("kept", result.Kept).
			Int64("reclaimed_bytes", result.DeletedBytes).
			Int("retention_days", m.cfg.RetentionDays).
			Msg("Retention cleanup completed")
	}
	return &result, nil
}

// PreviewRetention reports what ApplyRetention would delete right now.
func (m *Manager) PreviewRetention() (*RetentionPreview, error) {
	snaps, err := m.store.List()
	if err != nil {
		return nil, err
	}

	expired, kept := PlanRetention(snaps, m.localNow(), m.cfg.RetentionDays)
	preview := &RetentionPreview{
		RetentionDays: m.cfg.RetentionDays,
		WouldDelete:   expired,
		WouldKeep:     kept,
	}
	if preview.WouldDelete == nil {
		preview.WouldDelete = []Snapshot{}
	}
	if preview.WouldKeep == nil {
		preview.WouldKeep = []Snapshot{}
	}
	for _, s := range expired {
		preview.ReclaimBytes += s.SizeBytes
	}
	return preview, nil
}

// ListBackups returns all snapshots, newest first.
func (m *Manager) ListBackups() ([]Snapshot, error) {
	return m.store.List()
}

// GetBackup resolves one snapshot by filename.
func (m *Manager) GetBackup(filename string) (Snapshot, error) {
	return m.store.Get(filename)
}

// OpenBackup returns a reader over a snapshot's bytes. The caller closes it.
func (m *Manager) OpenBackup(filename string) (io.ReadCloser, Snapshot, error) {
	return m.store.Open(filename)
}

// RestoreBackup replaces the live database with the named snapshot. Errors
// are always *RestoreError so callers can check LiveModified.
func (m *Manager) RestoreBackup(ctx context.Context, filename string) (*RestoreResult, error) {
	m.restoreMu.Lock()
	defer m.restoreMu.Unlock()

	log := logging.Ctx(ctx).With().Str("filename", filename).Str("live_path", m.cfg.DatabasePath).Logger()

	snap, err := m.store.Get(filename)
	if err != nil {
		rerr := &RestoreError{Stage: StageValidate, Err: err}
		metrics.RecordRestore(0, rerr, false)
		log.Warn().Err(err).Msg("Restore rejected")
		return nil, rerr
	}

	log.Warn().Msg("Starting restore, live database will be replaced")

	result, err := m.restorer.Restore(ctx, snap)
	if err != nil {
		var rerr *RestoreError
		liveModified := errors.As(err, &rerr) && rerr.LiveModified
		metrics.RecordRestore(0, err, liveModified)
		m.recordError(err)

		ev := log.Error().Err(err).Bool("live_modified", liveModified)
		if rerr != nil {
			ev = ev.Str("stage", string(rerr.Stage)).Str("safety_copy", rerr.SafetyCopyPath)
		}
		ev.Msg("Restore failed")
		return result, err
	}

	metrics.RecordRestore(result.Duration, nil, true)
	log.Info().
		Str("safety_copy", result.SafetyCopyPath).
		Int64("restored_bytes", result.RestoredBytes).
		Dur("duration", result.Duration).
		Strs("warnings", result.Warnings).
		Msg("Restore completed")
	return result, nil
}

// Status returns a point-in-time view of configuration, scheduler state and
// the snapshot inventory.
func (m *Manager) Status() (*Status, error) {
	snaps, err := m.store.List()
	if err != nil {
		return nil, err
	}

	st := &Status{
		Enabled:        m.cfg.Enabled,
		Schedule:       m.cfg.Schedule,
		SchedulerState: "stopped",
		RetentionDays:  m.cfg.RetentionDays,
		BackupDir:      m.store.Dir(),
		SnapshotCount:  len(snaps),
	}
	if m.scheduler.Running() {
		st.SchedulerState = "running"
		st.NextRun = m.scheduler.Next()
	}
	for _, s := range snaps {
		st.TotalBytes += s.SizeBytes
	}
	if len(snaps) > 0 {
		newest := snaps[0]
		st.LastBackup = &newest
	}

	m.mu.RLock()
	st.LastError = m.lastErr
	st.LastErrorAt = m.lastErrAt
	m.mu.RUnlock()

	metrics.UpdateSnapshotInventory(st.SnapshotCount, st.TotalBytes)
	return st, nil
}

// localNow reads the clock in the configured zone; retention counts
// calendar days there.
func (m *Manager) localNow() time.Time {
	return m.now().In(m.cfg.location())
}

func (m *Manager) recordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastErr = err.Error()
	m.lastErrAt = m.now()
}

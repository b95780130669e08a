// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

package services

import (
	"context"
	"fmt"

	"github.com/tomtom215/snapkeep/internal/logging"
)

// BackupScheduler is satisfied by *backup.Manager.
type BackupScheduler interface {
	Start(ctx context.Context) error
	Shutdown()
}

// BackupSchedulerService owns the scheduler's running state for the life of
// the supervisor. Serve starts the schedule and stops it again on return, so a
// supervisor restart never leaves two schedules registered. The manager queues
// its startup backup only until that backup has fired once.
type BackupSchedulerService struct {
	scheduler BackupScheduler
	name      string
}

// NewBackupSchedulerService wraps a backup manager.
func NewBackupSchedulerService(scheduler BackupScheduler) *BackupSchedulerService {
	return &BackupSchedulerService{
		scheduler: scheduler,
		name:      "backup-scheduler",
	}
}

// Serve implements suture.Service.
func (s *BackupSchedulerService) Serve(ctx context.Context) error {
	if err := s.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start backup scheduler: %w", err)
	}
	defer s.scheduler.Shutdown()

	<-ctx.Done()
	logging.Info().Msg("Stopping backup scheduler")
	return ctx.Err()
}

// String implements fmt.Stringer for suture's log messages.
func (s *BackupSchedulerService) String() string {
	return s.name
}

// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

/*
scheduler.go - Backup Scheduler

The scheduler owns exactly one recurring cron entry plus an optional one-shot
startup timer. Both fire on their own goroutines, so a slow backup never
delays the caller or the next tick.

Cron expressions (standard five-field, evaluated in the configured location):

	hourly  0 * * * *
	daily   0 <hour> * * *
	weekly  0 <hour> * * <weekday>

Lifecycle:
  - Stopped -> Running on Start; Start while running is a no-op
  - Running -> Stopped on Stop; Stop while stopped is a no-op
  - Stop prevents future ticks only. It does not wait for or cancel a tick
    that is already running.
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tomtom215/snapkeep/internal/logging"
)

// ScheduleSpec configures the scheduler. It is copied on Start and cannot be
// changed while the scheduler runs.
type ScheduleSpec struct {
	Schedule     Schedule
	Hour         int
	Weekday      time.Weekday
	RunOnStart   bool
	StartupDelay time.Duration
}

// CronExpr returns the standard cron expression for the spec.
func (s ScheduleSpec) CronExpr() (string, error) {
	switch s.Schedule {
	case ScheduleHourly:
		return "0 * * * *", nil
	case ScheduleDaily, "":
		return fmt.Sprintf("0 %d * * *", s.Hour), nil
	case ScheduleWeekly:
		return fmt.Sprintf("0 %d * * %d", s.Hour, int(s.Weekday)), nil
	default:
		return "", fmt.Errorf("unknown backup schedule %q", s.Schedule)
	}
}

// Scheduler triggers backups on a fixed cadence.
type Scheduler struct {
	mu       sync.Mutex
	loc      *time.Location
	cron     *cron.Cron
	schedule cron.Schedule
	startup  *time.Timer
	spec     ScheduleSpec
	running  bool
}

// NewScheduler creates a stopped scheduler. A nil location means time.Local.
func NewScheduler(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{loc: loc}
}

// Start registers the recurring trigger and, when spec.RunOnStart is set,
// the startup trigger. onTick is called with the trigger that fired.
func (s *Scheduler) Start(spec ScheduleSpec, onTick func(Trigger)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	expr, err := spec.CronExpr()
	if err != nil {
		return err
	}
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return fmt.Errorf("parse cron expression %q: %w", expr, err)
	}

	logger := cronLogger{}
	c := cron.New(
		cron.WithLocation(s.loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger)),
	)
	c.Schedule(schedule, cron.FuncJob(func() { onTick(TriggerScheduled) }))
	c.Start()

	if spec.RunOnStart {
		s.startup = time.AfterFunc(spec.StartupDelay, func() {
			defer func() {
				if r := recover(); r != nil {
					logging.Error().Interface("panic", r).Msg("Startup backup panicked")
				}
			}()
			onTick(TriggerStartup)
		})
	}

	s.cron = c
	s.schedule = schedule
	s.spec = spec
	s.running = true

	logging.Info().
		Str("schedule", string(spec.Schedule)).
		Str("cron", expr).
		Time("next_run", schedule.Next(time.Now().In(s.loc))).
		Bool("run_on_start", spec.RunOnStart).
		Dur("startup_delay", spec.StartupDelay).
		Msg("Backup scheduler started")
	return nil
}

// Stop prevents further triggers. It returns immediately.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	if s.startup != nil {
		s.startup.Stop()
		s.startup = nil
	}
	// The returned context tracks running jobs; nothing waits on it.
	_ = s.cron.Stop()
	s.cron = nil
	s.running = false

	logging.Info().Msg("Backup scheduler stopped")
}

// Running reports whether the scheduler is started.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Next returns the next recurring trigger time, or the zero time when stopped.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return time.Time{}
	}
	return s.schedule.Next(time.Now().In(s.loc))
}

// cronLogger routes robfig/cron's logging into zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logging.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logging.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}

// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

// Package logging provides the process-wide zerolog logger for Snapkeep.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json", Timestamp: true})
//
//	logging.Info().Str("dir", dir).Msg("Backup directory ready")
//	logging.Error().Err(err).Msg("Backup failed")
//
//	// Per-run correlation
//	ctx = logging.ContextWithNewCorrelationID(ctx)
//	logging.Ctx(ctx).Info().Msg("Starting backup")
//
// # Configuration
//
// Environment Variables (read by internal/config):
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller file:line (default: false)
//
// # slog Bridge
//
// The supervisor tree reports through sutureslog, which needs an
// *slog.Logger. NewSlogLogger returns one that writes into zerolog so all
// output shares a single format and level.
//
// # Thread Safety
//
// The global logger is guarded by a RWMutex; Init and SetLogger may be called
// while other goroutines log.
package logging

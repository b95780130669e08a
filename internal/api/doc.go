// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

// Package api exposes the backup manager over a small JSON admin API.
//
// # Routes
//
//	GET  /metrics                                 Prometheus exposition (public)
//	GET  /api/v1/health                           liveness (public)
//	GET  /api/v1/backups                          list snapshots, newest first
//	POST /api/v1/backups                          take a manual snapshot
//	GET  /api/v1/backups/status                   schedule, inventory, last error
//	GET  /api/v1/backups/retention/preview        snapshots cleanup would delete
//	POST /api/v1/backups/retention/apply          run cleanup now
//	GET  /api/v1/backups/{filename}/download      stream a snapshot (?compress=zstd)
//	POST /api/v1/backups/{filename}/restore       restore; body {"confirm": true}
//
// Every /api/v1/backups route is rate limited per client IP (go-chi/httprate)
// and requires "Authorization: Bearer <API_TOKEN>" when a token is configured.
//
// # Response Envelope
//
// All JSON responses use models.APIResponse:
//
//	{"status":"success","data":{...},"metadata":{"timestamp":"...","request_id":"..."}}
//	{"status":"error","error":{"code":"SNAPSHOT_NOT_FOUND","message":"..."},"metadata":{...}}
//
// A failed restore carries error.details.restore with the failing stage,
// whether the live database was modified, and the safety copy path.
package api

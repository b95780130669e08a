// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

/*
Package middleware provides the net/http middleware used by the admin API.

  - RequestID: X-Request-ID propagation into the logging context
  - PrometheusMetrics: request count and latency by chi route pattern
  - BearerAuth: constant-time bearer token check

All middleware use the func(http.Handler) http.Handler shape expected by chi's
Router.Use.
*/
package middleware

// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/snapkeep/internal/middleware"
)

// RouterConfig configures NewRouter.
type RouterConfig struct {
	// APIToken protects every /api/v1/backups route. Empty disables auth.
	APIToken string

	Middleware *ChiMiddlewareConfig
}

// NewRouter builds the admin API.
//
//	GET  /metrics
//	GET  /api/v1/health
//	GET  /api/v1/backups
//	POST /api/v1/backups
//	GET  /api/v1/backups/status
//	GET  /api/v1/backups/retention/preview
//	POST /api/v1/backups/retention/apply
//	GET  /api/v1/backups/{filename}/download[?compress=zstd]
//	POST /api/v1/backups/{filename}/restore
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	mw := NewChiMiddleware(cfg.Middleware)
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogging())
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(mw.CORS())

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Route("/backups", func(r chi.Router) {
			r.Use(mw.RateLimit())
			r.Use(middleware.BearerAuth(cfg.APIToken))

			r.Get("/", h.HandleListBackups)
			r.Post("/", h.HandleCreateBackup)
			r.Get("/status", h.HandleBackupStatus)
			r.Get("/retention/preview", h.HandleRetentionPreview)
			r.Post("/retention/apply", h.HandleApplyRetention)
			r.Get("/{filename}/download", h.HandleDownloadBackup)
			r.Post("/{filename}/restore", h.HandleRestoreBackup)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "No such endpoint", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	return r
}

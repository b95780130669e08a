// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRouter_Auth(t *testing.T) {
	router := newTestRouter(&mockBackupManager{})

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
	}{
		{"health is public", "/api/v1/health", "", http.StatusOK},
		{"metrics is public", "/metrics", "", http.StatusOK},
		{"backups need token", "/api/v1/backups", "", http.StatusUnauthorized},
		{"wrong token", "/api/v1/backups", "Bearer nope", http.StatusUnauthorized},
		{"basic scheme rejected", "/api/v1/backups", "Basic " + testToken, http.StatusUnauthorized},
		{"valid token", "/api/v1/backups", "Bearer " + testToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouter_NoTokenDisablesAuth(t *testing.T) {
	router := NewRouter(NewHandler(&mockBackupManager{}, "test"), RouterConfig{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/backups", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestRouter_NotFoundAndMethod(t *testing.T) {
	router := newTestRouter(&mockBackupManager{})

	w := doRequest(t, router, http.MethodGet, "/api/v1/nothing", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}

	w = doRequest(t, router, http.MethodDelete, "/api/v1/backups/status", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}

func TestRouter_RequestIDEchoed(t *testing.T) {
	router := newTestRouter(&mockBackupManager{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q, want abc-123", got)
	}
	if !strings.Contains(w.Body.String(), `"request_id":"abc-123"`) {
		t.Errorf("body = %s, want request_id in metadata", w.Body.String())
	}
}

func TestHealth(t *testing.T) {
	w := doRequest(t, newTestRouter(&mockBackupManager{}), http.MethodGet, "/api/v1/health", "")
	body := w.Body.String()
	for _, want := range []string{`"status":"ok"`, `"version":"test"`, `"backup_enabled":true`} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %s: %s", want, body)
		}
	}
}

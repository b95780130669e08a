// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/klauspost/compress/zstd"

	"github.com/tomtom215/snapkeep/internal/backup"
	"github.com/tomtom215/snapkeep/internal/logging"
	"github.com/tomtom215/snapkeep/internal/validation"
)

// newZstdEncoder builds the download compressor. Nothing is written to w
// until the first Write or Close.
var newZstdEncoder = func(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

// BackupListResponse is the body of GET /api/v1/backups.
type BackupListResponse struct {
	Backups     []backup.Snapshot `json:"backups"`
	Total       int               `json:"total"`
	TotalBytes  int64             `json:"total_bytes"`
	TotalSizeMB float64           `json:"total_size_mb"`
}

// DownloadRequest is the validated form of a download request.
type DownloadRequest struct {
	Filename string `validate:"required,filename"`
	Compress string `validate:"omitempty,oneof=zstd none"`
}

// RestoreRequest is the body of POST /api/v1/backups/{filename}/restore.
// Confirm must be true; a restore replaces the live database.
type RestoreRequest struct {
	Filename string `json:"-" validate:"required,filename"`
	Confirm  bool   `json:"confirm" validate:"required"`
}

// RestoreErrorDetails explains a failed restore to the operator.
type RestoreErrorDetails struct {
	Stage          backup.RestoreStage `json:"stage"`
	LiveModified   bool                `json:"live_modified"`
	SafetyCopyPath string              `json:"safety_copy_path,omitempty"`
}

// checkBackupManagerAvailable answers 503 when no manager is configured.
func (h *Handler) checkBackupManagerAvailable(w http.ResponseWriter, r *http.Request) bool {
	if h.backupManager == nil {
		respondError(w, r, http.StatusServiceUnavailable, CodeBackupDisabled, "Backup functionality is not enabled", nil)
		return false
	}
	return true
}

func respondValidationError(w http.ResponseWriter, r *http.Request, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	respondErrorDetails(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details, nil)
}

// HandleListBackups lists snapshots, newest first.
// GET /api/v1/backups
func (h *Handler) HandleListBackups(w http.ResponseWriter, r *http.Request) {
	if !h.checkBackupManagerAvailable(w, r) {
		return
	}

	snaps, err := h.backupManager.ListBackups()
	if err != nil {
		status, code := classifyBackupError(err, CodeBackupFailed)
		respondError(w, r, status, code, "Failed to list backups", err)
		return
	}

	resp := &BackupListResponse{Backups: snaps, Total: len(snaps)}
	if resp.Backups == nil {
		resp.Backups = []backup.Snapshot{}
	}
	for _, s := range snaps {
		resp.TotalBytes += s.SizeBytes
	}
	resp.TotalSizeMB = float64(resp.TotalBytes) / (1024 * 1024)

	respondSuccess(w, r, http.StatusOK, resp)
}

// HandleCreateBackup takes a manual snapshot. Manual backups run even when
// scheduled backups are disabled.
// POST /api/v1/backups
func (h *Handler) HandleCreateBackup(w http.ResponseWriter, r *http.Request) {
	if !h.checkBackupManagerAvailable(w, r) {
		return
	}

	snap, err := h.backupManager.CreateBackup(r.Context(), true)
	if err != nil {
		status, code := classifyBackupError(err, CodeBackupFailed)
		respondError(w, r, status, code, "Backup failed: "+err.Error(), err)
		return
	}

	respondSuccess(w, r, http.StatusCreated, snap)
}

// HandleBackupStatus reports schedule, inventory and the last error.
// GET /api/v1/backups/status
func (h *Handler) HandleBackupStatus(w http.ResponseWriter, r *http.Request) {
	if !h.checkBackupManagerAvailable(w, r) {
		return
	}

	st, err := h.backupManager.Status()
	if err != nil {
		status, code := classifyBackupError(err, CodeBackupFailed)
		respondError(w, r, status, code, "Failed to read backup status", err)
		return
	}
	respondSuccess(w, r, http.StatusOK, st)
}

// HandleDownloadBackup streams a snapshot. ?compress=zstd streams it
// zstd-compressed with a .zst suffix on the attachment name.
// GET /api/v1/backups/{filename}/download
func (h *Handler) HandleDownloadBackup(w http.ResponseWriter, r *http.Request) {
	if !h.checkBackupManagerAvailable(w, r) {
		return
	}

	req := DownloadRequest{
		Filename: chi.URLParam(r, "filename"),
		Compress: r.URL.Query().Get("compress"),
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	rc, snap, err := h.backupManager.OpenBackup(req.Filename)
	if err != nil {
		status, code := classifyBackupError(err, CodeBackupFailed)
		respondError(w, r, status, code, fmt.Sprintf("Backup %s not available", req.Filename), err)
		return
	}
	defer rc.Close()

	log := logging.Ctx(r.Context()).With().Str("filename", snap.Filename).Str("compress", req.Compress).Logger()

	if req.Compress == "zstd" {
		enc, err := newZstdEncoder(w)
		if err != nil {
			respondError(w, r, http.StatusInternalServerError, CodeBackupFailed, "Failed to start compression", err)
			return
		}
		w.Header().Set("Content-Type", "application/zstd")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", snap.Filename+".zst"))
		n, err := io.Copy(enc, rc)
		if closeErr := enc.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			// Headers are gone; the client sees a truncated stream.
			log.Error().Err(err).Int64("bytes_read", n).Msg("Compressed download aborted")
			return
		}
		log.Info().Int64("bytes_read", n).Msg("Backup downloaded")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.sqlite3")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", snap.Filename))
	if rs, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(w, r, snap.Filename, snap.CreatedAt, rs)
		log.Info().Int64("size_bytes", snap.SizeBytes).Msg("Backup downloaded")
		return
	}
	w.Header().Set("Content-Length", strconv.FormatInt(snap.SizeBytes, 10))
	if _, err := io.Copy(w, rc); err != nil {
		log.Error().Err(err).Msg("Download aborted")
		return
	}
	log.Info().Int64("size_bytes", snap.SizeBytes).Msg("Backup downloaded")
}

// HandleRestoreBackup replaces the live database with a snapshot.
// POST /api/v1/backups/{filename}/restore  {"confirm": true}
func (h *Handler) HandleRestoreBackup(w http.ResponseWriter, r *http.Request) {
	if !h.checkBackupManagerAvailable(w, r) {
		return
	}

	var req RestoreRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeInvalidRequestBody, "Request body must be JSON like {\"confirm\": true}", nil)
		return
	}
	req.Filename = chi.URLParam(r, "filename")
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	result, err := h.backupManager.RestoreBackup(r.Context(), req.Filename)
	if err != nil {
		status, code := classifyBackupError(err, CodeRestoreFailed)
		var details map[string]interface{}
		var rerr *backup.RestoreError
		if errors.As(err, &rerr) {
			details = map[string]interface{}{
				"restore": RestoreErrorDetails{
					Stage:          rerr.Stage,
					LiveModified:   rerr.LiveModified,
					SafetyCopyPath: rerr.SafetyCopyPath,
				},
			}
		}
		respondErrorDetails(w, r, status, code, err.Error(), details, err)
		return
	}

	respondSuccess(w, r, http.StatusOK, result)
}

// HandleRetentionPreview shows which snapshots cleanup would delete now.
// GET /api/v1/backups/retention/preview
func (h *Handler) HandleRetentionPreview(w http.ResponseWriter, r *http.Request) {
	if !h.checkBackupManagerAvailable(w, r) {
		return
	}

	preview, err := h.backupManager.PreviewRetention()
	if err != nil {
		status, code := classifyBackupError(err, CodeRetentionFailed)
		respondError(w, r, status, code, "Failed to preview retention", err)
		return
	}
	respondSuccess(w, r, http.StatusOK, preview)
}

// HandleApplyRetention runs one cleanup pass immediately.
// POST /api/v1/backups/retention/apply
func (h *Handler) HandleApplyRetention(w http.ResponseWriter, r *http.Request) {
	if !h.checkBackupManagerAvailable(w, r) {
		return
	}

	result, err := h.backupManager.ApplyRetention(r.Context())
	if err != nil {
		status, code := classifyBackupError(err, CodeRetentionFailed)
		respondError(w, r, status, code, "Failed to apply retention", err)
		return
	}
	respondSuccess(w, r, http.StatusOK, result)
}

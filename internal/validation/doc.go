// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

// Package validation wraps go-playground/validator v10 for admin API
// requests. It adds a "filename" tag for bare snapshot file names and turns
// validator errors into VALIDATION_ERROR responses.
package validation

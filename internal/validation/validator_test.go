// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

package validation

import (
	"strings"
	"testing"
)

type downloadQuery struct {
	Filename string `validate:"required,filename"`
	Compress string `validate:"omitempty,oneof=zstd none"`
}

type restoreBody struct {
	Confirm bool `validate:"required"`
}

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()
	if v1 == nil || v1 != v2 {
		t.Error("GetValidator() should return one shared instance")
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		input     interface{}
		wantTag   string
		wantValid bool
	}{
		{"valid download", &downloadQuery{Filename: "snapkeep_backup_20260101_020000.db", Compress: "zstd"}, "", true},
		{"valid no compression", &downloadQuery{Filename: "snapkeep_backup_20260101_020000.db"}, "", true},
		{"missing filename", &downloadQuery{}, "required", false},
		{"path traversal", &downloadQuery{Filename: "../etc/passwd"}, "filename", false},
		{"separator", &downloadQuery{Filename: "a/b.db"}, "filename", false},
		{"hidden file", &downloadQuery{Filename: ".db"}, "filename", false},
		{"too long", &downloadQuery{Filename: strings.Repeat("a", 256)}, "filename", false},
		{"bad compression", &downloadQuery{Filename: "x.db", Compress: "gzip"}, "oneof", false},
		{"confirmed restore", &restoreBody{Confirm: true}, "", true},
		{"unconfirmed restore", &restoreBody{}, "required", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(tt.input)
			if tt.wantValid {
				if verr != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			if got := verr.Errors()[0].Tag; got != tt.wantTag {
				t.Errorf("tag = %q, want %q", got, tt.wantTag)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	verr := ValidateStruct(&downloadQuery{Filename: "../x", Compress: "rar"})
	if verr == nil {
		t.Fatal("expected validation error")
	}

	apiErr := verr.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "Filename must be a bare file name") {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if !strings.Contains(apiErr.Message, "Compress must be one of: zstd none") {
		t.Errorf("Message = %q", apiErr.Message)
	}
	fields, ok := apiErr.Details["fields"].([]ValidationError)
	if !ok || len(fields) != 2 {
		t.Errorf("Details[fields] = %#v", apiErr.Details["fields"])
	}
}

// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

package logging

import (
	"context"
	"strings"
	"testing"
)

func TestCorrelationID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if got := CorrelationIDFromContext(ctx); got != "" {
		t.Errorf("empty context returned %q", got)
	}

	ctx = ContextWithNewCorrelationID(ctx)
	id := CorrelationIDFromContext(ctx)
	if len(id) != 8 {
		t.Errorf("correlation ID %q, want 8 characters", id)
	}

	if other := GenerateCorrelationID(); other == id {
		t.Errorf("two generated IDs collided: %q", id)
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	ctx := ContextWithRequestID(context.Background(), "req-42")
	if got := RequestIDFromContext(ctx); got != "req-42" {
		t.Errorf("RequestIDFromContext = %q, want req-42", got)
	}
}

func TestCtx(t *testing.T) {
	buf := captureLogs(t)

	ctx := ContextWithCorrelationID(context.Background(), "abc12345")
	ctx = ContextWithRequestID(ctx, "req-1")
	Ctx(ctx).Info().Msg("with ids")
	Ctx(context.Background()).Info().Msg("without ids")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], `"correlation_id":"abc12345"`) || !strings.Contains(lines[0], `"request_id":"req-1"`) {
		t.Errorf("ids missing: %s", lines[0])
	}
	if strings.Contains(lines[1], "correlation_id") || strings.Contains(lines[1], "request_id") {
		t.Errorf("unexpected ids: %s", lines[1])
	}
}

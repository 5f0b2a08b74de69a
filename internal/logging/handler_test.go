// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RBAC-Project Contributors

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestSetup_StampsServiceIdentity(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("rbacd", "1.2.3", "json", &buf)

	logger.Info("hello", "key", "value")

	record := logLine(t, &buf)
	assert.Equal(t, "rbacd", record["service"])
	assert.Equal(t, "1.2.3", record["version"])
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "value", record["key"])
}

func TestSetup_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("rbacd", "dev", "text", &buf)

	logger.Info("hello")

	out := buf.String()
	assert.Contains(t, out, "msg=hello")
	assert.Contains(t, out, "service=rbacd")
	assert.NotContains(t, out, "{")
}

func TestHandler_TraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("rbacd", "dev", "json", &buf)

	traceID := trace.TraceID{0x01, 0x02, 0x03, 0x04}
	spanID := trace.SpanID{0x0a, 0x0b}
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	logger.InfoContext(ctx, "traced")

	record := logLine(t, &buf)
	assert.Equal(t, traceID.String(), record["trace_id"])
	assert.Equal(t, spanID.String(), record["span_id"])
}

func TestHandler_NoTraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("rbacd", "dev", "json", &buf)

	logger.Info("untraced")

	record := logLine(t, &buf)
	_, hasTrace := record["trace_id"]
	assert.False(t, hasTrace)
}

func TestHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("rbacd", "dev", "json", &buf)

	logger.With("request_id", "abc").WithGroup("auth").Info("grouped", "username", "alice")

	record := logLine(t, &buf)
	assert.Equal(t, "abc", record["request_id"])
	group, ok := record["auth"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", group["username"])
}

func TestHandler_Enabled(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("rbacd", "dev", "json", &buf)

	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelError))
}

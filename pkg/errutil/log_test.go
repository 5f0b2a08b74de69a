// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RBAC-Project Contributors

package errutil_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chandrateja1212/RBAC-Project/pkg/errutil"
)

func capture(t *testing.T, fn func(logger *slog.Logger)) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	fn(slog.New(slog.NewJSONHandler(&buf, nil)))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestLogError_PlainError(t *testing.T) {
	record := capture(t, func(logger *slog.Logger) {
		errutil.LogError(logger, "request failed", errors.New("boom"))
	})

	assert.Equal(t, "request failed", record["msg"])
	assert.Equal(t, "boom", record["error"])
	_, hasCode := record["code"]
	assert.False(t, hasCode)
}

func TestLogError_OopsError(t *testing.T) {
	err := oops.Code("STORE_FAILED").
		With("operation", "insert").
		Errorf("insert user")

	record := capture(t, func(logger *slog.Logger) {
		errutil.LogError(logger, "request failed", err)
	})

	assert.Equal(t, "request failed", record["msg"])
	assert.Equal(t, "STORE_FAILED", record["code"])

	ctx, ok := record["context"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "insert", ctx["operation"])
}

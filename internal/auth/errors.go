// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RBAC-Project Contributors

package auth

import (
	"errors"
	"time"

	"github.com/samber/oops"
)

// Stable error codes attached to oops errors returned by this package.
// The HTTP layer maps these to status codes; clients never see more detail
// than the code's generic message.
const (
	CodeValidation         = "AUTH_VALIDATION"
	CodeUsernameTaken      = "AUTH_USERNAME_TAKEN"
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeThrottled          = "AUTH_THROTTLED"
	CodeUnauthenticated    = "AUTH_UNAUTHENTICATED"
	CodeForbidden          = "AUTH_FORBIDDEN"
	CodeIntegrity          = "AUTH_INTEGRITY"
)

// Repository-level sentinels. Implementations translate driver errors into
// these so the service can match with errors.Is.
var (
	// ErrNotFound is returned when a requested user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUsernameTaken is returned when an insert hits the unique
	// constraint on username.
	ErrUsernameTaken = errors.New("username already exists")
)

// ErrorCode extracts the auth error code from err, or "" if err carries none.
func ErrorCode(err error) string {
	if oopsErr, ok := oops.AsOops(err); ok {
		if code, ok := oopsErr.Code().(string); ok && code != "" {
			return code
		}
	}
	return ""
}

// Violations extracts the validation violation list from a CodeValidation
// error. Returns nil for other errors.
func Violations(err error) []string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}
	v, ok := oopsErr.Context()["violations"].([]string)
	if !ok {
		return nil
	}
	return v
}

// RetryAfter extracts the retry-after duration from a CodeThrottled error.
// Returns 0 for other errors.
func RetryAfter(err error) time.Duration {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return 0
	}
	d, ok := oopsErr.Context()["retry_after"].(time.Duration)
	if !ok {
		return 0
	}
	return d
}

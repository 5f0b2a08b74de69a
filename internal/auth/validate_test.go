// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RBAC-Project Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Chandrateja1212/RBAC-Project/internal/auth"
)

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name       string
		username   string
		password   string
		violations []string
	}{
		{
			name:     "valid credentials",
			username: "alice",
			password: "Str0ng!Pass",
		},
		{
			name:     "minimum length username",
			username: "bob",
			password: "Str0ng!Pass",
		},
		{
			name:     "maximum length username",
			username: strings.Repeat("a", 30),
			password: "Str0ng!Pass",
		},
		{
			name:       "username too short",
			username:   "al",
			password:   "Str0ng!Pass",
			violations: []string{auth.ViolationUsernameLength},
		},
		{
			name:       "username too long",
			username:   strings.Repeat("a", 31),
			password:   "Str0ng!Pass",
			violations: []string{auth.ViolationUsernameLength},
		},
		{
			name:       "password too short",
			username:   "alice",
			password:   "S0r!t",
			violations: []string{auth.ViolationWeakPassword},
		},
		{
			name:       "password missing uppercase",
			username:   "alice",
			password:   "str0ng!pass",
			violations: []string{auth.ViolationWeakPassword},
		},
		{
			name:       "password missing lowercase",
			username:   "alice",
			password:   "STR0NG!PASS",
			violations: []string{auth.ViolationWeakPassword},
		},
		{
			name:       "password missing digit",
			username:   "alice",
			password:   "Strong!Pass",
			violations: []string{auth.ViolationWeakPassword},
		},
		{
			name:       "password missing symbol",
			username:   "alice",
			password:   "Str0ngPass1",
			violations: []string{auth.ViolationWeakPassword},
		},
		{
			name:       "both rules violated",
			username:   "al",
			password:   "weak",
			violations: []string{auth.ViolationUsernameLength, auth.ViolationWeakPassword},
		},
		{
			name:       "empty everything",
			username:   "",
			password:   "",
			violations: []string{auth.ViolationUsernameLength, auth.ViolationWeakPassword},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := auth.ValidateCredentials(tt.username, tt.password)
			assert.Equal(t, tt.violations, got)
		})
	}
}

func TestValidateCredentials_CountsCharactersNotBytes(t *testing.T) {
	// 3 multi-byte runes: valid length even though more than 3 bytes.
	got := auth.ValidateCredentials("ünïç", "Str0ng!Pass")
	assert.Empty(t, got)
}

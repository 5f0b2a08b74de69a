// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RBAC-Project Contributors

package auth_test

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chandrateja1212/RBAC-Project/internal/auth"
)

func newGuard(t *testing.T) (*auth.Guard, *auth.TokenService) {
	t.Helper()
	tokens, err := auth.NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)
	guard, err := auth.NewGuard(tokens)
	require.NoError(t, err)
	return guard, tokens
}

func TestNewGuard_NilTokenService(t *testing.T) {
	guard, err := auth.NewGuard(nil)
	require.Error(t, err)
	assert.Nil(t, guard)
}

func TestGuard_Authorize(t *testing.T) {
	guard, tokens := newGuard(t)

	subjectID := ulid.Make()
	adminToken, err := tokens.Issue(subjectID, auth.RoleAdmin)
	require.NoError(t, err)
	userToken, err := tokens.Issue(subjectID, auth.RoleUser)
	require.NoError(t, err)

	t.Run("allows role in the allow-list", func(t *testing.T) {
		identity, err := guard.Authorize(adminToken, auth.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, subjectID, identity.SubjectID)
		assert.Equal(t, auth.RoleAdmin, identity.Role)
	})

	t.Run("allows any listed role", func(t *testing.T) {
		_, err := guard.Authorize(userToken, auth.RoleAdmin, auth.RoleManager, auth.RoleUser)
		assert.NoError(t, err)
	})

	t.Run("forbids role absent from the allow-list", func(t *testing.T) {
		_, err := guard.Authorize(userToken, auth.RoleAdmin)
		require.Error(t, err)
		assert.Equal(t, auth.CodeForbidden, auth.ErrorCode(err))
	})

	t.Run("membership is exact, not hierarchical", func(t *testing.T) {
		// admin does not satisfy a manager-only list unless listed.
		_, err := guard.Authorize(adminToken, auth.RoleManager)
		require.Error(t, err)
		assert.Equal(t, auth.CodeForbidden, auth.ErrorCode(err))
	})

	t.Run("missing token is unauthenticated", func(t *testing.T) {
		_, err := guard.Authorize("", auth.RoleUser)
		require.Error(t, err)
		assert.Equal(t, auth.CodeUnauthenticated, auth.ErrorCode(err))
	})

	t.Run("garbage token is unauthenticated", func(t *testing.T) {
		_, err := guard.Authorize("garbage", auth.RoleUser)
		require.Error(t, err)
		assert.Equal(t, auth.CodeUnauthenticated, auth.ErrorCode(err))
	})

	t.Run("expired token is unauthenticated", func(t *testing.T) {
		now := time.Now()
		clockTokens, err := auth.NewTokenServiceWithClock(testSecret, time.Hour, func() time.Time { return now })
		require.NoError(t, err)
		clockGuard, err := auth.NewGuard(clockTokens)
		require.NoError(t, err)

		token, err := clockTokens.Issue(subjectID, auth.RoleUser)
		require.NoError(t, err)

		now = now.Add(2 * time.Hour)
		_, err = clockGuard.Authorize(token, auth.RoleUser)
		require.Error(t, err)
		assert.Equal(t, auth.CodeUnauthenticated, auth.ErrorCode(err))
		assert.ErrorIs(t, err, auth.ErrTokenExpired)
	})
}

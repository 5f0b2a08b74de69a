// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RBAC-Project Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Chandrateja1212/RBAC-Project/internal/auth"
)

// testHasher uses the minimum bcrypt cost so tests stay fast. The production
// cost only changes work factor, not behavior.
func testHasher() *auth.BcryptHasher {
	return auth.NewBcryptHasherWithCost(bcrypt.MinCost)
}

func TestBcryptHasher_Hash(t *testing.T) {
	hasher := testHasher()

	t.Run("produces valid bcrypt hash", func(t *testing.T) {
		hash, err := hasher.Hash("Str0ng!Pass")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$2a$"))
	})

	t.Run("same password produces different hashes (salt)", func(t *testing.T) {
		hash1, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		hash2, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := hasher.Hash("")
		assert.Error(t, err)
	})

	t.Run("production cost is 12", func(t *testing.T) {
		assert.Equal(t, 12, auth.HashCost)
	})
}

func TestBcryptHasher_Verify(t *testing.T) {
	hasher := testHasher()

	t.Run("correct password verifies", func(t *testing.T) {
		hash, err := hasher.Hash("correctpassword")
		require.NoError(t, err)

		ok, err := hasher.Verify("correctpassword", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("incorrect password fails without error", func(t *testing.T) {
		hash, err := hasher.Hash("correctpassword")
		require.NoError(t, err)

		ok, err := hasher.Verify("wrongpassword", hash)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("hash of another password never matches", func(t *testing.T) {
		hash, err := hasher.Hash("passwordA")
		require.NoError(t, err)

		ok, err := hasher.Verify("passwordB", hash)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("corrupt stored hash is an integrity error", func(t *testing.T) {
		ok, err := hasher.Verify("password", "not-a-bcrypt-hash")
		assert.False(t, ok)
		require.Error(t, err)
		assert.Equal(t, auth.CodeIntegrity, auth.ErrorCode(err))
	})

	t.Run("truncated hash is an integrity error", func(t *testing.T) {
		ok, err := hasher.Verify("password", "$2a$10$tooshort")
		assert.False(t, ok)
		require.Error(t, err)
		assert.Equal(t, auth.CodeIntegrity, auth.ErrorCode(err))
	})
}

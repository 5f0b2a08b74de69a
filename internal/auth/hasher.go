// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RBAC-Project Contributors

package auth

import (
	"errors"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt work factor. 12 rounds keeps a single verification
// in the tens of milliseconds on current hardware, slow enough to blunt
// offline brute force while staying interactive.
const HashCost = 12

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// PasswordHasher provides one-way salted password hashing and verification.
type PasswordHasher interface {
	// Hash produces a salted hash of the password.
	Hash(password string) (string, error)

	// Verify checks if the password matches the stored hash.
	// Returns (true, nil) on match, (false, nil) on mismatch, or
	// (false, error) when the stored hash is structurally corrupt.
	Verify(password, hash string) (bool, error)
}

// BcryptHasher implements PasswordHasher using bcrypt. The salt is generated
// per hash and embedded in the output; comparison is constant-time inside
// the bcrypt primitive.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher at the production cost.
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: HashCost}
}

// NewBcryptHasherWithCost creates a BcryptHasher with an explicit cost.
// Costs below bcrypt.MinCost are raised to it; useful for fast tests.
func NewBcryptHasherWithCost(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash produces a salted bcrypt hash of the password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", oops.Code(CodeIntegrity).
			With("operation", "bcrypt generate").
			Wrap(err)
	}
	return string(hash), nil
}

// Verify checks the password against the stored hash. A plain mismatch is
// (false, nil); anything else means the stored hash itself is unusable and
// is surfaced as a CodeIntegrity error so callers can log data corruption
// distinctly from a wrong password.
func (h *BcryptHasher) Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, oops.Code(CodeIntegrity).
		With("operation", "bcrypt compare").
		Wrap(err)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RBAC-Project Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Role names a position in the access-control allow-lists. The set is open:
// any non-empty string is storable, the constants below are the ones the
// bundled routes gate on.
type Role string

// Well-known roles.
const (
	RoleUser    Role = "user"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// User is a registered account. PasswordHash is write-only state: it is never
// serialized to a client or logged; external shaping goes through Summary.
type User struct {
	ID           ulid.ULID
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Summary is the client-visible projection of a User.
type Summary struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// NewUser creates a validated User. The username must already have passed
// ValidateCredentials; this guards the structural invariants only.
func NewUser(username, passwordHash string, role Role) (*User, error) {
	if username == "" {
		return nil, oops.Code(CodeValidation).Errorf("username cannot be empty")
	}
	if passwordHash == "" {
		return nil, oops.Code(CodeIntegrity).Errorf("password hash cannot be empty")
	}
	if role == "" {
		role = RoleUser
	}

	now := time.Now()
	return &User{
		ID:           ulid.Make(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Summary returns the public projection of the user.
func (u *User) Summary() Summary {
	return Summary{Username: u.Username, Role: u.Role}
}

// UserRepository manages user persistence. The store enforces username
// uniqueness; Create reports a collision as ErrUsernameTaken.
type UserRepository interface {
	// Create stores a new user.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByUsername retrieves a user by username (case-insensitive).
	GetByUsername(ctx context.Context, username string) (*User, error)
}

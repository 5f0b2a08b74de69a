// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RBAC-Project Contributors

// Package auth implements credential authentication and role-based
// authorization.
//
// # Components
//
//   - ValidateCredentials - username/password shape rules, all violations
//     collected in one pass
//   - PasswordHasher / BcryptHasher - salted one-way hashing and verification
//   - TokenService - issues and verifies signed, time-limited bearer tokens
//   - LoginThrottle - fixed-window login attempt limiting per client identity
//   - Guard - token verification plus per-operation role allow-lists
//   - Service - composes the above into register, login, and logout
//
// Errors carry stable codes (the Code* constants) via samber/oops; callers
// map them to transport outcomes with ErrorCode. The token signing secret is
// injected at construction and is never logged or serialized.
package auth

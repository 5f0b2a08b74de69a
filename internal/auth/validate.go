// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RBAC-Project Contributors

package auth

import "unicode"

// Credential shape constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MinPasswordLength = 8
)

// Violation messages returned by ValidateCredentials. Kept as constants so
// tests and clients can match on them.
const (
	ViolationUsernameLength = "username must be between 3 and 30 characters"
	ViolationWeakPassword   = "password must contain at least 8 characters, including uppercase, lowercase, number and special character"
)

// ValidateCredentials checks the registration shape rules and returns every
// violated rule. An empty result means both credentials are acceptable.
// Both rules are always evaluated so callers can report all problems at once.
func ValidateCredentials(username, password string) []string {
	var violations []string

	if n := len([]rune(username)); n < MinUsernameLength || n > MaxUsernameLength {
		violations = append(violations, ViolationUsernameLength)
	}
	if !isStrongPassword(password) {
		violations = append(violations, ViolationWeakPassword)
	}

	return violations
}

// isStrongPassword requires length >= MinPasswordLength and at least one
// lowercase letter, uppercase letter, digit, and symbol.
func isStrongPassword(password string) bool {
	runes := []rune(password)
	if len(runes) < MinPasswordLength {
		return false
	}

	var lower, upper, digit, symbol bool
	for _, r := range runes {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

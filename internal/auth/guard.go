// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RBAC-Project Contributors

package auth

import (
	"github.com/samber/oops"
)

// Guard gates protected operations: it verifies a bearer token and checks
// the embedded role against a per-operation allow-list.
type Guard struct {
	tokens *TokenService
}

// NewGuard creates a Guard. Returns an error if the token service is nil.
func NewGuard(tokens *TokenService) (*Guard, error) {
	if tokens == nil {
		return nil, oops.Errorf("token service is required")
	}
	return &Guard{tokens: tokens}, nil
}

// Authorize verifies the token and checks that its role is in the allow-list.
// A token that is missing, malformed, forged, or expired yields a
// CodeUnauthenticated error; a valid identity whose role is absent from the
// allow-list yields CodeForbidden. Membership is exact string matching; no
// role implies another.
func (g *Guard) Authorize(tokenString string, allowed ...Role) (*Identity, error) {
	if tokenString == "" {
		return nil, oops.Code(CodeUnauthenticated).Errorf("missing bearer token")
	}

	identity, err := g.tokens.Verify(tokenString)
	if err != nil {
		return nil, oops.Code(CodeUnauthenticated).
			With("reason", err.Error()).
			Wrap(err)
	}

	for _, role := range allowed {
		if identity.Role == role {
			return identity, nil
		}
	}

	return nil, oops.Code(CodeForbidden).
		With("role", string(identity.Role)).
		Errorf("insufficient role")
}

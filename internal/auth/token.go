// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RBAC-Project Contributors

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// DefaultTokenTTL is the token lifetime when none is configured.
const DefaultTokenTTL = time.Hour

// Token verification failure classes. The guard treats every one of them as
// unauthenticated; they exist so integrity failures can be logged apart from
// ordinary expiry.
var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenSignature = errors.New("token signature invalid")
	ErrTokenExpired   = errors.New("token expired")
)

// Claims is the token payload: subject id and role plus the registered
// issued-at and expiry timestamps.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the verified view of a token: who the bearer is and the role
// that was copied into the token at issuance. Role changes made after
// issuance take effect only when the holder obtains a fresh token.
type Identity struct {
	SubjectID ulid.ULID
	Role      Role
}

// TokenService issues and verifies HMAC-SHA256 signed bearer tokens. The
// signing secret is fixed at construction and never logged.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService. The secret is required; a zero or
// negative ttl falls back to DefaultTokenTTL.
func NewTokenService(secret []byte, ttl time.Duration) (*TokenService, error) {
	return newTokenService(secret, ttl, time.Now)
}

// NewTokenServiceWithClock creates a TokenService with an injected clock.
// Useful for exercising expiry without sleeping.
func NewTokenServiceWithClock(secret []byte, ttl time.Duration, now func() time.Time) (*TokenService, error) {
	if now == nil {
		return nil, oops.Errorf("clock is required")
	}
	return newTokenService(secret, ttl, now)
}

func newTokenService(secret []byte, ttl time.Duration, now func() time.Time) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, oops.Code(CodeIntegrity).Errorf("token signing secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: secret, ttl: ttl, now: now}, nil
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue produces a signed token for the subject with the role embedded.
// Expiry is issuance time plus the configured TTL.
func (s *TokenService) Issue(subjectID ulid.ULID, role Role) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", oops.Code(CodeIntegrity).
			With("operation", "sign token").
			Wrap(err)
	}
	return signed, nil
}

// Verify checks the token's signature and expiry and returns the embedded
// identity. Signature integrity is checked before expiry; any failure class
// maps to one of ErrTokenMalformed, ErrTokenSignature, ErrTokenExpired.
func (s *TokenService) Verify(tokenString string) (*Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, ErrTokenMalformed
		}
	}
	if !token.Valid {
		return nil, ErrTokenSignature
	}

	subjectID, err := ulid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrTokenMalformed
	}

	return &Identity{SubjectID: subjectID, Role: claims.Role}, nil
}

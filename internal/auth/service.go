// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RBAC-Project Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// dummyPasswordHash is verified when the username is unknown so a login
// against an absent account costs the same as one against a wrong password.
// This is NOT a real credential - it's the bcrypt hash of a throwaway string
// that no caller can match because the absent-user path always fails.
//
//nolint:gosec // G101: intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9T90dy6GnZ0pemyN8wG9mCI0GRBO"

// AuthResult is the outcome of a successful register or login: the public
// user summary plus a freshly issued bearer token.
type AuthResult struct {
	User  Summary
	Token string
}

// Service composes the validator, hasher, token service, and throttle into
// the register, login, and logout use-cases.
type Service struct {
	users    UserRepository
	hasher   PasswordHasher
	tokens   *TokenService
	throttle *LoginThrottle
	logger   *slog.Logger
}

// NewService creates a Service with a no-op logger.
// Returns an error if any required dependency is nil.
func NewService(users UserRepository, hasher PasswordHasher, tokens *TokenService, throttle *LoginThrottle) (*Service, error) {
	if users == nil {
		return nil, oops.Errorf("user repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("token service is required")
	}
	if throttle == nil {
		return nil, oops.Errorf("login throttle is required")
	}
	return &Service{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		throttle: throttle,
		logger:   slog.New(slog.DiscardHandler),
	}, nil
}

// NewServiceWithLogger creates a Service with the provided logger.
func NewServiceWithLogger(users UserRepository, hasher PasswordHasher, tokens *TokenService, throttle *LoginThrottle, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	s, err := NewService(users, hasher, tokens, throttle)
	if err != nil {
		return nil, err
	}
	s.logger = logger
	return s, nil
}

// Register creates a new account and logs the caller in immediately.
//
// requestedRole other than RoleUser (or empty) is a privileged assignment
// and requires actor to be an authenticated admin; self-service registration
// always yields RoleUser. Validation reports every violated rule at once.
// A duplicate username yields CodeUsernameTaken with no partial state: the
// single INSERT either lands or it doesn't, with the store's unique
// constraint as the backstop against races.
func (s *Service) Register(ctx context.Context, username, password string, requestedRole Role, actor *Identity) (*AuthResult, error) {
	if violations := ValidateCredentials(username, password); len(violations) > 0 {
		return nil, oops.Code(CodeValidation).
			With("violations", violations).
			Errorf("registration input is invalid")
	}

	role := requestedRole
	if role == "" {
		role = RoleUser
	}
	if role != RoleUser && (actor == nil || actor.Role != RoleAdmin) {
		return nil, oops.Code(CodeForbidden).
			With("requested_role", string(role)).
			Errorf("assigning a privileged role requires an admin")
	}

	_, err := s.users.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, oops.Code(CodeUsernameTaken).
			With("username", username).
			Errorf("username already exists")
	case !errors.Is(err, ErrNotFound):
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "get user by username").
			Wrap(err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := NewUser(username, hash, role)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return nil, oops.Code(CodeUsernameTaken).
				With("username", username).
				Errorf("username already exists")
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "insert user").
			Wrap(err)
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "issue token").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "user registered",
		"user_id", user.ID.String(),
		"role", string(user.Role),
	)

	return &AuthResult{User: user.Summary(), Token: token}, nil
}

// Login authenticates a user and issues a bearer token.
//
// The throttle gate runs first and records the attempt whatever its outcome,
// so malformed or wrong-credential requests still consume quota. An unknown
// username and a wrong password return the same generic CodeInvalidCredentials
// error; a dummy hash is verified when the user is absent so response time
// does not reveal which case occurred.
func (s *Service) Login(ctx context.Context, username, password, clientIdentity string) (*AuthResult, error) {
	if allowed, retryAfter := s.throttle.Allow(clientIdentity); !allowed {
		return nil, oops.Code(CodeThrottled).
			With("retry_after", retryAfter).
			Errorf("too many login attempts")
	}

	user, lookupErr := s.users.GetByUsername(ctx, username)

	targetHash := dummyPasswordHash
	userExists := false
	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get user by username").
				Wrap(lookupErr)
		}
	} else {
		targetHash = user.PasswordHash
		userExists = true
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if userExists {
			// Corrupt stored hash. The client sees the generic
			// credential error; the corruption is logged for alerting.
			s.logger.ErrorContext(ctx, "stored password hash is corrupt",
				"user_id", user.ID.String(),
				"error", verifyErr,
			)
		}
		return nil, invalidCredentials()
	}

	if !userExists || !valid {
		return nil, invalidCredentials()
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "issue token").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		"user_id", user.ID.String(),
		"role", string(user.Role),
	)

	return &AuthResult{User: user.Summary(), Token: token}, nil
}

// Logout acknowledges a client-side token discard. Tokens are stateless
// bearer credentials with no server-side record, so there is nothing to
// revoke: a token issued before logout stays valid until its natural expiry.
// That limitation is by contract, not an oversight.
func (s *Service) Logout(ctx context.Context, actor *Identity) error {
	if actor != nil {
		s.logger.InfoContext(ctx, "user logged out",
			"user_id", actor.SubjectID.String(),
		)
	}
	return nil
}

func invalidCredentials() error {
	return oops.Code(CodeInvalidCredentials).Errorf("invalid username or password")
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RBAC-Project Contributors

package server

import (
	"encoding/json"
	"net/http"

	"github.com/Chandrateja1212/RBAC-Project/internal/auth"
)

type registerRequest struct {
	Username string    `json:"username"`
	Password string    `json:"password"`
	Role     auth.Role `json:"role,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleRegister creates an account and logs the caller in immediately.
// A bearer token is optional here: it is only consulted when the request
// asks for a privileged role, which requires an authenticated admin.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, messageResponse{
			Message: "request body must be valid JSON",
		})
		return
	}

	var actor *auth.Identity
	if token := bearerToken(r); token != "" {
		// Best effort: an unverifiable token just means no actor, and
		// privileged role requests then fail in the service.
		if id, err := s.guard.Authorize(token, auth.RoleAdmin); err == nil {
			actor = id
		}
	}

	result, err := s.auth.Register(r.Context(), req.Username, req.Password, req.Role, actor)
	if err != nil {
		s.recordRegistration(auth.ErrorCode(err))
		s.writeError(w, r, err)
		return
	}
	s.recordRegistration("")

	s.writeJSON(w, http.StatusCreated, authResponse{
		Success: true,
		Message: "user registered successfully",
		User:    result.User,
		Token:   result.Token,
	})
}

// handleLogin authenticates and returns a fresh bearer token. Malformed
// bodies still consume throttle quota so a flood of broken requests cannot
// skirt the attempt counter.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	identity := clientIdentity(r)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if _, loginErr := s.auth.Login(r.Context(), "", "", identity); auth.ErrorCode(loginErr) == auth.CodeThrottled {
			s.recordLogin("throttled")
			s.writeError(w, r, loginErr)
			return
		}
		s.recordLogin("invalid_credentials")
		s.writeJSON(w, http.StatusBadRequest, messageResponse{
			Message: "please provide both username and password",
		})
		return
	}

	result, err := s.auth.Login(r.Context(), req.Username, req.Password, identity)
	if err != nil {
		s.recordLogin(loginOutcome(err))
		s.writeError(w, r, err)
		return
	}
	s.recordLogin("success")

	s.writeJSON(w, http.StatusOK, authResponse{
		Success: true,
		Message: "login successful",
		User:    result.User,
		Token:   result.Token,
	})
}

// handleLogout acknowledges a client-side token discard. There is no
// server-side session to destroy; the client drops its copy of the token.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), identityFrom(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, messageResponse{
		Success: true,
		Message: "logged out successfully",
	})
}

// handleWelcome builds the handler for a role-gated demo route.
func (s *Server) handleWelcome(message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := identityFrom(r)
		s.writeJSON(w, http.StatusOK, identityResponse{
			Success: true,
			Message: message,
			User: identityBody{
				ID:   identity.SubjectID.String(),
				Role: identity.Role,
			},
		})
	}
}

func (s *Server) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusNotFound, messageResponse{
		Message: "route not found",
	})
}

func (s *Server) recordLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.LoginsTotal.WithLabelValues(outcome).Inc()
	}
}

func (s *Server) recordRegistration(code string) {
	if s.metrics == nil {
		return
	}
	outcome := map[string]string{
		"":                     "success",
		auth.CodeValidation:    "validation",
		auth.CodeUsernameTaken: "conflict",
		auth.CodeForbidden:     "forbidden",
	}[code]
	if outcome == "" {
		outcome = "error"
	}
	s.metrics.RegistrationsTotal.WithLabelValues(outcome).Inc()
}

func loginOutcome(err error) string {
	switch auth.ErrorCode(err) {
	case auth.CodeInvalidCredentials:
		return "invalid_credentials"
	case auth.CodeThrottled:
		return "throttled"
	default:
		return "error"
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RBAC-Project Contributors

package server

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/Chandrateja1212/RBAC-Project/internal/auth"
	"github.com/Chandrateja1212/RBAC-Project/pkg/errutil"
)

// authResponse is the body of a successful register or login.
type authResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    auth.Summary `json:"user"`
	Token   string       `json:"token"`
}

// messageResponse is a generic success/failure body.
type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// validationResponse carries every violated rule at once.
type validationResponse struct {
	Success bool     `json:"success"`
	Errors  []string `json:"errors"`
}

// identityResponse is the body of the role-gated demo routes.
type identityResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    identityBody `json:"user"`
}

type identityBody struct {
	ID   string    `json:"id"`
	Role auth.Role `json:"role"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps an auth error to a client-visible outcome. Internal detail
// stays in the server log; the client sees only the class-level message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch auth.ErrorCode(err) {
	case auth.CodeValidation:
		s.writeJSON(w, http.StatusBadRequest, validationResponse{
			Errors: auth.Violations(err),
		})
	case auth.CodeUsernameTaken:
		s.writeJSON(w, http.StatusConflict, messageResponse{
			Message: "username already exists",
		})
	case auth.CodeInvalidCredentials:
		s.writeJSON(w, http.StatusUnauthorized, messageResponse{
			Message: "invalid credentials",
		})
	case auth.CodeThrottled:
		retryAfter := auth.RetryAfter(err)
		seconds := int(math.Ceil(retryAfter.Seconds()))
		if seconds > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
		}
		s.writeJSON(w, http.StatusTooManyRequests, messageResponse{
			Message: "too many login attempts, please try again later",
		})
	case auth.CodeUnauthenticated:
		s.writeJSON(w, http.StatusUnauthorized, messageResponse{
			Message: "authentication required",
		})
	case auth.CodeForbidden:
		s.writeJSON(w, http.StatusForbidden, messageResponse{
			Message: "access denied",
		})
	default:
		errutil.LogError(s.logger, "request failed", err)
		s.writeJSON(w, http.StatusInternalServerError, messageResponse{
			Message: "internal server error",
		})
	}
}

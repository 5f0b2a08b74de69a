// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RBAC-Project Contributors

package server

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Chandrateja1212/RBAC-Project/internal/auth"
)

type ctxKey string

const ctxIdentity ctxKey = "identity"

// bearerToken extracts the token from the Authorization header. The header
// is the single canonical credential channel; tokens are never read from or
// written to cookies.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// clientIdentity derives the throttle key from the request's source address.
func clientIdentity(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// identityFrom returns the verified identity stored by requireRoles, or nil.
func identityFrom(r *http.Request) *auth.Identity {
	id, _ := r.Context().Value(ctxIdentity).(*auth.Identity)
	return id
}

// requireRoles gates a handler behind the guard: the bearer token must
// verify and its role must be in the allow-list. The verified identity is
// placed on the request context for the handler.
func (s *Server) requireRoles(next http.HandlerFunc, allowed ...auth.Role) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := s.guard.Authorize(bearerToken(r), allowed...)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), ctxIdentity, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withRequestLogging logs every request and records the request counter.
func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Method + " " + r.URL.Path
		if s.metrics != nil {
			s.metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		}
		s.logger.InfoContext(r.Context(), "request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

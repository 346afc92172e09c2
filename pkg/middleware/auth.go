package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/buildforge/depot/pkg/contextkeys"
	"github.com/buildforge/depot/pkg/observability"
	"github.com/buildforge/depot/pkg/session"
)

// Authentication resolves the Authorization header into a Session. It does
// not enforce authentication: a request without the header proceeds
// anonymously, with no Session in its context. A header that is present but
// unresolvable is rejected.
type Authentication struct {
	resolver *session.Resolver
	logger   *observability.Logger
}

// NewAuthentication creates the authentication middleware.
func NewAuthentication(resolver *session.Resolver, logger *observability.Logger) *Authentication {
	return &Authentication{resolver: resolver, logger: logger}
}

// Handler wraps an HTTP handler with bearer-token resolution.
func (m *Authentication) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			// Anonymous: not an error, just no session
			next.ServeHTTP(w, r)
			return
		}

		// Format: "Bearer <token>", exactly two fields
		fields := strings.Fields(authHeader)
		if len(fields) != 2 || fields[0] != "Bearer" {
			errorResponse(w, http.StatusUnauthorized, "malformed authorization header")
			return
		}

		sess, err := m.resolver.Authenticate(r.Context(), fields[1])
		if err != nil {
			switch {
			case errors.Is(err, session.ErrStorage):
				m.logger.WithError(err).Error("session resolution hit storage failure")
				errorResponse(w, http.StatusServiceUnavailable, "backing store unavailable")
			case errors.Is(err, session.ErrSystem):
				m.logger.WithError(err).Error("session resolution hit internal inconsistency")
				errorResponse(w, http.StatusInternalServerError, "internal error")
			default:
				errorResponse(w, http.StatusUnauthorized, "unauthorized")
			}
			return
		}

		ctx := context.WithValue(r.Context(), contextkeys.SessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFromRequest extracts the resolved session, if any, from a request.
func SessionFromRequest(r *http.Request) *session.Session {
	sess, _ := r.Context().Value(contextkeys.SessionKey).(*session.Session)
	return sess
}

// RequireSession wraps a handler that must run authenticated.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFromRequest(r) == nil {
			errorResponse(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + message + `"}`))
}

package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/buildforge/depot/pkg/contextkeys"
)

// RequestIDHeader is the inbound/outbound request id header.
const RequestIDHeader = "X-Request-ID"

// RequestID attaches a request id to the context and response, reusing the
// caller's id when one was supplied.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), contextkeys.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromRequest extracts the request id, if any.
func RequestIDFromRequest(r *http.Request) string {
	id, _ := r.Context().Value(contextkeys.RequestIDKey).(string)
	return id
}

// Package contextkeys provides centralized context key definitions
//
// IMPORTANT: All context keys used across the application must be defined here.
// This prevents typos, documents dependencies, and makes key usage discoverable.
package contextkeys

// Key is the type for context keys to prevent collisions
type Key string

const (
	// SessionKey contains the resolved *session.Session for the request.
	// Set by: middleware.Authentication (pkg/middleware/auth.go)
	// Absent when the request carried no Authorization header (anonymous).
	// Type: *session.Session
	SessionKey Key = "session"

	// RequestIDKey contains the request ID string (UUID)
	// Set by: middleware.RequestID (pkg/middleware/requestid.go)
	// Used by: Logger, handlers
	// Type: string
	RequestIDKey Key = "request_id"
)

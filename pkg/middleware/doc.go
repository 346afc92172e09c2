// Package middleware provides HTTP middleware for the depot API.
//
// Authentication parses "Authorization: Bearer <token>" and resolves it via
// pkg/session; a missing header is anonymous pass-through, a malformed or
// invalid one is a rejection. RequestID tags each request with a UUID for
// log correlation. Both compose as standard func(http.Handler) http.Handler
// wrappers and work with gorilla/mux Use().
package middleware

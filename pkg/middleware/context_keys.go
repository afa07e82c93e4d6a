// Package middleware provides HTTP middleware components for the service.
package middleware

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

const (
	// RequestIDKey is the context key for the request ID.
	RequestIDKey ContextKey = "request_id"
)

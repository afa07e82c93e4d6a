// Package router provides an abstraction layer for HTTP routing with
// pluggable implementations (gorilla/mux, gin-gonic).
package router

import "net/http"

// Router is the routing contract shared by the adapter implementations.
type Router interface {
	GET(path string, handler HandlerFunc, middleware ...MiddlewareFunc)
	POST(path string, handler HandlerFunc, middleware ...MiddlewareFunc)
	PUT(path string, handler HandlerFunc, middleware ...MiddlewareFunc)
	DELETE(path string, handler HandlerFunc, middleware ...MiddlewareFunc)
	PATCH(path string, handler HandlerFunc, middleware ...MiddlewareFunc)

	// Group creates a route group with a common prefix and middleware.
	Group(prefix string, middleware ...MiddlewareFunc) Router

	// Use applies middleware to all routes.
	Use(middleware ...MiddlewareFunc)

	// ServeHTTP implements http.Handler.
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}

// HandlerFunc is the function signature for route handlers.
type HandlerFunc func(Context) error

// MiddlewareFunc wraps a HandlerFunc and returns a new HandlerFunc.
type MiddlewareFunc func(HandlerFunc) HandlerFunc

// Context provides router-agnostic access to the request and response.
type Context interface {
	Request() *http.Request
	SetRequest(r *http.Request)
	Response() ResponseWriter
	SetResponse(w ResponseWriter)

	// Param returns a URL parameter by name (e.g. /pessoas/:id).
	Param(name string) string

	// Query returns a query parameter by name.
	Query(name string) string

	// Bind parses the JSON request body into v.
	Bind(v any) error

	// JSON sends a JSON response with the given status code.
	JSON(code int, v any) error

	// String sends a plain text response with the given status code.
	String(code int, s string) error

	Get(key string) any
	Set(key string, value any)
}

// ResponseWriter wraps http.ResponseWriter and tracks the response status.
type ResponseWriter interface {
	http.ResponseWriter

	// Status returns the HTTP status code of the response.
	Status() int

	// Written reports whether the response has been written.
	Written() bool
}

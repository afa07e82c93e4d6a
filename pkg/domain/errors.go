// Package domain holds the entity model shared by the CRUD engine, the
// relationship service and the HTTP handlers.
package domain

import "errors"

// Sentinel errors for the request-boundary taxonomy. Handlers map these to
// HTTP status codes; anything else is treated as a server-side failure.
var (
	// ErrInvalidID marks an external identifier that does not parse as an ObjectID.
	ErrInvalidID = errors.New("invalid identifier")

	// ErrUnknownKind marks an entity kind tag that is not registered.
	ErrUnknownKind = errors.New("unknown entity kind")

	// ErrUnknownField marks a search field that is not part of the entity schema.
	ErrUnknownField = errors.New("unknown field")

	// ErrNotFound marks a well-formed identifier with no matching document,
	// including referenced entities during relationship maintenance.
	ErrNotFound = errors.New("not found")

	// ErrInvalidPage marks pagination parameters below 1.
	ErrInvalidPage = errors.New("invalid pagination parameters")

	// ErrInvalidPayload marks a request body that does not decode into the
	// expected shape.
	ErrInvalidPayload = errors.New("invalid payload")
)

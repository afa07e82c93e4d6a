// Package controller provides HTTP response helpers shared by the API
// handlers.
package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/canteiro/canteiro/pkg/domain"
	"github.com/canteiro/canteiro/pkg/middleware/requestid"
)

// ErrorResponse represents the consistent error response format.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// MapError maps domain errors to HTTP responses.
func MapError(ctx context.Context, err error) (int, ErrorResponse) {
	requestID := requestid.GetRequestID(ctx)

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{
			Error:     "not_found",
			Code:      "resource.not_found",
			Message:   err.Error(),
			RequestID: requestID,
		}
	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrUnknownKind),
		errors.Is(err, domain.ErrUnknownField),
		errors.Is(err, domain.ErrInvalidPage),
		errors.Is(err, domain.ErrInvalidPayload):
		return http.StatusBadRequest, ErrorResponse{
			Error:     "validation_error",
			Code:      "validation.failed",
			Message:   err.Error(),
			RequestID: requestID,
		}
	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error:     "internal_server_error",
			Message:   "an unexpected error occurred",
			RequestID: requestID,
		}
	}
}

// BindError wraps a request body decoding failure so it maps to HTTP 400.
func BindError(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
}

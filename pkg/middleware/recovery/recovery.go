// Package recovery provides panic recovery middleware.
package recovery

import (
	"net/http"
	"runtime/debug"

	"github.com/canteiro/canteiro/pkg/middleware/requestid"
	"github.com/canteiro/canteiro/pkg/observability/logger"
	"github.com/canteiro/canteiro/pkg/server/router"
)

// Recovery creates middleware that recovers from panics in HTTP handlers. The
// panic is logged with its stack trace and the client receives HTTP 500.
func Recovery(log logger.Logger) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			defer func() {
				if r := recover(); r != nil {
					requestID := requestid.GetRequestID(c.Request().Context())

					log.Error("panic recovered",
						"request_id", requestID,
						"panic", r,
						"stack", string(debug.Stack()),
					)

					if !c.Response().Written() {
						response := map[string]any{
							"error":      "internal_server_error",
							"message":    "an unexpected error occurred",
							"request_id": requestID,
						}
						if err := c.JSON(http.StatusInternalServerError, response); err != nil {
							log.Error("failed to send error response",
								"request_id", requestID,
								"error", err,
							)
						}
					}
				}
			}()

			return next(c)
		}
	}
}

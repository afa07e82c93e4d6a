// Package logging provides request logging middleware.
package logging

import (
	"strings"
	"time"

	"github.com/canteiro/canteiro/pkg/middleware/requestid"
	"github.com/canteiro/canteiro/pkg/observability/logger"
	"github.com/canteiro/canteiro/pkg/server/router"
)

// Config configures request logging behavior.
type Config struct {
	Enabled bool
	// ExcludedPathPrefixes lists path prefixes that are never logged, such
	// as health and metrics endpoints.
	ExcludedPathPrefixes []string
}

// DefaultConfig returns the default request logging behavior.
func DefaultConfig() Config {
	return Config{Enabled: true}
}

// Logging creates middleware with default configuration.
func Logging(log logger.Logger) router.MiddlewareFunc {
	return WithConfig(log, DefaultConfig())
}

// WithConfig creates middleware that logs each request's method, path, status
// and duration, correlated by request ID.
func WithConfig(log logger.Logger, cfg Config) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			path := c.Request().URL.Path
			if !cfg.Enabled || excluded(cfg.ExcludedPathPrefixes, path) {
				return next(c)
			}

			start := time.Now()
			requestID := requestid.GetRequestID(c.Request().Context())
			method := c.Request().Method

			err := next(c)
			duration := time.Since(start)
			status := c.Response().Status()

			if err != nil {
				log.Error("request failed",
					"request_id", requestID,
					"method", method,
					"path", path,
					"status", status,
					"duration_ms", duration.Milliseconds(),
					"error", err,
				)
				return err
			}

			log.Info("request completed",
				"request_id", requestID,
				"method", method,
				"path", path,
				"status", status,
				"duration_ms", duration.Milliseconds(),
			)
			return nil
		}
	}
}

func excluded(prefixes []string, path string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Package metrics provides Prometheus instrumentation middleware.
package metrics

import (
	"time"

	"github.com/canteiro/canteiro/pkg/observability/metrics"
	"github.com/canteiro/canteiro/pkg/server/router"
)

// Metrics creates middleware that records request duration, request count and
// in-flight gauge for every HTTP request.
func Metrics() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			metrics.IncrementInFlight()
			defer metrics.DecrementInFlight()

			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			metrics.RecordHTTPMetrics(
				c.Request().Method,
				c.Request().URL.Path,
				c.Response().Status(),
				duration,
			)

			return err
		}
	}
}

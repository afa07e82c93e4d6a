package server

import (
	"net/http"
	"time"

	"github.com/canteiro/canteiro/pkg/config"
	"github.com/canteiro/canteiro/pkg/health"
	"github.com/canteiro/canteiro/pkg/middleware/recovery"
	"github.com/canteiro/canteiro/pkg/middleware/requestid"
	"github.com/canteiro/canteiro/pkg/observability/logger"
	"github.com/canteiro/canteiro/pkg/observability/metrics"
	"github.com/canteiro/canteiro/pkg/server/router"
)

// ManagementServer serves health and metrics endpoints on a port separate
// from the public API.
type ManagementServer struct {
	*Server
	healthRegistry  *health.Registry
	metricsRegistry *metrics.Registry
}

// NewManagementServer creates a management server exposing:
//   - /health: liveness check (always 200)
//   - /ready: readiness check (503 when a dependency is unhealthy)
//   - /metrics: Prometheus metrics
func NewManagementServer(
	cfg config.ManagementConfig,
	r router.Router,
	log logger.Logger,
	healthRegistry *health.Registry,
	metricsRegistry *metrics.Registry,
) *ManagementServer {
	r.Use(
		requestid.RequestID(),
		recovery.Recovery(log),
	)

	serverCfg := Config{
		Port:         cfg.Port,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	s := &ManagementServer{
		Server:          NewServer(serverCfg, r, log),
		healthRegistry:  healthRegistry,
		metricsRegistry: metricsRegistry,
	}

	r.GET("/health", s.handleHealth)
	r.GET("/ready", s.handleReady)
	r.GET("/metrics", s.handleMetrics)

	return s
}

func (s *ManagementServer) handleHealth(c router.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"status": "healthy"})
}

func (s *ManagementServer) handleReady(c router.Context) error {
	result := s.healthRegistry.Check(c.Request().Context())
	if !result.IsHealthy() {
		return c.JSON(http.StatusServiceUnavailable, result)
	}
	return c.JSON(http.StatusOK, result)
}

func (s *ManagementServer) handleMetrics(c router.Context) error {
	s.metricsRegistry.Handler().ServeHTTP(c.Response(), c.Request())
	return nil
}

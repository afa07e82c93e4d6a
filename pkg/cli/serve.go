package cli

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/canteiro/canteiro/pkg/api"
	"github.com/canteiro/canteiro/pkg/config"
	"github.com/canteiro/canteiro/pkg/health"
	loggingmw "github.com/canteiro/canteiro/pkg/middleware/logging"
	metricsmw "github.com/canteiro/canteiro/pkg/middleware/metrics"
	"github.com/canteiro/canteiro/pkg/middleware/recovery"
	"github.com/canteiro/canteiro/pkg/middleware/requestid"
	"github.com/canteiro/canteiro/pkg/observability/logger"
	"github.com/canteiro/canteiro/pkg/observability/metrics"
	"github.com/canteiro/canteiro/pkg/registry"
	"github.com/canteiro/canteiro/pkg/relations"
	"github.com/canteiro/canteiro/pkg/repository"
	"github.com/canteiro/canteiro/pkg/server"
	"github.com/canteiro/canteiro/pkg/server/router/factory"
	"github.com/canteiro/canteiro/pkg/store/mongodb"
	"github.com/canteiro/canteiro/pkg/version"
)

// Serve connects to MongoDB, mounts the API and runs the public and
// management servers until ctx is cancelled.
func Serve(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	log.Info("starting service", "version", version.Current(cfg.Service.Name).String(), "environment", cfg.Service.Environment)

	adapter, err := mongodb.NewAdapter(mongodb.Config{
		URL:              cfg.Database.URL,
		Database:         cfg.Database.Database,
		ConnectTimeout:   cfg.Database.ConnectTimeout,
		OperationTimeout: cfg.Database.OperationTimeout,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	defer adapter.Close()

	engine, err := repository.NewEngine(registry.New(), adapter, log)
	if err != nil {
		return err
	}
	rel, err := relations.NewService(engine, log)
	if err != nil {
		return err
	}
	handlers, err := api.NewAPI(engine, rel, log)
	if err != nil {
		return err
	}

	publicRouter, err := factory.NewRouter(cfg.RouterType)
	if err != nil {
		return err
	}
	publicRouter.Use(
		requestid.RequestID(),
		loggingmw.Logging(log),
		recovery.Recovery(log),
	)
	if cfg.Observability.MetricsEnabled {
		publicRouter.Use(metricsmw.Metrics())
	}
	handlers.Register(publicRouter)

	publicServer := server.NewServer(server.Config{
		Port:         cfg.HTTP.Port,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}, publicRouter, log)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return publicServer.Start(groupCtx)
	})

	if cfg.Management.Enabled {
		healthRegistry := health.NewRegistry()
		healthRegistry.Register(health.NewAdapterChecker("mongodb", adapter, cfg.Database.OperationTimeout))

		mgmtRouter, err := factory.NewRouter(cfg.RouterType)
		if err != nil {
			return err
		}
		mgmtServer := server.NewManagementServer(cfg.Management, mgmtRouter, log, healthRegistry, metrics.NewRegistry())
		group.Go(func() error {
			return mgmtServer.Start(groupCtx)
		})
	}

	return group.Wait()
}

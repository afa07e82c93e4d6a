// Package cli wires the cobra command tree: serve, version, config show and
// healthcheck.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/canteiro/canteiro/pkg/config"
	"github.com/canteiro/canteiro/pkg/observability/logger"
	"github.com/canteiro/canteiro/pkg/store/mongodb"
	"github.com/canteiro/canteiro/pkg/version"
)

const (
	serviceName = "canteiro"
	envPrefix   = "CANTEIRO"
)

// NewRootCommand builds the root command with all subcommands attached.
func NewRootCommand() *cobra.Command {
	var cfgPath string

	rootCmd := &cobra.Command{
		Use:   serviceName,
		Short: "REST backend for land parcels, constructions and works",
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config-file", "c", "", "config file path")

	loadConfig := func() (*config.Config, logger.Logger, error) {
		loader := config.NewViperLoader(cfgPath, envPrefix)
		cfg, err := loader.Load()
		if err != nil {
			return nil, nil, err
		}

		level, err := logger.ParseLogLevel(cfg.Observability.LogLevel)
		if err != nil {
			return nil, nil, err
		}
		format, err := logger.ParseLogFormat(cfg.Observability.LogFormat)
		if err != nil {
			return nil, nil, err
		}
		log, err := logger.NewZapLogger(logger.Config{Level: level, Format: format})
		if err != nil {
			return nil, nil, err
		}
		return cfg, log, nil
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return Serve(ctx, cfg, log)
		},
	}
	rootCmd.AddCommand(serveCmd)
	rootCmd.RunE = serveCmd.RunE

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Current(serviceName)
			fmt.Printf("Service:    %s\n", info.Service)
			fmt.Printf("Version:    %s\n", info.Version)
			fmt.Printf("Commit:     %s\n", info.Commit)
			fmt.Printf("Build Time: %s\n", info.BuildTime)
		},
	})

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to render config: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
			return nil
		},
	})
	rootCmd.AddCommand(configCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "healthcheck",
		Short: "Check connectivity to MongoDB and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			adapter, err := mongodb.NewAdapter(mongodb.Config{
				URL:              cfg.Database.URL,
				Database:         cfg.Database.Database,
				ConnectTimeout:   cfg.Database.ConnectTimeout,
				OperationTimeout: cfg.Database.OperationTimeout,
			}, log)
			if err != nil {
				return fmt.Errorf("mongodb unreachable: %w", err)
			}
			defer adapter.Close()

			if err := adapter.Ping(cmd.Context()); err != nil {
				return fmt.Errorf("mongodb ping failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	})

	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Loader defines the interface for loading configuration.
type Loader interface {
	Load() (*Config, error)
	Validate(*Config) error
}

// ViperLoader implements Loader using Viper.
type ViperLoader struct {
	configFile string
	envPrefix  string
}

// NewViperLoader creates a loader. configFile may be empty; envPrefix is the
// prefix for environment variables (e.g. "CANTEIRO").
func NewViperLoader(configFile, envPrefix string) *ViperLoader {
	return &ViperLoader{configFile: configFile, envPrefix: envPrefix}
}

// Load loads configuration with precedence ENV > file > defaults.
func (l *ViperLoader) Load() (*Config, error) {
	v := viper.New()

	l.setDefaults(v, DefaultConfig())

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", l.configFile, err)
		}
	}

	v.SetEnvPrefix(l.envPrefix)
	l.bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := l.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (l *ViperLoader) setDefaults(v *viper.Viper, defaults Config) {
	v.SetDefault("router_type", defaults.RouterType)
	v.SetDefault("service.name", defaults.Service.Name)
	v.SetDefault("service.environment", defaults.Service.Environment)
	v.SetDefault("http.port", defaults.HTTP.Port)
	v.SetDefault("http.read_timeout", defaults.HTTP.ReadTimeout)
	v.SetDefault("http.write_timeout", defaults.HTTP.WriteTimeout)
	v.SetDefault("http.idle_timeout", defaults.HTTP.IdleTimeout)
	v.SetDefault("management.enabled", defaults.Management.Enabled)
	v.SetDefault("management.port", defaults.Management.Port)
	v.SetDefault("management.read_timeout", defaults.Management.ReadTimeout)
	v.SetDefault("management.write_timeout", defaults.Management.WriteTimeout)
	v.SetDefault("database.url", defaults.Database.URL)
	v.SetDefault("database.database", defaults.Database.Database)
	v.SetDefault("database.connect_timeout", defaults.Database.ConnectTimeout)
	v.SetDefault("database.operation_timeout", defaults.Database.OperationTimeout)
	v.SetDefault("observability.log_level", defaults.Observability.LogLevel)
	v.SetDefault("observability.log_format", defaults.Observability.LogFormat)
	v.SetDefault("observability.metrics_enabled", defaults.Observability.MetricsEnabled)
}

func (l *ViperLoader) bindEnvVars(v *viper.Viper) {
	v.BindEnv("router_type", l.prefixedEnv("ROUTER_TYPE"))
	v.BindEnv("service.name", l.prefixedEnv("SERVICE_NAME"))
	v.BindEnv("service.environment", l.prefixedEnv("SERVICE_ENVIRONMENT"))

	v.BindEnv("http.port", l.prefixedEnv("HTTP_PORT"))
	v.BindEnv("http.read_timeout", l.prefixedEnv("HTTP_READ_TIMEOUT"))
	v.BindEnv("http.write_timeout", l.prefixedEnv("HTTP_WRITE_TIMEOUT"))
	v.BindEnv("http.idle_timeout", l.prefixedEnv("HTTP_IDLE_TIMEOUT"))

	v.BindEnv("management.enabled", l.prefixedEnv("MGMT_ENABLED"))
	v.BindEnv("management.port", l.prefixedEnv("MGMT_PORT"))
	v.BindEnv("management.read_timeout", l.prefixedEnv("MGMT_READ_TIMEOUT"))
	v.BindEnv("management.write_timeout", l.prefixedEnv("MGMT_WRITE_TIMEOUT"))

	v.BindEnv("database.url", l.prefixedEnv("DATABASE_URL"))
	v.BindEnv("database.database", l.prefixedEnv("DATABASE_NAME"))
	v.BindEnv("database.connect_timeout", l.prefixedEnv("DATABASE_CONNECT_TIMEOUT"))
	v.BindEnv("database.operation_timeout", l.prefixedEnv("DATABASE_OPERATION_TIMEOUT"))

	v.BindEnv("observability.log_level", l.prefixedEnv("LOG_LEVEL"))
	v.BindEnv("observability.log_format", l.prefixedEnv("LOG_FORMAT"))
	v.BindEnv("observability.metrics_enabled", l.prefixedEnv("METRICS_ENABLED"))
}

func (l *ViperLoader) prefixedEnv(name string) string {
	if l.envPrefix == "" {
		return name
	}
	return l.envPrefix + "_" + name
}

// Validate checks the loaded configuration for invalid values.
func (l *ViperLoader) Validate(cfg *Config) error {
	if cfg.HTTP.Port < 1 || cfg.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", cfg.HTTP.Port)
	}
	if cfg.Management.Enabled {
		if cfg.Management.Port < 1 || cfg.Management.Port > 65535 {
			return fmt.Errorf("management.port must be between 1 and 65535, got %d", cfg.Management.Port)
		}
		if cfg.Management.Port == cfg.HTTP.Port {
			return fmt.Errorf("management.port must differ from http.port (%d)", cfg.HTTP.Port)
		}
	}
	if strings.TrimSpace(cfg.Database.URL) == "" {
		return fmt.Errorf("database.url must not be empty")
	}
	if strings.TrimSpace(cfg.Database.Database) == "" {
		return fmt.Errorf("database.database must not be empty")
	}
	switch strings.ToLower(cfg.Observability.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("observability.log_level must be one of debug, info, warn, error; got %q", cfg.Observability.LogLevel)
	}
	switch strings.ToLower(cfg.Observability.LogFormat) {
	case "json", "console":
	default:
		return fmt.Errorf("observability.log_format must be json or console, got %q", cfg.Observability.LogFormat)
	}
	return nil
}

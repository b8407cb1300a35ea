package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from the YAML file at path, applies defaults and
// MENTAT_* environment overrides, and validates the result. An empty path
// yields the defaulted configuration with environment overrides applied.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// applyEnvOverrides applies MENTAT_SECTION_FIELD environment variables on
// top of the loaded configuration.
func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Server.ListenAddress, "MENTAT_SERVER_LISTEN_ADDRESS")
	setString(&cfg.Server.APIPrefix, "MENTAT_SERVER_API_PREFIX")
	setString(&cfg.Server.ProxyPrefix, "MENTAT_SERVER_PROXY_PREFIX")
	setDuration(&cfg.Server.ReadTimeout, "MENTAT_SERVER_READ_TIMEOUT")
	setDuration(&cfg.Server.WriteTimeout, "MENTAT_SERVER_WRITE_TIMEOUT")
	setDuration(&cfg.Server.IdleTimeout, "MENTAT_SERVER_IDLE_TIMEOUT")
	setDuration(&cfg.Server.ShutdownTimeout, "MENTAT_SERVER_SHUTDOWN_TIMEOUT")
	setDuration(&cfg.Server.RequestTimeout, "MENTAT_SERVER_REQUEST_TIMEOUT")
	setBool(&cfg.Server.CORS.Enabled, "MENTAT_SERVER_CORS_ENABLED")

	setString(&cfg.Registry.Backend, "MENTAT_REGISTRY_BACKEND")
	setString(&cfg.Registry.Path, "MENTAT_REGISTRY_PATH")
	setBool(&cfg.Registry.Watch, "MENTAT_REGISTRY_WATCH")
	setBool(&cfg.Registry.AllowCorruptReset, "MENTAT_REGISTRY_ALLOW_CORRUPT_RESET")

	setDuration(&cfg.Scanner.Timeout, "MENTAT_SCANNER_TIMEOUT")

	setDuration(&cfg.Proxy.Timeout, "MENTAT_PROXY_TIMEOUT")

	setBool(&cfg.Monitor.Enabled, "MENTAT_MONITOR_ENABLED")
	setString(&cfg.Monitor.Schedule, "MENTAT_MONITOR_SCHEDULE")
	setDuration(&cfg.Monitor.SweepTimeout, "MENTAT_MONITOR_SWEEP_TIMEOUT")

	setString(&cfg.Telemetry.Logging.Level, "MENTAT_TELEMETRY_LOGGING_LEVEL")
	setString(&cfg.Telemetry.Logging.Format, "MENTAT_TELEMETRY_LOGGING_FORMAT")
	setBool(&cfg.Telemetry.Metrics.Enabled, "MENTAT_TELEMETRY_METRICS_ENABLED")
	setString(&cfg.Telemetry.Metrics.Path, "MENTAT_TELEMETRY_METRICS_PATH")
	setString(&cfg.Telemetry.Metrics.Namespace, "MENTAT_TELEMETRY_METRICS_NAMESPACE")
}

func setString(dst *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func setBool(dst *bool, key string) {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

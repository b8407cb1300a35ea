package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate checks the configuration for values that cannot work at runtime.
func Validate(cfg *Config) error {
	if cfg.Server.ListenAddress == "" {
		return fmt.Errorf("server.listen_address must not be empty")
	}
	if err := validatePrefix("server.api_prefix", cfg.Server.APIPrefix); err != nil {
		return err
	}
	if err := validatePrefix("server.proxy_prefix", cfg.Server.ProxyPrefix); err != nil {
		return err
	}
	if cfg.Server.APIPrefix == cfg.Server.ProxyPrefix {
		return fmt.Errorf("server.api_prefix and server.proxy_prefix must differ")
	}

	switch cfg.Registry.Backend {
	case "file", "sqlite", "memory":
	default:
		return fmt.Errorf("registry.backend must be file, sqlite, or memory, got %q", cfg.Registry.Backend)
	}
	if cfg.Registry.Backend != "memory" && cfg.Registry.Path == "" {
		return fmt.Errorf("registry.path must be set for the %s backend", cfg.Registry.Backend)
	}
	if cfg.Registry.Watch && cfg.Registry.Backend != "file" {
		return fmt.Errorf("registry.watch requires the file backend")
	}

	if cfg.Scanner.Timeout <= 0 {
		return fmt.Errorf("scanner.timeout must be positive")
	}
	if cfg.Proxy.Timeout <= 0 {
		return fmt.Errorf("proxy.timeout must be positive")
	}

	if cfg.Monitor.Enabled {
		if _, err := cron.ParseStandard(cfg.Monitor.Schedule); err != nil {
			return fmt.Errorf("monitor.schedule %q is not a valid cron expression: %w", cfg.Monitor.Schedule, err)
		}
	}

	switch strings.ToLower(cfg.Telemetry.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("telemetry.logging.level must be debug, info, warn, or error, got %q", cfg.Telemetry.Logging.Level)
	}
	switch strings.ToLower(cfg.Telemetry.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("telemetry.logging.format must be json or text, got %q", cfg.Telemetry.Logging.Format)
	}

	if cfg.Telemetry.Metrics.Enabled {
		if err := validatePrefix("telemetry.metrics.path", cfg.Telemetry.Metrics.Path); err != nil {
			return err
		}
	}

	return nil
}

func validatePrefix(field, value string) error {
	if value == "" {
		return fmt.Errorf("%s must not be empty", field)
	}
	if !strings.HasPrefix(value, "/") {
		return fmt.Errorf("%s must start with /, got %q", field, value)
	}
	if strings.HasSuffix(value, "/") {
		return fmt.Errorf("%s must not end with /, got %q", field, value)
	}
	return nil
}

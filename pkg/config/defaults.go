package config

import "time"

// ApplyDefaults fills in zero-valued fields with production defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = ":8080"
	}
	if cfg.Server.APIPrefix == "" {
		cfg.Server.APIPrefix = "/api/v1"
	}
	if cfg.Server.ProxyPrefix == "" {
		cfg.Server.ProxyPrefix = "/api/rosetta"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 120 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 60 * time.Second
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = 1 << 20
	}

	if cfg.Server.CORS.Enabled {
		if len(cfg.Server.CORS.AllowedOrigins) == 0 {
			cfg.Server.CORS.AllowedOrigins = []string{"*"}
		}
		if len(cfg.Server.CORS.AllowedMethods) == 0 {
			cfg.Server.CORS.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
		}
		if len(cfg.Server.CORS.AllowedHeaders) == 0 {
			cfg.Server.CORS.AllowedHeaders = []string{"Content-Type", "X-Request-ID"}
		}
		if cfg.Server.CORS.MaxAge == 0 {
			cfg.Server.CORS.MaxAge = 3600
		}
	}

	if cfg.Registry.Backend == "" {
		cfg.Registry.Backend = "file"
	}
	if cfg.Registry.Path == "" {
		switch cfg.Registry.Backend {
		case "sqlite":
			cfg.Registry.Path = "mentat.db"
		default:
			cfg.Registry.Path = "mentat.json"
		}
	}

	if cfg.Scanner.Timeout == 0 {
		cfg.Scanner.Timeout = 10 * time.Second
	}
	if cfg.Scanner.MaxIdleConns == 0 {
		cfg.Scanner.MaxIdleConns = 10
	}
	if cfg.Scanner.IdleConnTimeout == 0 {
		cfg.Scanner.IdleConnTimeout = 90 * time.Second
	}

	if cfg.Proxy.Timeout == 0 {
		cfg.Proxy.Timeout = 30 * time.Second
	}
	if cfg.Proxy.MaxIdleConnsPerHost == 0 {
		cfg.Proxy.MaxIdleConnsPerHost = 10
	}
	if cfg.Proxy.IdleConnTimeout == 0 {
		cfg.Proxy.IdleConnTimeout = 90 * time.Second
	}

	if cfg.Monitor.Schedule == "" {
		cfg.Monitor.Schedule = "@every 1m"
	}
	if cfg.Monitor.SweepTimeout == 0 {
		cfg.Monitor.SweepTimeout = 30 * time.Second
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "info"
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = "json"
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = "/metrics"
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = "mentat"
	}
}

// Default returns a fully defaulted configuration, the one used when no
// config file is given.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

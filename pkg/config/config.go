package config

import "time"

// Config is the root gateway configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Registry  RegistryConfig  `yaml:"registry"`
	Scanner   ScannerConfig   `yaml:"scanner"`
	Proxy     ProxyConfig     `yaml:"proxy"`
	Monitor   MonitorConfig   `yaml:"monitor"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig configures the HTTP listener and routing prefixes.
type ServerConfig struct {
	// ListenAddress is the host:port to bind.
	ListenAddress string `yaml:"listen_address"`

	// APIPrefix is the management API prefix.
	APIPrefix string `yaml:"api_prefix"`

	// ProxyPrefix is the reverse proxy prefix.
	ProxyPrefix string `yaml:"proxy_prefix"`

	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// RequestTimeout is the per-request ceiling applied by middleware.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	MaxHeaderBytes int `yaml:"max_header_bytes"`

	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig configures cross-origin access for browser-based clients.
type CORSConfig struct {
	Enabled          bool     `yaml:"enabled"`
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	ExposedHeaders   []string `yaml:"exposed_headers"`
	MaxAge           int      `yaml:"max_age"`
	AllowCredentials bool     `yaml:"allow_credentials"`
}

// RegistryConfig configures endpoint persistence.
type RegistryConfig struct {
	// Backend selects the storage backend: "file", "sqlite", or "memory".
	Backend string `yaml:"backend"`

	// Path is the registry file or database path. Unused by the memory
	// backend.
	Path string `yaml:"path"`

	// Watch reloads the registry when the file backend's file is edited
	// externally. Ignored by other backends.
	Watch bool `yaml:"watch"`

	// AllowCorruptReset starts with an empty registry when the persisted
	// store cannot be decoded, instead of refusing to start. The corrupt
	// store is overwritten on the next successful mutation.
	AllowCorruptReset bool `yaml:"allow_corrupt_reset"`
}

// ScannerConfig configures conformance probes.
type ScannerConfig struct {
	Timeout         time.Duration `yaml:"timeout"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

// ProxyConfig configures forwarded requests.
type ProxyConfig struct {
	Timeout             time.Duration `yaml:"timeout"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host"`
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout"`
}

// MonitorConfig configures periodic endpoint health sweeps.
type MonitorConfig struct {
	Enabled bool `yaml:"enabled"`

	// Schedule is a cron expression ("@every 1m", "*/5 * * * *", ...).
	Schedule string `yaml:"schedule"`

	SweepTimeout time.Duration `yaml:"sweep_timeout"`
}

// TelemetryConfig configures logging and metrics.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is the minimum level: debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is "json" or "text".
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mentat.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.ListenAddress != ":8080" {
		t.Errorf("listen address = %q", cfg.Server.ListenAddress)
	}
	if cfg.Server.APIPrefix != "/api/v1" {
		t.Errorf("api prefix = %q", cfg.Server.APIPrefix)
	}
	if cfg.Server.ProxyPrefix != "/api/rosetta" {
		t.Errorf("proxy prefix = %q", cfg.Server.ProxyPrefix)
	}
	if cfg.Registry.Backend != "file" {
		t.Errorf("registry backend = %q", cfg.Registry.Backend)
	}
	if cfg.Scanner.Timeout != 10*time.Second {
		t.Errorf("scanner timeout = %v", cfg.Scanner.Timeout)
	}
	if cfg.Telemetry.Logging.Format != "json" {
		t.Errorf("logging format = %q", cfg.Telemetry.Logging.Format)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: ":9999"
  api_prefix: /gateway
registry:
  backend: sqlite
  path: /var/lib/mentat/registry.db
scanner:
  timeout: 3s
monitor:
  enabled: true
  schedule: "@every 30s"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.ListenAddress != ":9999" {
		t.Errorf("listen address = %q", cfg.Server.ListenAddress)
	}
	if cfg.Server.APIPrefix != "/gateway" {
		t.Errorf("api prefix = %q", cfg.Server.APIPrefix)
	}
	if cfg.Registry.Backend != "sqlite" {
		t.Errorf("backend = %q", cfg.Registry.Backend)
	}
	if cfg.Scanner.Timeout != 3*time.Second {
		t.Errorf("scanner timeout = %v", cfg.Scanner.Timeout)
	}
	// Unset fields still get defaults.
	if cfg.Proxy.Timeout != 30*time.Second {
		t.Errorf("proxy timeout = %v", cfg.Proxy.Timeout)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: ":9999"
`)

	t.Setenv("MENTAT_SERVER_LISTEN_ADDRESS", ":7777")
	t.Setenv("MENTAT_REGISTRY_BACKEND", "memory")
	t.Setenv("MENTAT_SCANNER_TIMEOUT", "5s")
	t.Setenv("MENTAT_REGISTRY_ALLOW_CORRUPT_RESET", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.ListenAddress != ":7777" {
		t.Errorf("env override lost: listen address = %q", cfg.Server.ListenAddress)
	}
	if cfg.Registry.Backend != "memory" {
		t.Errorf("backend = %q", cfg.Registry.Backend)
	}
	if cfg.Scanner.Timeout != 5*time.Second {
		t.Errorf("scanner timeout = %v", cfg.Scanner.Timeout)
	}
	if !cfg.Registry.AllowCorruptReset {
		t.Error("allow_corrupt_reset override lost")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a mapping")
	if _, err := Load(path); err == nil {
		t.Error("expected error for unparseable YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"bad backend", func(c *Config) { c.Registry.Backend = "redis" }, "registry.backend"},
		{"watch without file backend", func(c *Config) {
			c.Registry.Backend = "sqlite"
			c.Registry.Watch = true
		}, "registry.watch"},
		{"prefix without slash", func(c *Config) { c.Server.APIPrefix = "api" }, "api_prefix"},
		{"prefix with trailing slash", func(c *Config) { c.Server.ProxyPrefix = "/api/rosetta/" }, "proxy_prefix"},
		{"colliding prefixes", func(c *Config) {
			c.Server.APIPrefix = "/api"
			c.Server.ProxyPrefix = "/api"
		}, "must differ"},
		{"zero scanner timeout", func(c *Config) { c.Scanner.Timeout = 0 }, "scanner.timeout"},
		{"bad cron schedule", func(c *Config) {
			c.Monitor.Enabled = true
			c.Monitor.Schedule = "every minute please"
		}, "monitor.schedule"},
		{"bad log level", func(c *Config) { c.Telemetry.Logging.Level = "verbose" }, "logging.level"},
		{"bad log format", func(c *Config) { c.Telemetry.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultSQLitePath(t *testing.T) {
	cfg := &Config{}
	cfg.Registry.Backend = "sqlite"
	ApplyDefaults(cfg)

	if cfg.Registry.Path != "mentat.db" {
		t.Errorf("sqlite default path = %q", cfg.Registry.Path)
	}
}

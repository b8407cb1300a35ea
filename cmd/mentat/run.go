package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/monadicus/mentat/pkg/cli"
	"github.com/monadicus/mentat/pkg/config"
	"github.com/monadicus/mentat/pkg/gateway"
	"github.com/monadicus/mentat/pkg/monitor"
	"github.com/monadicus/mentat/pkg/registry"
	"github.com/monadicus/mentat/pkg/registry/storage"
	"github.com/monadicus/mentat/pkg/scanner"
	"github.com/monadicus/mentat/pkg/telemetry/logging"
	"github.com/monadicus/mentat/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the gateway",
	Long: `Start the gateway with the specified configuration.

The gateway loads the endpoint registry, then serves the management API and
the reverse proxy on the configured address.

Examples:
  # Start with defaults
  mentat run

  # Start with a custom config
  mentat run --config /etc/mentat/config.yaml

  # Override the listen address
  mentat run --listen 0.0.0.0:8080

  # Validate config without starting
  mentat run --dry-run`,
	RunE: runGateway,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the gateway")
}

func runGateway(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	if _, err := logging.Setup(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	}); err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Mentat v%s\n", Version)
	if cfgFile != "" {
		fmt.Printf("Loading configuration from: %s\n", cfgFile)
	}
	fmt.Println("✓ Configuration loaded")

	ctx := cli.SetupSignalHandler()

	// Storage backend.
	backend, err := newStorageBackend(cfg)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	// Registry.
	reg := registry.New(backend)
	if err := reg.Load(ctx); err != nil {
		if errors.Is(err, storage.ErrCorrupt) && cfg.Registry.AllowCorruptReset {
			slog.Warn("registry store is corrupt, starting empty", "error", err)
		} else {
			backend.Close()
			return cli.NewCommandError("run", fmt.Errorf("registry load failed (set registry.allow_corrupt_reset to start empty): %w", err))
		}
	}
	defer reg.Close()
	fmt.Printf("✓ Registry loaded (%d endpoints, %s backend)\n", reg.Len(), cfg.Registry.Backend)

	// Optional registry file watcher.
	if cfg.Registry.Watch && cfg.Registry.Backend == "file" {
		watcher, err := storage.NewFileWatcher(cfg.Registry.Path, 0)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		go func() {
			if werr := watcher.Watch(ctx, func() error { return reg.Reload(context.Background()) }); werr != nil {
				slog.Error("registry watcher exited", "error", werr)
			}
		}()
		defer watcher.Stop()
		fmt.Println("✓ Registry file watcher started")
	}

	// Scanner.
	probe := scanner.New(scanner.Config{
		Timeout:         cfg.Scanner.Timeout,
		MaxIdleConns:    cfg.Scanner.MaxIdleConns,
		IdleConnTimeout: cfg.Scanner.IdleConnTimeout,
	})
	defer probe.Close()

	// Metrics.
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(metrics.Config{Namespace: cfg.Telemetry.Metrics.Namespace})
		collector.SetRegisteredEndpoints(reg.Len())
	}

	// Health monitor.
	var mon *monitor.Monitor
	if cfg.Monitor.Enabled {
		mon = monitor.New(monitor.Config{
			Schedule:     cfg.Monitor.Schedule,
			SweepTimeout: cfg.Monitor.SweepTimeout,
		}, reg, probe, collector, slog.Default())
		if err := mon.Start(); err != nil {
			return cli.NewCommandError("run", err)
		}
		defer mon.Stop()
		fmt.Printf("✓ Health monitor started (%s)\n", cfg.Monitor.Schedule)
	}

	// HTTP server.
	srv := gateway.NewServer(cfg, gateway.Options{
		Registry: reg,
		Prober:   probe,
		Monitor:  mon,
		Metrics:  collector,
		Version:  Version,
	})

	fmt.Printf("✓ Gateway listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Management API: %s\n", cfg.Server.APIPrefix)
	fmt.Printf("✓ Proxy prefix:   %s\n", cfg.Server.ProxyPrefix)
	fmt.Println("\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("✓ Gateway stopped")
	return nil
}

func newStorageBackend(cfg *config.Config) (storage.Backend, error) {
	switch cfg.Registry.Backend {
	case "file":
		return storage.NewFileBackend(cfg.Registry.Path)
	case "sqlite":
		return storage.NewSQLiteBackend(cfg.Registry.Path)
	case "memory":
		return storage.NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unsupported registry backend: %s", cfg.Registry.Backend)
	}
}

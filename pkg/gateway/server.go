package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/monadicus/mentat/pkg/config"
	"github.com/monadicus/mentat/pkg/gateway/handlers"
	"github.com/monadicus/mentat/pkg/gateway/middleware"
	"github.com/monadicus/mentat/pkg/monitor"
	"github.com/monadicus/mentat/pkg/telemetry/metrics"
)

// Options carries the collaborators the server routes to.
type Options struct {
	Registry handlers.Registry
	Prober   handlers.Prober
	Monitor  *monitor.Monitor
	Metrics  *metrics.Collector

	// Version is reported by the status route.
	Version string

	// Ready reports whether the gateway can serve traffic. Defaults to
	// always ready.
	Ready func() bool
}

// Server is the gateway HTTP server.
type Server struct {
	config   *config.ServerConfig
	metrics  *config.MetricsConfig
	proxyCfg handlers.ProxyConfig
	opts     Options

	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.Mutex
	running      bool
}

// NewServer creates a server. cfg must already be defaulted and validated.
func NewServer(cfg *config.Config, opts Options) *Server {
	if opts.Ready == nil {
		opts.Ready = func() bool { return true }
	}
	return &Server{
		config:  &cfg.Server,
		metrics: &cfg.Telemetry.Metrics,
		proxyCfg: handlers.ProxyConfig{
			Timeout:             cfg.Proxy.Timeout,
			MaxIdleConnsPerHost: cfg.Proxy.MaxIdleConnsPerHost,
			IdleConnTimeout:     cfg.Proxy.IdleConnTimeout,
		},
		opts: opts,
	}
}

// Routes builds the full handler: route table wrapped in the middleware
// chain. Exposed for tests.
func (s *Server) Routes() http.Handler {
	api := s.config.APIPrefix
	prox := s.config.ProxyPrefix

	status := handlers.NewStatusHandler(s.opts.Registry, s.opts.Version)
	servers := handlers.NewServersHandler(s.opts.Registry, s.opts.Prober, status, s.opts.Metrics)
	scan := handlers.NewScanHandler(s.opts.Prober, s.opts.Metrics)
	proxy := handlers.NewProxyHandler(s.opts.Registry, s.proxyCfg, s.opts.Metrics)

	mux := http.NewServeMux()
	mux.Handle("GET "+api+"/mentat", status)
	mux.HandleFunc("POST "+api+"/servers", servers.Register)
	mux.HandleFunc("POST "+api+"/servers/{id}", servers.Register)
	mux.HandleFunc("DELETE "+api+"/servers/{id}", servers.Remove)
	mux.Handle("POST "+api+"/scan", scan)
	mux.Handle(prox+"/{id}", proxy)
	mux.Handle(prox+"/{id}/{path...}", proxy)

	mux.Handle("GET /health", handlers.NewHealthHandler())
	mux.Handle("GET /ready", handlers.NewReadyHandler(s.opts.Ready))
	if s.opts.Monitor != nil {
		mux.Handle("GET /health/endpoints", handlers.NewEndpointHealthHandler(s.opts.Monitor))
	}
	if s.metrics.Enabled && s.opts.Metrics != nil {
		mux.Handle("GET "+s.metrics.Path, s.opts.Metrics.Handler())
	}

	// Innermost first: timeout, CORS, then the observability wrappers so
	// even timed-out and panicking requests are logged with their id.
	var handler http.Handler = mux
	handler = middleware.Timeout(s.config.RequestTimeout)(handler)
	handler = middleware.CORS(corsConfig(&s.config.CORS))(handler)
	handler = middleware.Logging(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(handler)
	return handler
}

// Start begins serving and blocks until ctx is cancelled or the listener
// fails. Cancellation triggers a graceful drain bounded by the configured
// shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.running = true

	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddress,
		Handler:        s.Routes(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		slog.Info("gateway listening", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown drains in-flight requests, bounded by the shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		srv := s.httpServer
		s.mu.Unlock()
		if srv == nil {
			return
		}

		slog.Info("draining connections", "timeout", s.config.ShutdownTimeout.String())
		drainCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if serr := srv.Shutdown(drainCtx); serr != nil {
			err = fmt.Errorf("server shutdown error: %w", serr)
		}
	})
	return err
}

func corsConfig(cfg *config.CORSConfig) *middleware.CORSConfig {
	return &middleware.CORSConfig{
		Enabled:          cfg.Enabled,
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		MaxAge:           cfg.MaxAge,
		AllowCredentials: cfg.AllowCredentials,
	}
}

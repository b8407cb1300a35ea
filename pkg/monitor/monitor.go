package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/monadicus/mentat/pkg/endpoint"
	"github.com/monadicus/mentat/pkg/rosetta"
	"github.com/monadicus/mentat/pkg/telemetry/metrics"
)

// Registry is the view of the endpoint registry the monitor needs.
type Registry interface {
	List() map[string]endpoint.Record
}

// Prober performs a single conformance probe against an origin.
type Prober interface {
	Scan(ctx context.Context, origin string) ([]rosetta.NetworkIdentifier, error)
}

// EndpointHealth is the recorded state of one endpoint after its most
// recent sweep.
type EndpointHealth struct {
	Name                string    `json:"name"`
	URL                 string    `json:"url"`
	Healthy             bool      `json:"healthy"`
	LastCheck           time.Time `json:"last_check"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastError           string    `json:"last_error,omitempty"`
}

// Config contains monitor configuration.
type Config struct {
	// Schedule is a cron expression for sweep timing.
	// Default: "@every 1m".
	Schedule string

	// SweepTimeout bounds one entire sweep. Default: 30s.
	SweepTimeout time.Duration
}

// Monitor owns the sweep schedule and the health table.
type Monitor struct {
	registry Registry
	prober   Prober
	metrics  *metrics.Collector
	logger   *slog.Logger

	schedule     string
	sweepTimeout time.Duration

	cron *cron.Cron

	mu     sync.RWMutex
	health map[string]EndpointHealth
}

// New creates a monitor. metrics may be nil.
func New(cfg Config, registry Registry, prober Prober, collector *metrics.Collector, logger *slog.Logger) *Monitor {
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 1m"
	}
	if cfg.SweepTimeout <= 0 {
		cfg.SweepTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Monitor{
		registry:     registry,
		prober:       prober,
		metrics:      collector,
		logger:       logger,
		schedule:     cfg.Schedule,
		sweepTimeout: cfg.SweepTimeout,
		health:       make(map[string]EndpointHealth),
	}
}

// Start schedules recurring sweeps. It returns an error if the cron
// expression does not parse. An immediate first sweep runs in the
// background so health data is available shortly after startup.
func (m *Monitor) Start() error {
	m.cron = cron.New()

	_, err := m.cron.AddFunc(m.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), m.sweepTimeout)
		defer cancel()
		m.Sweep(ctx)
	})
	if err != nil {
		return err
	}

	m.cron.Start()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), m.sweepTimeout)
		defer cancel()
		m.Sweep(ctx)
	}()

	m.logger.Info("health monitor started", "schedule", m.schedule)
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (m *Monitor) Stop() {
	if m.cron == nil {
		return
	}
	<-m.cron.Stop().Done()
	m.logger.Info("health monitor stopped")
}

// Sweep probes every registered endpoint once and updates the health
// table. Endpoints removed from the registry since the last sweep are
// pruned.
func (m *Monitor) Sweep(ctx context.Context) {
	records := m.registry.List()
	m.metrics.SetRegisteredEndpoints(len(records))

	results := make(map[string]EndpointHealth, len(records))
	now := time.Now().UTC()

	for id, rec := range records {
		prev := m.snapshot(id)

		_, err := m.prober.Scan(ctx, rec.URL)

		h := EndpointHealth{
			Name:      rec.Name,
			URL:       rec.URL,
			LastCheck: now,
		}
		if err != nil {
			h.ConsecutiveFailures = prev.ConsecutiveFailures + 1
			h.LastError = err.Error()
			m.metrics.RecordProbe(probeOutcome(err))
			m.logger.Warn("endpoint unhealthy",
				"endpoint", id,
				"url", rec.URL,
				"consecutive_failures", h.ConsecutiveFailures,
				"error", err,
			)
		} else {
			h.Healthy = true
			m.metrics.RecordProbe("ok")
		}
		results[id] = h
	}

	m.mu.Lock()
	m.health = results
	m.mu.Unlock()

	m.logger.Debug("health sweep complete", "endpoints", len(results))
}

// Health returns a copy of the current health table keyed by endpoint id.
func (m *Monitor) Health() map[string]EndpointHealth {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]EndpointHealth, len(m.health))
	for id, h := range m.health {
		out[id] = h
	}
	return out
}

func (m *Monitor) snapshot(id string) EndpointHealth {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.health[id]
}

func probeOutcome(err error) string {
	if rerr := rosetta.AsError(err); rerr != nil {
		return rerr.Kind
	}
	return rosetta.KindUnreachable
}

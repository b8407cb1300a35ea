package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Config configures metric naming.
type Config struct {
	// Namespace prefixes every metric name. Default: "mentat".
	Namespace string
}

// Collector owns the gateway's Prometheus registry and metric vectors.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	proxyRequestsTotal *prometheus.CounterVec
	proxyDuration      *prometheus.HistogramVec
	probesTotal        *prometheus.CounterVec
	endpointsGauge     prometheus.Gauge
}

// NewCollector creates a collector with its own registry, including the
// standard Go runtime and process collectors.
func NewCollector(cfg Config) *Collector {
	if cfg.Namespace == "" {
		cfg.Namespace = "mentat"
	}

	c := &Collector{
		registry: prometheus.NewRegistry(),

		proxyRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "proxy_requests_total",
				Help:      "Total number of requests forwarded to registered endpoints",
			},
			[]string{"endpoint", "status"},
		),

		proxyDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "proxy_request_duration_seconds",
				Help:      "Duration of forwarded requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),

		probesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "probes_total",
				Help:      "Total number of conformance probes by outcome",
			},
			[]string{"outcome"},
		),

		endpointsGauge: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "registered_endpoints",
				Help:      "Number of endpoints currently registered",
			},
		),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.proxyRequestsTotal,
		c.proxyDuration,
		c.probesTotal,
		c.endpointsGauge,
	)

	return c
}

// RecordProxyRequest records one forwarded request. status is the backend's
// HTTP status code as a string, or "error" when the forwarding call itself
// failed before a status was received.
func (c *Collector) RecordProxyRequest(endpointID, status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.proxyRequestsTotal.WithLabelValues(endpointID, status).Inc()
	c.proxyDuration.WithLabelValues(endpointID).Observe(duration.Seconds())
}

// RecordProbe records one conformance probe outcome. Outcomes follow the
// gateway error kinds: "ok", "unreachable", "malformed", "non_conformant".
func (c *Collector) RecordProbe(outcome string) {
	if c == nil {
		return
	}
	c.probesTotal.WithLabelValues(outcome).Inc()
}

// SetRegisteredEndpoints updates the registry size gauge.
func (c *Collector) SetRegisteredEndpoints(n int) {
	if c == nil {
		return
	}
	c.endpointsGauge.Set(float64(n))
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/monadicus/mentat/pkg/rosetta"
	"github.com/monadicus/mentat/pkg/telemetry/metrics"
)

// hopByHopHeaders are connection-scoped and must not be forwarded in either
// direction (RFC 9110 section 7.6.1).
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// ProxyConfig configures the reverse proxy's outbound HTTP behavior.
type ProxyConfig struct {
	// Timeout is the ceiling for one forwarded request. Default: 30s.
	Timeout time.Duration

	// MaxIdleConnsPerHost bounds pooled connections per backend.
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle pooled connection is kept.
	IdleConnTimeout time.Duration
}

// ProxyHandler forwards requests for a registered endpoint id to its origin.
// Any method is accepted; path, query string, headers, and body pass through
// with hop-by-hop headers stripped.
type ProxyHandler struct {
	registry Registry
	client   *http.Client
	metrics  *metrics.Collector
}

// NewProxyHandler creates a proxy handler with a pooled transport.
// collector may be nil.
func NewProxyHandler(reg Registry, cfg ProxyConfig, collector *metrics.Collector) *ProxyHandler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxIdleConnsPerHost <= 0 {
		cfg.MaxIdleConnsPerHost = 10
	}
	if cfg.IdleConnTimeout <= 0 {
		cfg.IdleConnTimeout = 90 * time.Second
	}

	transport := &http.Transport{
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &ProxyHandler{
		registry: reg,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
			// Redirects from the backend pass through to the client
			// untouched rather than being followed by the gateway.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		metrics: collector,
	}
}

// ServeHTTP implements http.Handler. Route patterns must bind the endpoint
// id to {id} and the remainder of the path, if any, to {path...}.
func (h *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	rec, ok := h.registry.Get(id)
	if !ok {
		writeError(w, rosetta.NewNotFoundError(id))
		return
	}

	rest := r.PathValue("path")
	target := rec.URL + "/" + rest
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	// The inbound context rides along so a client disconnect aborts the
	// outbound call.
	outReq, err := http.NewRequestWithContext(r.Context(), r.Method, target, r.Body)
	if err != nil {
		writeError(w, rosetta.NewProxyFailureError(id, err))
		return
	}

	outReq.ContentLength = r.ContentLength
	copyHeaders(outReq.Header, r.Header)
	outReq.Header.Set("X-Forwarded-For", clientIP(r))
	outReq.Header.Set("X-Forwarded-Host", r.Host)

	start := time.Now()
	resp, err := h.client.Do(outReq)
	if err != nil {
		h.metrics.RecordProxyRequest(id, "error", time.Since(start))
		slog.ErrorContext(r.Context(), "proxy forwarding failed",
			"endpoint", id,
			"target", target,
			"error", err,
		)
		writeError(w, rosetta.NewProxyFailureError(id, err))
		return
	}
	defer resp.Body.Close()

	copyHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		// The status line is already on the wire; all that is left is to
		// log the truncation.
		slog.WarnContext(r.Context(), "proxy response copy interrupted",
			"endpoint", id,
			"error", err,
		)
	}

	h.metrics.RecordProxyRequest(id, strconv.Itoa(resp.StatusCode), time.Since(start))
}

func copyHeaders(dst, src http.Header) {
	for key, values := range src {
		for _, v := range values {
			dst.Add(key, v)
		}
	}
	for _, key := range hopByHopHeaders {
		dst.Del(key)
	}
}

func clientIP(r *http.Request) string {
	if prior := r.Header.Get("X-Forwarded-For"); prior != "" {
		return prior
	}
	return r.RemoteAddr
}

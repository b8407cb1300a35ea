package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/monadicus/mentat/pkg/rosetta"
)

const (
	// networkListPath is the Rosetta discovery call every conformant backend
	// must answer.
	networkListPath = "/network/list"

	// maxProbeBody caps how much of a probe response is read. A conformant
	// network list is tiny; anything larger is not worth buffering.
	maxProbeBody = 1 << 20
)

// Config configures the scanner's outbound HTTP behavior.
type Config struct {
	// Timeout is the ceiling for a single probe, connection establishment
	// included.
	Timeout time.Duration

	// MaxIdleConns bounds the pooled idle connections across all probed
	// hosts.
	MaxIdleConns int

	// IdleConnTimeout is how long an idle pooled connection is kept.
	IdleConnTimeout time.Duration
}

// Scanner issues probe requests against candidate origins. It is safe for
// concurrent use; each probe is one independent outbound call.
type Scanner struct {
	client  *http.Client
	timeout time.Duration
}

// New creates a Scanner with a pooled HTTP transport.
func New(cfg Config) *Scanner {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 10
	}
	if cfg.IdleConnTimeout == 0 {
		cfg.IdleConnTimeout = 90 * time.Second
	}

	transport := &http.Transport{
		MaxIdleConns:      cfg.MaxIdleConns,
		IdleConnTimeout:   cfg.IdleConnTimeout,
		ForceAttemptHTTP2: true,
	}

	return &Scanner{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		timeout: cfg.Timeout,
	}
}

// Scan probes origin for Rosetta conformance and returns the network
// identifiers the backend reports. origin must already be in normalized
// origin form (see endpoint.ParseOrigin).
//
// Scan makes exactly one attempt. On failure it returns a *rosetta.Error
// whose kind classifies the outcome: unreachable, malformed, or
// non_conformant.
func (s *Scanner) Scan(ctx context.Context, origin string) ([]rosetta.NetworkIdentifier, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, origin+networkListPath, bytes.NewReader([]byte("{}")))
	if err != nil {
		return nil, rosetta.NewUnreachableError(origin, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		slog.Debug("probe transport failure",
			"origin", origin,
			"error", err,
			"latency_ms", time.Since(start).Milliseconds(),
		)
		return nil, rosetta.NewUnreachableError(origin, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProbeBody))
	if err != nil {
		return nil, rosetta.NewUnreachableError(origin, err)
	}

	// The response is classified by shape, not status code: a backend that
	// answers 500 with a JSON error body is reachable but non-conformant,
	// which is the signal the caller needs.
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.Debug("probe returned non-JSON body",
			"origin", origin,
			"status", resp.StatusCode,
		)
		return nil, rosetta.NewMalformedError(origin)
	}

	raw, ok := payload["network_identifiers"]
	if !ok {
		return nil, rosetta.NewNonConformantError(origin)
	}

	// json.Unmarshal maps null onto a nil slice without complaint, but null
	// is not a sequence.
	var identifiers []rosetta.NetworkIdentifier
	if err := json.Unmarshal(raw, &identifiers); err != nil || string(bytes.TrimSpace(raw)) == "null" {
		return nil, rosetta.NewNonConformantError(origin)
	}

	slog.Debug("probe succeeded",
		"origin", origin,
		"networks", len(identifiers),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return identifiers, nil
}

// Close releases the scanner's pooled connections.
func (s *Scanner) Close() {
	s.client.CloseIdleConnections()
}

// Package telemetry groups the gateway's observability packages.
//
//   - logging: structured logging via log/slog
//   - metrics: Prometheus metrics and the /metrics handler
//
// Subpackages are used directly; this package holds no code.
package telemetry

// Package metrics provides Prometheus instrumentation for the gateway.
//
// The collector owns a dedicated Prometheus registry (runtime and process
// collectors included) and exposes counters and histograms for forwarded
// requests per endpoint, conformance probe outcomes, and the number of
// registered endpoints. A nil *Collector records nothing, so call sites do
// not need to guard on whether metrics are enabled.
package metrics

// Package monitor runs periodic health sweeps over the registered endpoints.
//
// Each sweep re-probes every endpoint in the registry and records the
// outcome. Health state is kept in memory and served through the gateway's
// endpoint health route; it never feeds back into the registry, so a failing
// backend stays registered and keeps its identifier.
package monitor

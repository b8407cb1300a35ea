package handlers

import (
	"net/http"
	"time"

	"github.com/monadicus/mentat/pkg/monitor"
)

// HealthHandler answers liveness probes.
type HealthHandler struct{}

// NewHealthHandler creates a liveness handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

// ReadyHandler answers readiness probes. The gateway is ready once its
// registry has loaded; an empty registry is still ready, there is just
// nothing to proxy to yet.
type ReadyHandler struct {
	ready func() bool
}

// NewReadyHandler creates a readiness handler around a readiness check.
func NewReadyHandler(ready func() bool) *ReadyHandler {
	return &ReadyHandler{ready: ready}
}

// ServeHTTP implements http.Handler.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	code := http.StatusOK
	if !h.ready() {
		status = "not_ready"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Unix(),
	})
}

// EndpointHealthHandler reports the monitor's per-endpoint health table.
type EndpointHealthHandler struct {
	monitor *monitor.Monitor
}

// NewEndpointHealthHandler creates an endpoint health handler.
func NewEndpointHealthHandler(m *monitor.Monitor) *EndpointHealthHandler {
	return &EndpointHealthHandler{monitor: m}
}

// ServeHTTP implements http.Handler.
func (h *EndpointHealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"endpoints": h.monitor.Health(),
	})
}

package handlers

import (
	"net/http"

	"github.com/monadicus/mentat/pkg/endpoint"
)

// StatusHandler serves the gateway status payload: the build version and the
// current endpoint registrations.
type StatusHandler struct {
	registry Registry
	version  string
}

// NewStatusHandler creates a status handler.
func NewStatusHandler(registry Registry, version string) *StatusHandler {
	return &StatusHandler{registry: registry, version: version}
}

type statusPayload struct {
	Version string                     `json:"version"`
	Servers map[string]endpoint.Record `json:"servers"`
}

func (h *StatusHandler) payload() statusPayload {
	return statusPayload{
		Version: h.version,
		Servers: h.registry.List(),
	}
}

// ServeHTTP implements http.Handler.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.payload())
}

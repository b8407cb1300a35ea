package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/monadicus/mentat/pkg/endpoint"
	"github.com/monadicus/mentat/pkg/registry"
	"github.com/monadicus/mentat/pkg/rosetta"
	"github.com/monadicus/mentat/pkg/telemetry/metrics"
)

// ServersHandler registers and removes endpoints. Every successful mutation
// responds with the refreshed status payload, so clients see the resulting
// registry state without a second request.
type ServersHandler struct {
	registry Registry
	prober   Prober
	status   *StatusHandler
	metrics  *metrics.Collector
}

// NewServersHandler creates a servers handler. collector may be nil.
func NewServersHandler(reg Registry, prober Prober, status *StatusHandler, collector *metrics.Collector) *ServersHandler {
	return &ServersHandler{
		registry: reg,
		prober:   prober,
		status:   status,
		metrics:  collector,
	}
}

type registerRequest struct {
	URL   string `json:"url"`
	Name  string `json:"name"`
	Force bool   `json:"force"`
}

// Register handles POST requests. The endpoint id comes from the request
// path when present, otherwise one is generated. The pipeline is: field
// validation, id uniqueness, origin validation, conformance probe (skipped
// with force), then the durable commit.
func (h *ServersHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, rosetta.NewValidationError("request body must be a JSON object"))
		return
	}

	if req.URL == "" {
		writeError(w, rosetta.NewValidationError("missing required field: url"))
		return
	}
	if req.Name == "" {
		writeError(w, rosetta.NewValidationError("missing required field: name"))
		return
	}

	id := r.PathValue("id")
	if id == "" {
		id = uuid.NewString()
	} else if _, exists := h.registry.Get(id); exists {
		// Checked before the probe so a conflicting request fails without
		// touching the candidate backend.
		writeError(w, rosetta.NewConflictError(id))
		return
	}

	origin, err := endpoint.ParseOrigin(req.URL)
	if err != nil {
		writeError(w, rosetta.NewValidationError(err.Error()))
		return
	}

	if !req.Force {
		if _, err := h.prober.Scan(r.Context(), origin); err != nil {
			h.metrics.RecordProbe(probeOutcome(err))
			writeError(w, err)
			return
		}
		h.metrics.RecordProbe("ok")
	}

	if err := h.registry.Put(r.Context(), id, endpoint.Record{Name: req.Name, URL: origin}); err != nil {
		writeError(w, mapRegistryError(err, id))
		return
	}

	writeJSON(w, http.StatusOK, h.status.payload())
}

// Remove handles DELETE requests for a registered endpoint id.
func (h *ServersHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.registry.Delete(r.Context(), id); err != nil {
		writeError(w, mapRegistryError(err, id))
		return
	}

	slog.InfoContext(r.Context(), "endpoint deregistered", "id", id)
	writeJSON(w, http.StatusOK, h.status.payload())
}

// mapRegistryError converts registry sentinel errors into the gateway
// envelope; anything else is a persistence failure.
func mapRegistryError(err error, id string) error {
	switch {
	case errors.Is(err, registry.ErrConflict):
		return rosetta.NewConflictError(id)
	case errors.Is(err, registry.ErrNotFound):
		return rosetta.NewNotFoundError(id)
	default:
		return rosetta.NewPersistenceError(err)
	}
}

func probeOutcome(err error) string {
	if rerr := rosetta.AsError(err); rerr != nil {
		return rerr.Kind
	}
	return rosetta.KindUnreachable
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/monadicus/mentat/pkg/endpoint"
	"github.com/monadicus/mentat/pkg/rosetta"
	"github.com/monadicus/mentat/pkg/telemetry/metrics"
)

// ScanHandler probes an arbitrary URL for Rosetta conformance without
// touching the registry.
type ScanHandler struct {
	prober  Prober
	metrics *metrics.Collector
}

// NewScanHandler creates a scan handler. collector may be nil.
func NewScanHandler(prober Prober, collector *metrics.Collector) *ScanHandler {
	return &ScanHandler{prober: prober, metrics: collector}
}

type scanRequest struct {
	URL string `json:"url"`
}

type scanResponse struct {
	NetworkIdentifiers []rosetta.NetworkIdentifier `json:"network_identifiers"`
}

// ServeHTTP implements http.Handler.
func (h *ScanHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, rosetta.NewValidationError("request body must be a JSON object"))
		return
	}
	if req.URL == "" {
		writeError(w, rosetta.NewValidationError("missing required field: url"))
		return
	}

	origin, err := endpoint.ParseOrigin(req.URL)
	if err != nil {
		writeError(w, rosetta.NewValidationError(err.Error()))
		return
	}

	identifiers, err := h.prober.Scan(r.Context(), origin)
	if err != nil {
		h.metrics.RecordProbe(probeOutcome(err))
		writeError(w, err)
		return
	}
	h.metrics.RecordProbe("ok")

	if identifiers == nil {
		identifiers = []rosetta.NetworkIdentifier{}
	}
	writeJSON(w, http.StatusOK, scanResponse{NetworkIdentifiers: identifiers})
}

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/monadicus/mentat/pkg/endpoint"
	"github.com/monadicus/mentat/pkg/rosetta"
)

// Registry is the view of the endpoint registry the handlers need.
type Registry interface {
	Get(id string) (endpoint.Record, bool)
	List() map[string]endpoint.Record
	Put(ctx context.Context, id string, rec endpoint.Record) error
	Delete(ctx context.Context, id string) error
}

// Prober performs a single conformance probe against an origin.
type Prober interface {
	Scan(ctx context.Context, origin string) ([]rosetta.NetworkIdentifier, error)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError renders any error as the gateway envelope. Errors that are not
// already a *rosetta.Error are wrapped as internal.
func writeError(w http.ResponseWriter, err error) {
	rerr := rosetta.AsError(err)
	if rerr == nil {
		rerr = rosetta.NewInternalError(err.Error())
	}
	writeJSON(w, rerr.HTTPStatusCode(), rerr)
}

package storage

import (
	"context"
	"errors"

	"github.com/monadicus/mentat/pkg/endpoint"
)

// ErrCorrupt reports that the durable copy of the registry exists but cannot
// be decoded. A missing durable copy is not corruption; backends return an
// empty mapping for that case.
var ErrCorrupt = errors.New("registry store is corrupt")

// Backend is the interface registry persistence backends implement.
// Implementations must be safe for concurrent use, though the registry
// serializes Save calls itself.
type Backend interface {
	// Load reads the full persisted mapping. A backend with no persisted
	// state yet returns an empty mapping and no error. A backend whose
	// persisted state cannot be decoded returns an error wrapping
	// ErrCorrupt.
	Load(ctx context.Context) (map[string]endpoint.Record, error)

	// Save replaces the full persisted mapping with endpoints. Save either
	// persists the complete mapping or leaves the previous durable copy
	// intact; it never persists a partial mapping.
	Save(ctx context.Context, endpoints map[string]endpoint.Record) error

	// Close releases any resources held by the backend.
	Close() error
}

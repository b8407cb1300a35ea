package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/monadicus/mentat/pkg/endpoint"
	"github.com/monadicus/mentat/pkg/registry/storage"
)

// ErrConflict is returned by Put when the identifier is already registered.
var ErrConflict = errors.New("endpoint id already in use")

// ErrNotFound is returned by Delete when the identifier is not registered.
var ErrNotFound = errors.New("endpoint id not found")

// Registry is the durable endpoint mapping. Mutations are serialized and
// each one re-persists the full mapping synchronously before it becomes
// visible to readers; a failed persist rolls the mutation back. Reads are
// lock-free against the last committed snapshot.
type Registry struct {
	backend storage.Backend
	logger  *slog.Logger

	// writeMu serializes Put/Delete/Reload against each other and against
	// persistence. Readers never take it.
	writeMu  sync.Mutex
	snapshot atomic.Pointer[map[string]endpoint.Record]
}

// New creates a registry over backend. Call Load before serving reads.
func New(backend storage.Backend) *Registry {
	r := &Registry{
		backend: backend,
		logger:  slog.Default().With("component", "registry"),
	}
	empty := make(map[string]endpoint.Record)
	r.snapshot.Store(&empty)
	return r
}

// Load reads the persisted mapping into memory. It is called once at
// startup; on error the registry keeps its current (initially empty)
// snapshot, leaving the caller to decide whether an unreadable store is
// fatal.
func (r *Registry) Load(ctx context.Context) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	endpoints, err := r.backend.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	r.snapshot.Store(&endpoints)
	r.logger.Info("registry loaded", "endpoints", len(endpoints))
	return nil
}

// Reload re-reads the persisted mapping, replacing the in-memory snapshot.
// Used by the file watcher when the registry file is edited externally.
// Unlike Load, a failed reload keeps the previous snapshot and is not
// treated as fatal.
func (r *Registry) Reload(ctx context.Context) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	endpoints, err := r.backend.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload registry: %w", err)
	}

	r.snapshot.Store(&endpoints)
	r.logger.Info("registry reloaded", "endpoints", len(endpoints))
	return nil
}

// Get returns the record registered under id.
func (r *Registry) Get(id string) (endpoint.Record, bool) {
	snap := *r.snapshot.Load()
	rec, ok := snap[id]
	return rec, ok
}

// List returns a copy of the full mapping. The copy is detached from the
// registry; callers may hold or mutate it freely.
func (r *Registry) List() map[string]endpoint.Record {
	snap := *r.snapshot.Load()
	out := make(map[string]endpoint.Record, len(snap))
	for id, rec := range snap {
		out[id] = rec
	}
	return out
}

// Len returns the number of registered endpoints.
func (r *Registry) Len() int {
	return len(*r.snapshot.Load())
}

// Put registers rec under id. It fails with ErrConflict if id is already
// present; insertion never overwrites. The full mapping is persisted before
// the new record becomes visible; a persistence failure leaves both the
// in-memory and durable state unchanged.
func (r *Registry) Put(ctx context.Context, id string, rec endpoint.Record) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	cur := *r.snapshot.Load()
	if _, ok := cur[id]; ok {
		return fmt.Errorf("%w: %q", ErrConflict, id)
	}

	next := make(map[string]endpoint.Record, len(cur)+1)
	for k, v := range cur {
		next[k] = v
	}
	next[id] = rec

	if err := r.backend.Save(ctx, next); err != nil {
		return fmt.Errorf("failed to persist registry: %w", err)
	}

	r.snapshot.Store(&next)
	r.logger.Info("endpoint registered", "id", id, "origin", rec.URL)
	return nil
}

// Delete removes the record registered under id. It fails with ErrNotFound
// if id is absent. Persistence semantics match Put.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	cur := *r.snapshot.Load()
	if _, ok := cur[id]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	next := make(map[string]endpoint.Record, len(cur)-1)
	for k, v := range cur {
		if k != id {
			next[k] = v
		}
	}

	if err := r.backend.Save(ctx, next); err != nil {
		return fmt.Errorf("failed to persist registry: %w", err)
	}

	r.snapshot.Store(&next)
	r.logger.Info("endpoint removed", "id", id)
	return nil
}

// Close closes the underlying storage backend.
func (r *Registry) Close() error {
	return r.backend.Close()
}

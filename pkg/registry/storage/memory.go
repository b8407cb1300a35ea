package storage

import (
	"context"
	"sync"

	"github.com/monadicus/mentat/pkg/endpoint"
)

// MemoryBackend keeps the mapping in process memory only. Registrations do
// not survive a restart; intended for tests and ephemeral deployments.
type MemoryBackend struct {
	mu        sync.Mutex
	endpoints map[string]endpoint.Record
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{endpoints: make(map[string]endpoint.Record)}
}

// Load returns a copy of the stored mapping.
func (m *MemoryBackend) Load(_ context.Context) (map[string]endpoint.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneEndpoints(m.endpoints), nil
}

// Save replaces the stored mapping with a copy of endpoints.
func (m *MemoryBackend) Save(_ context.Context, endpoints map[string]endpoint.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.endpoints = cloneEndpoints(endpoints)
	return nil
}

// Close is a no-op.
func (m *MemoryBackend) Close() error {
	return nil
}

func cloneEndpoints(in map[string]endpoint.Record) map[string]endpoint.Record {
	out := make(map[string]endpoint.Record, len(in))
	for id, rec := range in {
		out[id] = rec
	}
	return out
}

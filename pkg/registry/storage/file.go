package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/monadicus/mentat/pkg/endpoint"
)

// FileBackend persists the mapping as a single JSON document on disk.
//
// Writes go through a temporary file in the same directory followed by a
// rename, so a crash mid-write leaves the previous durable copy intact.
type FileBackend struct {
	path string
	mu   sync.Mutex
}

// NewFileBackend creates a file backend rooted at path. The parent directory
// is created if missing; the file itself is created on first Save.
func NewFileBackend(path string) (*FileBackend, error) {
	if path == "" {
		return nil, fmt.Errorf("registry file path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create registry directory: %w", err)
		}
	}
	return &FileBackend{path: path}, nil
}

// Path returns the backing file path. Used to wire the optional fsnotify
// watcher.
func (f *FileBackend) Path() string {
	return f.path
}

// Load reads and decodes the registry file. A missing file yields an empty
// mapping; an undecodable file yields an error wrapping ErrCorrupt.
func (f *FileBackend) Load(_ context.Context) (map[string]endpoint.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return make(map[string]endpoint.Record), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file %q: %w", f.path, err)
	}

	var endpoints map[string]endpoint.Record
	if err := json.Unmarshal(data, &endpoints); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrCorrupt, f.path, err)
	}
	if endpoints == nil {
		endpoints = make(map[string]endpoint.Record)
	}
	return endpoints, nil
}

// Save writes the full mapping atomically.
func (f *FileBackend) Save(_ context.Context, endpoints map[string]endpoint.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.MarshalIndent(endpoints, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".registry-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp registry file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync registry file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close registry file: %w", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace registry file: %w", err)
	}
	return nil
}

// Close is a no-op; the backend holds no open handles between operations.
func (f *FileBackend) Close() error {
	return nil
}

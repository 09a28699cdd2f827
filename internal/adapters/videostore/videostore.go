// Package videostore abstracts the object store holding raw angle
// recordings. A missing object degrades the sampling plan for that
// angle; it never aborts a run.
package videostore

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when no object exists under the given ref.
var ErrNotFound = errors.New("video object not found")

// Store is the video storage collaborator contract.
type Store interface {
	// Fetch returns the raw bytes stored under ref.
	Fetch(ctx context.Context, ref string) ([]byte, error)

	// Put stores the buffer under ref and returns the canonical ref.
	Put(ctx context.Context, ref string, data []byte) (string, error)
}

// InMemoryStore implements Store with a concurrency-safe map. Used by
// tests and local runs.
type InMemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{objects: make(map[string][]byte)}
}

// Fetch implements Store.
func (s *InMemoryStore) Fetch(_ context.Context, ref string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[ref]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Put implements Store.
func (s *InMemoryStore) Put(_ context.Context, ref string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	s.objects[ref] = stored
	return ref, nil
}

// Package memory implements ports.TraceStore in process memory. It backs
// serve mode when no Redis address is configured; results vanish with the
// process.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/seitsubo413/XQsim-library/pkg/domain"
)

// Store is a mutex-guarded map of trace results.
type Store struct {
	mu     sync.RWMutex
	traces map[string]*domain.TraceResult
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{traces: make(map[string]*domain.TraceResult)}
}

// Save persists the result under the given trace ID.
func (s *Store) Save(ctx context.Context, id string, res *domain.TraceResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *res
	s.traces[id] = &cp
	return nil
}

// Load retrieves a stored result.
func (s *Store) Load(ctx context.Context, id string) (*domain.TraceResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.traces[id]
	if !ok {
		return nil, domain.ErrTraceNotFound
	}
	cp := *res
	return &cp, nil
}

// Delete removes a stored result.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.traces, id)
	return nil
}

// List returns the known trace IDs in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.traces))
	for id := range s.traces {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

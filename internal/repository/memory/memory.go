// Package memory implements repository.DocumentStore in process memory.
//
// Nothing survives a restart. It backs the "memory" store backend and is the
// document fake used by service and handler tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/sakif/imageboard/internal/repository"
)

var _ repository.DocumentStore = (*Store)(nil)

type Store struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func New() *Store {
	return &Store{docs: make(map[string][]byte)}
}

// Read returns a copy of the named document.
func (s *Store) Read(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.docs[name]
	if !ok {
		return nil, fmt.Errorf("memory: %s: %w", name, repository.ErrNoDocument)
	}
	return append([]byte(nil), data...), nil
}

func (s *Store) Write(_ context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[name] = append([]byte(nil), data...)
	return nil
}

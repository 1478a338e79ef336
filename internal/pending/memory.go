package pending

import (
	"context"
	"sync"
)

// MemoryStore is a process-local Store used when no durable backend is configured.
type MemoryStore struct {
	mu      sync.Mutex
	markers map[string]Marker
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{markers: make(map[string]Marker)}
}

func (s *MemoryStore) Save(_ context.Context, m Marker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers[m.SessionID] = m
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (Marker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.markers[sessionID]
	if !ok {
		return Marker{}, ErrNotFound
	}
	return m, nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.markers, sessionID)
	return nil
}

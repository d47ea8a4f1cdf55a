package session

import (
	"context"
	"sync"
)

// MemoryStore keeps session documents in process memory. It is the default
// backend; durability is delegated to the sqlite store when configured.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*GameSession
	hub      *hub
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*GameSession), hub: newHub()}
}

func (m *MemoryStore) Create(_ context.Context, s *GameSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[s.SessionID]; exists {
		return ErrSessionExists
	}
	m.sessions[s.SessionID] = s.Clone()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*GameSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNoSuchSession
	}
	return s.Clone(), nil
}

func (m *MemoryStore) Update(_ context.Context, id string, mutate func(*GameSession) error) (*GameSession, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return nil, ErrNoSuchSession
	}
	next := s.Clone()
	if err := mutate(next); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.sessions[id] = next
	committed := next.Clone()
	m.mu.Unlock()

	m.hub.notify(committed)
	return committed, nil
}

func (m *MemoryStore) Watch(id string, fn func(*GameSession)) func() {
	return m.hub.watch(id, fn)
}

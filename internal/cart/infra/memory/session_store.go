// Package memory keeps session storage in process memory. Data is lost on
// restart, which matches the lifetime of a browser tab's sessionStorage.
package memory

import (
	"context"
	"sync"

	"github.com/dwikikusuma/storefront/internal/cart/app"
)

type SessionStore struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewSessionStore() *SessionStore {
	return &SessionStore{data: make(map[string]map[string]string)}
}

func (m *SessionStore) Session(sessionID string) app.SessionStorage {
	return &session{parent: m, id: sessionID}
}

func (m *SessionStore) Ping(ctx context.Context) error {
	return nil
}

// Sessions reports how many sessions hold data.
func (m *SessionStore) Sessions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

type session struct {
	parent *SessionStore
	id     string
}

func (s *session) GetItem(ctx context.Context, key string) (string, bool, error) {
	s.parent.mu.RLock()
	defer s.parent.mu.RUnlock()

	v, ok := s.parent.data[s.id][key]
	return v, ok, nil
}

func (s *session) SetItem(ctx context.Context, key, value string) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()

	slots, ok := s.parent.data[s.id]
	if !ok {
		slots = make(map[string]string)
		s.parent.data[s.id] = slots
	}
	slots[key] = value
	return nil
}

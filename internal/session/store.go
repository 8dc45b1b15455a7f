// Package session keeps interview sessions between requests. The Registry
// serializes updates per session; a Store decides where state lives.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/jonathan/interview-coach/internal/interview"
)

// ErrNotFound is returned for unknown session or user ids.
var ErrNotFound = errors.New("session not found")

// Store persists interview state. Implementations must return ErrNotFound
// for missing keys and must not retain the *State passed to Save.
type Store interface {
	Load(ctx context.Context, id string) (*interview.State, error)
	// LoadByUser returns the user's most recently saved session.
	LoadByUser(ctx context.Context, userID string) (*interview.State, error)
	Save(ctx context.Context, st *interview.State) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]*interview.State
	byUser map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[string]*interview.State),
		byUser: make(map[string]string),
	}
}

func (m *MemoryStore) Load(_ context.Context, id string) (*interview.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return st.Clone(), nil
}

func (m *MemoryStore) LoadByUser(ctx context.Context, userID string) (*interview.State, error) {
	m.mu.RLock()
	id, ok := m.byUser[userID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return m.Load(ctx, id)
}

func (m *MemoryStore) Save(_ context.Context, st *interview.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[st.ID] = st.Clone()
	if st.UserID != "" {
		m.byUser[st.UserID] = st.ID
	}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.byID[id]
	if !ok {
		return nil
	}
	delete(m.byID, id)
	if m.byUser[st.UserID] == id {
		delete(m.byUser, st.UserID)
	}
	return nil
}

// Len returns the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

// Package state provides the in-memory conversation session manager.
// Sessions hold only the user's current menu state; they are never
// persisted and reset to idle on restart.
package state

import "sync"

// State identifies a conversation step.
type State string

// Idle indicates there is no active conversation with the user.
const Idle State = "idle"

// Manager stores the per-user conversation state.
type Manager struct {
	mu       sync.RWMutex
	sessions map[int64]State
}

// NewManager constructs an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[int64]State)}
}

// Get returns the current state of a user, or Idle if none exists.
func (m *Manager) Get(userID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if st, ok := m.sessions[userID]; ok {
		return st
	}
	return Idle
}

// Set overwrites the state for a user. Setting Idle removes the session.
func (m *Manager) Set(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st == Idle {
		delete(m.sessions, userID)
		return
	}
	m.sessions[userID] = st
}

// Clear removes the session for a user.
func (m *Manager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// Active reports whether the user currently has a non-idle state.
func (m *Manager) Active(userID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sessions[userID]
	return ok
}

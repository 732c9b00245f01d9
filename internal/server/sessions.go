package server

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ganbatte-hq/ganbatte/internal/models"
)

// sessionTTL is how long an idle intake conversation is kept before pruning.
const sessionTTL = 30 * time.Minute

type session struct {
	state      models.ConversationState
	lastActive time.Time
}

// SessionManager tracks in-flight intake conversations in memory. Sessions
// exist only until their job is finalized or they go idle.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

// NewSessionManager creates an empty session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*session)}
}

// GetOrCreate returns a copy of the conversation state for the given session,
// creating a new session when id is empty or unknown. The returned id is the
// one callers must echo on subsequent turns.
func (m *SessionManager) GetOrCreate(id, defaultAddress string) (string, models.ConversationState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id != "" {
		if s, ok := m.sessions[id]; ok {
			s.lastActive = time.Now()
			return id, cloneState(s.state)
		}
	}

	if id == "" {
		id = uuid.New().String()[:8] // Short ID for convenience
	}
	s := &session{
		state: models.ConversationState{
			SessionID:      id,
			DefaultAddress: defaultAddress,
		},
		lastActive: time.Now(),
	}
	m.sessions[id] = s
	return id, cloneState(s.state)
}

// Save stores the updated conversation state for a session.
func (m *SessionManager) Save(id string, state models.ConversationState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = &session{state: cloneState(state), lastActive: time.Now()}
}

// Delete removes a session, typically after its job is finalized.
func (m *SessionManager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Prune drops sessions idle longer than sessionTTL and returns how many were
// removed.
func (m *SessionManager) Prune() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	pruned := 0
	cutoff := time.Now().Add(-sessionTTL)
	for id, s := range m.sessions {
		if s.lastActive.Before(cutoff) {
			delete(m.sessions, id)
			pruned++
		}
	}
	return pruned
}

// cloneState deep-copies a conversation state so callers can mutate their copy
// without holding the manager lock.
func cloneState(state models.ConversationState) models.ConversationState {
	out := state
	out.History = slices.Clone(state.History)
	if state.LastConfirmed != nil {
		out.LastConfirmed = state.LastConfirmed.Clone()
	}
	return out
}

package wizard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrSessionNotFound is returned for unknown session IDs.
var ErrSessionNotFound = errors.New("wizard session not found")

// DefaultIdleTTL is how long an unfinished session may go unchanged before
// the manager forgets it.
const DefaultIdleTTL = time.Hour

// Manager tracks live wizard sessions by ID.
type Manager struct {
	mu       sync.Mutex
	backend  Backend
	sessions map[string]*Session

	idleTTL time.Duration
	now     func() time.Time
}

func NewManager(b Backend) *Manager {
	return &Manager{
		backend:  b,
		sessions: make(map[string]*Session),
		idleTTL:  DefaultIdleTTL,
		now:      time.Now,
	}
}

// Start creates a session and runs its fetch. The session is returned and
// kept even when the fetch fails, so the caller can retry it.
func (m *Manager) Start(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	m.prune()
	s := NewSession(ulid.Make().String(), m.backend)
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	return s, s.Start(ctx)
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove forgets a session.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Len returns the number of tracked sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// prune drops sessions that finished or sat idle past the TTL. Callers hold
// m.mu; session locks are never taken here.
func (m *Manager) prune() {
	cutoff := m.now().Add(-m.idleTTL)
	for id, s := range m.sessions {
		if s.finished() || s.lastChanged().Before(cutoff) {
			delete(m.sessions, id)
		}
	}
}

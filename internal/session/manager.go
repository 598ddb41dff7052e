// Package session holds the process-local session state binding browser
// cookies to resolved identities.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Session struct {
	Token         string
	IdentityID    uuid.UUID
	DisplayName   string
	Authenticated bool
	ExpiresAt     time.Time
}

// Manager keys sessions by opaque token. Writes are serialized by a
// single RWMutex; last-writer-wins is fine because only the
// authenticating request ever sets identity fields.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 4 * time.Hour
	}
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// StartOrGet returns the live session for token, creating an
// unauthenticated one if none exists or the existing one has expired.
// Each read extends the idle deadline.
func (m *Manager) StartOrGet(token string) Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok || m.now().After(s.ExpiresAt) {
		s = &Session{Token: token}
		m.sessions[token] = s
	}
	s.ExpiresAt = m.now().Add(m.ttl)
	return *s
}

func (m *Manager) MarkAuthenticated(token string, identityID uuid.UUID, displayName string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok || m.now().After(s.ExpiresAt) {
		s = &Session{Token: token}
		m.sessions[token] = s
	}
	s.IdentityID = identityID
	s.DisplayName = displayName
	s.Authenticated = true
	s.ExpiresAt = m.now().Add(m.ttl)
}

// Get returns the session without creating or extending one.
func (m *Manager) Get(token string) (Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()

	if !ok || m.now().After(s.ExpiresAt) {
		return Session{}, false
	}
	return *s, true
}

func (m *Manager) IsAuthenticated(token string) bool {
	s, ok := m.Get(token)
	return ok && s.Authenticated
}

func (m *Manager) Logout(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// Sweep drops expired sessions. Run it periodically; reads also expire
// lazily so correctness does not depend on the sweep interval.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for token, s := range m.sessions {
		if now.After(s.ExpiresAt) {
			delete(m.sessions, token)
			removed++
		}
	}
	return removed
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL is how long a login stays valid.
const DefaultSessionTTL = 24 * time.Hour

// Session binds an opaque token to a user until it expires.
type Session struct {
	Token     string
	UserID    uint
	ExpiresAt time.Time
}

// SessionStore issues, resolves and revokes session tokens.
type SessionStore interface {
	Create(userID uint) (Session, error)
	Lookup(token string) (Session, bool)
	Revoke(token string) bool
	PurgeExpired() int
}

// MemorySessionStore keeps sessions in process memory; they are lost on restart.
type MemorySessionStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]Session
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MemorySessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]Session),
	}
}

func (m *MemorySessionStore) Create(userID uint) (Session, error) {
	token, err := uuid.NewRandom()
	if err != nil {
		return Session{}, err
	}
	sess := Session{
		Token:     token.String(),
		UserID:    userID,
		ExpiresAt: m.now().Add(m.ttl),
	}
	m.mu.Lock()
	m.sessions[sess.Token] = sess
	m.mu.Unlock()
	return sess, nil
}

// Lookup returns the live session for token. Expired sessions are dropped.
func (m *MemorySessionStore) Lookup(token string) (Session, bool) {
	m.mu.RLock()
	sess, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	if !m.now().Before(sess.ExpiresAt) {
		m.Revoke(token)
		return Session{}, false
	}
	return sess, true
}

func (m *MemorySessionStore) Revoke(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[token]; !ok {
		return false
	}
	delete(m.sessions, token)
	return true
}

// PurgeExpired drops expired sessions and returns how many were removed.
func (m *MemorySessionStore) PurgeExpired() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for token, sess := range m.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(m.sessions, token)
			removed++
		}
	}
	return removed
}

func (m *MemorySessionStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

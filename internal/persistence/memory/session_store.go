package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/example/training-dashboard/internal/persistence"
)

// SessionStore keeps issued bearer sessions in memory.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]persistence.Session
}

// NewSessionStore returns an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]persistence.Session)}
}

// CreateSession stores a new session keyed by its token.
func (s *SessionStore) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	if strings.TrimSpace(session.Token) == "" || session.AccountID == "" {
		return persistence.Session{}, persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.Token]; ok {
		return persistence.Session{}, persistence.ErrDuplicate
	}
	s.sessions[session.Token] = session
	return session, nil
}

// GetSession resolves a token to its session.
func (s *SessionStore) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return session, nil
}

// DeleteSession removes a session. Unknown tokens are ignored.
func (s *SessionStore) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}

// DeleteSessionsForAccount removes every session issued to accountID and
// returns how many were removed.
func (s *SessionStore) DeleteSessionsForAccount(ctx context.Context, accountID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, session := range s.sessions {
		if session.AccountID == accountID {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed, nil
}

// DeleteExpiredSessions prunes sessions whose expiry is at or before
// reference. Sessions without an expiry never expire.
func (s *SessionStore) DeleteExpiredSessions(ctx context.Context, reference time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, session := range s.sessions {
		if session.ExpiresAt.IsZero() {
			continue
		}
		if !session.ExpiresAt.After(reference) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed, nil
}

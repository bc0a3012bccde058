package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session pairs a bearer token with the claims decoded from it. The pair is
// written as one value so a reader can never observe a stale claims object
// next to a fresh token.
type Session struct {
	Token   string
	Claims  Claims
	User    map[string]any
	Created time.Time
}

// Store holds active sessions keyed by an opaque session id. It is the only
// cross-component shared mutable state in the gateway and is safe for
// concurrent use.
type Store struct {
	mu   sync.RWMutex
	byID map[string]Session
	now  func() time.Time
}

// NewStore constructs an empty session store.
func NewStore() *Store {
	return &Store{
		byID: make(map[string]Session),
		now:  time.Now,
	}
}

// NewStoreWithClock constructs a store with an injected clock for tests.
func NewStoreWithClock(now func() time.Time) *Store {
	s := NewStore()
	if now != nil {
		s.now = now
	}
	return s
}

// Set decodes the token's claims and stores the token+claims pair under a
// fresh session id, returning the id. The user object is whatever the backend
// returned alongside the token.
func (s *Store) Set(token string, user map[string]any) (string, Session, error) {
	claims, err := DecodeClaims(token)
	if err != nil {
		return "", Session{}, err
	}
	sess := Session{
		Token:   token,
		Claims:  claims,
		User:    user,
		Created: s.now().UTC(),
	}
	id := uuid.NewString()
	s.mu.Lock()
	s.byID[id] = sess
	s.mu.Unlock()
	return id, sess, nil
}

// Replace swaps the token+claims pair for an existing session id atomically.
func (s *Store) Replace(id, token string, user map[string]any) (Session, error) {
	claims, err := DecodeClaims(token)
	if err != nil {
		return Session{}, err
	}
	sess := Session{
		Token:   token,
		Claims:  claims,
		User:    user,
		Created: s.now().UTC(),
	}
	s.mu.Lock()
	s.byID[id] = sess
	s.mu.Unlock()
	return sess, nil
}

// Get returns the session for the given id.
func (s *Store) Get(id string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.byID[id]
	return sess, ok
}

// Clear removes the session, used on logout.
func (s *Store) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
}

// Valid reports whether the session exists and its token has not expired.
// The check is purely local: a token revoked server-side but not yet expired
// still reports valid until its natural expiry.
func (s *Store) Valid(id string) bool {
	sess, ok := s.Get(id)
	if !ok {
		return false
	}
	if sess.Claims.ExpiresAt.IsZero() {
		return false
	}
	return sess.Claims.ExpiresAt.After(s.now())
}

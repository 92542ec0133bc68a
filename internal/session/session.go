// Package session tracks logged-in users. Each active session owns exactly one
// ledger.Ledger and serializes the operations run against it.
package session

import (
	"strings"
	"sync"

	apperrors "budgetapp/internal/errors"
	"budgetapp/internal/ledger"
	"budgetapp/internal/store"
)

// Session is one logged-in user's handle on their ledger.
type Session struct {
	username string

	mu     sync.Mutex
	ledger *ledger.Ledger
}

// Username returns the user the session belongs to.
func (s *Session) Username() string {
	return s.username
}

// Do runs fn with exclusive access to the session's ledger.
func (s *Session) Do(fn func(l *ledger.Ledger) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.ledger)
}

// Manager owns the set of active sessions for one store.
type Manager struct {
	store store.Store
	opts  []ledger.Option

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a Manager whose ledgers read and write st. opts are
// applied to every ledger it opens.
func NewManager(st store.Store, opts ...ledger.Option) *Manager {
	return &Manager{
		store:    st,
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Open returns the active session for username, loading the user's ledger if
// no session exists yet.
func (m *Manager) Open(username string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "username is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[username]; ok {
		return s, nil
	}

	l, err := ledger.Open(m.store, username, m.opts...)
	if err != nil {
		return nil, err
	}
	s := &Session{username: username, ledger: l}
	m.sessions[username] = s
	return s, nil
}

// Get returns the active session for username or UNAUTHORIZED.
func (m *Manager) Get(username string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[strings.TrimSpace(username)]
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	return s, nil
}

// Acquire returns the active session for username, opening one if needed.
// Stateless presenters (JWT-authenticated requests after a restart) use it to
// rebuild sessions on demand.
func (m *Manager) Acquire(username string) (*Session, error) {
	if s, err := m.Get(username); err == nil {
		return s, nil
	}
	return m.Open(username)
}

// Close discards the in-memory session for username. The persisted ledger is
// kept. Closing an unknown session is a no-op.
func (m *Manager) Close(username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, strings.TrimSpace(username))
}

// Active returns the number of open sessions.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

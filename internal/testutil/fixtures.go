package testutil

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"budgetapp/internal/models"
	"budgetapp/internal/store"

	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the password of users created by SeedUser.
const DefaultPassword = "password123"

// Clock is a manually advanced time source for ledgers under test.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock starting at a fixed instant.
func NewClock() *Clock {
	return &Clock{now: time.Date(2024, time.March, 10, 9, 30, 0, 0, time.UTC)}
}

// Now returns the current clock value.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// ErrStoreDown is returned by a FlakyStore after Fail is called.
var ErrStoreDown = errors.New("store unavailable")

// FlakyStore wraps a memory store and can be switched into failing writes.
type FlakyStore struct {
	*store.Memory
	mu      sync.Mutex
	failing bool
}

// NewFlakyStore returns a healthy FlakyStore.
func NewFlakyStore() *FlakyStore {
	return &FlakyStore{Memory: store.NewMemory()}
}

// Fail makes every following Set and Remove return ErrStoreDown.
func (s *FlakyStore) Fail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = true
}

// Set implements store.Store.
func (s *FlakyStore) Set(key, value string) error {
	s.mu.Lock()
	failing := s.failing
	s.mu.Unlock()
	if failing {
		return ErrStoreDown
	}
	return s.Memory.Set(key, value)
}

// Remove implements store.Store.
func (s *FlakyStore) Remove(key string) error {
	s.mu.Lock()
	failing := s.failing
	s.mu.Unlock()
	if failing {
		return ErrStoreDown
	}
	return s.Memory.Remove(key)
}

// SeedUser stores a credentials record for username with DefaultPassword
// hashed at bcrypt.MinCost.
func SeedUser(t *testing.T, st store.Store, username string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	writeJSON(t, st, store.UserKey(username), models.Credentials{Username: username, Password: string(hash)})
}

// SeedPlaintextUser stores a credentials record in the original plaintext format.
func SeedPlaintextUser(t *testing.T, st store.Store, username, password string) {
	t.Helper()
	writeJSON(t, st, store.UserKey(username), models.Credentials{Username: username, Password: password})
}

// SeedLedger stores a raw ledger document for username.
func SeedLedger(t *testing.T, st store.Store, username, raw string) {
	t.Helper()
	if err := st.Set(store.LedgerKey(username), raw); err != nil {
		t.Fatalf("failed to seed ledger: %v", err)
	}
}

func writeJSON(t *testing.T, st store.Store, key string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal fixture: %v", err)
	}
	if err := st.Set(key, string(data)); err != nil {
		t.Fatalf("failed to write fixture %s: %v", key, err)
	}
}

// Package keystore holds the shared keys the status responder looks up by
// identity, along with each identity's subscription expiry.
package keystore

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.encore.dev/statusauth/pkg/auth"
)

var ErrInvalidIdentity = errors.New("invalid identity")

// User is what the responder knows about one identity.
type User struct {
	Key       auth.Key
	ExpiresAt time.Time
}

// Memory is an in-memory key store. It is safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewMemory() *Memory {
	return &Memory{users: make(map[string]User)}
}

// Put stores or replaces the user for identity.
func (m *Memory) Put(identity string, user User) error {
	if identity == "" {
		return fmt.Errorf("%w: must not be empty", ErrInvalidIdentity)
	}
	if strings.ContainsRune(identity, auth.Separator) {
		return fmt.Errorf("%w: %q contains %q", ErrInvalidIdentity, identity, auth.Separator)
	}
	if err := user.Key.Validate(); err != nil {
		return fmt.Errorf("key for %q: %w", identity, err)
	}

	user.Key = auth.NewKey(user.Key.Data)
	m.mu.Lock()
	m.users[identity] = user
	m.mu.Unlock()
	return nil
}

// LookupKey implements auth.KeyLookup.
func (m *Memory) LookupKey(identity string) (auth.Key, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[identity]
	return u.Key, ok
}

// ExpiresAt returns when identity's subscription ends.
func (m *Memory) ExpiresAt(identity string) (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[identity]
	return u.ExpiresAt, ok
}

// Len returns the number of stored identities.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

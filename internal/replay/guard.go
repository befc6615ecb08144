// Package replay remembers recently accepted request tags so that a signed
// request captured inside the freshness window cannot be accepted twice.
package replay

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.encore.dev/statusauth/pkg/auth"
)

// Guard records request tags.
type Guard interface {
	// Seen records the tag for identity and reports whether it had
	// already been recorded within ttl.
	Seen(ctx context.Context, identity string, tag auth.Tag, ttl time.Duration) (bool, error)
}

// Memory is a Guard for a single responder process.
type Memory struct {
	clock clock.Clock

	mu      sync.Mutex
	entries map[string]time.Time // key -> expiry
	sweepAt time.Time
}

func NewMemory(clk clock.Clock) *Memory {
	return &Memory{
		clock:   clk,
		entries: make(map[string]time.Time),
	}
}

func (m *Memory) Seen(_ context.Context, identity string, tag auth.Tag, ttl time.Duration) (bool, error) {
	now := m.clock.Now()
	k := entryKey(identity, tag)

	m.mu.Lock()
	defer m.mu.Unlock()

	if now.After(m.sweepAt) {
		for key, expiry := range m.entries {
			if !now.Before(expiry) {
				delete(m.entries, key)
			}
		}
		m.sweepAt = now.Add(ttl)
	}

	if expiry, ok := m.entries[k]; ok && now.Before(expiry) {
		return true, nil
	}
	m.entries[k] = now.Add(ttl)
	return false, nil
}

// Len returns the number of remembered tags, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func entryKey(identity string, tag auth.Tag) string {
	return identity + string(auth.Separator) + string(tag)
}

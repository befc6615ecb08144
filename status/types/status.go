package types

import (
	"time"
)

// StatusResult is a verified status response. It is only ever built from a
// response whose tag has been checked.
type StatusResult struct {
	Identity   string    `json:"identity"`
	Active     bool      `json:"active"`
	ExpiresAt  string    `json:"expires_at"` // As sent by the responder; opaque to the protocol.
	ServerTime time.Time `json:"server_time"`
}

// ExpiresAtTime parses ExpiresAt as RFC 3339, the format the bundled
// responder uses.
func (s *StatusResult) ExpiresAtTime() (time.Time, error) {
	return time.Parse(time.RFC3339, s.ExpiresAt)
}

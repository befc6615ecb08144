package client

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"go.encore.dev/statusauth/pkg/auth"
)

// DefaultTimeout bounds a single exchange when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// Config is the configuration for the client.
type Config struct {
	Host      string          // The host to use
	Clock     clock.Clock     // The clock to use
	Identity  string          // The identity to authenticate as
	Key       auth.Key        // The shared key for Identity
	Timeout   time.Duration   // Upper bound on one transport round trip
	Logger    *zerolog.Logger // The logger to use
	Transport Transport       // Overrides the HTTP transport built from Host and Timeout
}

func (c *Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func (c *Config) logger() *zerolog.Logger {
	if c.Logger == nil {
		l := zerolog.Nop()
		return &l
	}
	return c.Logger
}

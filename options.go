package statusauth

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"go.encore.dev/statusauth/internal/client"
	"go.encore.dev/statusauth/pkg/auth"
)

// Option is a function that can be passed to NewSDK to configure the SDK.
type Option func(config *client.Config)

// WithHost configures the SDK to use the specified host, e.g.
// "http://127.0.0.1:8000".
func WithHost(host string) Option {
	return func(config *client.Config) {
		config.Host = host
	}
}

// WithIdentity configures the identity to authenticate as and the key
// shared with the responder for it.
func WithIdentity(identity string, key auth.Key) Option {
	return func(config *client.Config) {
		config.Identity = identity
		config.Key = auth.NewKey(key.Data)
	}
}

// WithTimeout bounds each exchange's round trip to the responder.
func WithTimeout(timeout time.Duration) Option {
	return func(config *client.Config) {
		config.Timeout = timeout
	}
}

// WithLogger configures the logger exchanges are reported to.
func WithLogger(logger *zerolog.Logger) Option {
	return func(config *client.Config) {
		config.Logger = logger
	}
}

// WithTransport replaces the HTTP transport.
func WithTransport(transport client.Transport) Option {
	return func(config *client.Config) {
		config.Transport = transport
	}
}

// WithClock configures the SDK to use the specified clock.
//
// This is useful for testing with a mocked clock, if not
// specified a real clock will be used.
func WithClock(clock clock.Clock) Option {
	return func(config *client.Config) {
		config.Clock = clock
	}
}

package statusauth

import (
	"github.com/benbjohnson/clock"
	"go.encore.dev/statusauth/internal/client"
	"go.encore.dev/statusauth/status"
)

// NewSDK creates a new SDK with the specified options.
func NewSDK(options ...Option) *SDK {
	// Create the raw client
	cfg := &client.Config{
		Clock:   clock.New(),
		Timeout: client.DefaultTimeout,
	}
	for _, option := range options {
		option(cfg)
	}
	rawClient := client.New(cfg)

	// Now create the SDK struct
	return &SDK{
		Status: status.NewClient(rawClient),
	}
}

// SDK is the main SDK for running authenticated status checks.
type SDK struct {
	// Status is the client for the subscription status service.
	Status *status.Client
}

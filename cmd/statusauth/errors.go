package main

import (
	"errors"
	"net/http"

	"go.encore.dev/statusauth/internal/client"
	"go.encore.dev/statusauth/pkg/auth"
)

// ExitCode is the process exit status for a failed command.
type ExitCode int

const (
	ExitSuccess        ExitCode = 0
	ExitGeneralError   ExitCode = 1
	ExitConfigError    ExitCode = 2
	ExitTransportError ExitCode = 3
	ExitDecodeError    ExitCode = 4
	ExitAuthError      ExitCode = 5
)

// configError marks errors from loading or validating configuration.
type configError struct {
	err error
}

func (e *configError) Error() string {
	return "config: " + e.err.Error()
}

func (e *configError) Unwrap() error {
	return e.err
}

func exitCodeFor(err error) ExitCode {
	var (
		cfgErr    *configError
		statusErr *client.StatusError
	)
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &cfgErr):
		return ExitConfigError
	case errors.As(err, &statusErr) && statusErr.Code == http.StatusUnauthorized:
		// The responder refused our tag.
		return ExitAuthError
	case errors.Is(err, client.ErrTransport):
		return ExitTransportError
	case errors.Is(err, client.ErrDecode):
		return ExitDecodeError
	case errors.Is(err, auth.ErrAuthenticationFailed):
		return ExitAuthError
	default:
		return ExitGeneralError
	}
}

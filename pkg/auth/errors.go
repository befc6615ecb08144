package auth

import (
	"errors"
)

var (
	ErrCryptoBackend          = errors.New("mac backend failure")
	ErrInvalidKey             = errors.New("invalid key")
	ErrEmptyMessage           = errors.New("empty canonical message")
	ErrFieldContainsSeparator = errors.New("field contains the canonical separator")
	ErrUnknownIdentity        = errors.New("unknown identity")
	ErrAuthenticationExpired  = errors.New("authentication expired")
	ErrAuthenticationFailed   = errors.New("authentication failed")
	ErrReplayDetected         = errors.New("replayed request")
)

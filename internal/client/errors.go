package client

import (
	"errors"
	"fmt"
)

var (
	ErrTransport = errors.New("transport failure")
	ErrDecode    = errors.New("malformed response payload")
	ErrState     = errors.New("exchange is not in the required state")
)

// StatusError is returned when the responder answers with a non 200 status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected response status %d: %s", e.Code, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrTransport
}

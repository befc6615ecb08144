package client

import (
	"errors"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.encore.dev/statusauth/pkg/auth"
)

// State is the position of an Exchange in its lifecycle.
type State int

const (
	StateBuilt State = iota
	StateSent
	StateResponseReceived
	StateVerified
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateBuilt:
		return "built"
	case StateSent:
		return "sent"
	case StateResponseReceived:
		return "response_received"
	case StateVerified:
		return "verified"
	case StateRejected:
		return "rejected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Reason records why an Exchange was rejected. It is for diagnostics only;
// callers of Client only ever see auth.ErrAuthenticationFailed for the
// authentication reasons.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonDecode
	ReasonIdentityMismatch
	ReasonTagMismatch
	ReasonCrypto
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonDecode:
		return "decode_error"
	case ReasonIdentityMismatch:
		return "identity_mismatch"
	case ReasonTagMismatch:
		return "tag_mismatch"
	case ReasonCrypto:
		return "crypto_backend_error"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// Exchange is a single signed request and the verification of its response.
//
// An Exchange is never reused: once it is Verified or Rejected a new
// attempt needs a new Exchange with a fresh timestamp.
type Exchange struct {
	ID uuid.UUID

	identity string
	key      auth.Key
	request  *auth.RequestPayload
	response *auth.ResponsePayload
	state    State
	reason   Reason

	computeTag func(auth.Key, auth.CanonicalMessage) (auth.Tag, error)
}

// NewExchange signs a status request for identity at the current time of clk.
func NewExchange(identity string, key auth.Key, clk clock.Clock) (*Exchange, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	req, err := auth.SignRequest(key, identity, clk)
	if err != nil {
		return nil, fmt.Errorf("failed to sign request: %w", err)
	}

	return &Exchange{
		ID:         uuid.New(),
		identity:   identity,
		key:        key,
		request:    req,
		state:      StateBuilt,
		computeTag: auth.ComputeTag,
	}, nil
}

// State returns the current lifecycle state.
func (e *Exchange) State() State {
	return e.state
}

// Reason returns why the exchange was rejected, or ReasonNone.
func (e *Exchange) Reason() Reason {
	return e.reason
}

// Request returns the signed request payload.
func (e *Exchange) Request() *auth.RequestPayload {
	return e.request
}

// Payload encodes the signed request for the wire.
func (e *Exchange) Payload() ([]byte, error) {
	if e.state != StateBuilt {
		return nil, fmt.Errorf("%w: payload requested in state %s", ErrState, e.state)
	}
	return auth.Marshal(e.request)
}

// MarkSent records that the payload was handed to the transport.
func (e *Exchange) MarkSent() error {
	if e.state != StateBuilt {
		return fmt.Errorf("%w: cannot send in state %s", ErrState, e.state)
	}
	e.state = StateSent
	return nil
}

// Receive decodes the raw response body.
func (e *Exchange) Receive(body []byte) error {
	if e.state != StateSent {
		return fmt.Errorf("%w: cannot receive in state %s", ErrState, e.state)
	}

	resp := &auth.ResponsePayload{}
	if err := auth.Unmarshal(body, resp); err != nil {
		e.reject(ReasonDecode)
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	e.response = resp
	e.state = StateResponseReceived
	return nil
}

// Verify authenticates the received response. The identity echoed by the
// responder is checked before any MAC work is done, and the expected tag is
// rebuilt from the response's own fields.
func (e *Exchange) Verify() (*auth.ResponsePayload, error) {
	if e.state != StateResponseReceived {
		return nil, fmt.Errorf("%w: cannot verify in state %s", ErrState, e.state)
	}
	resp := e.response

	if resp.Identity != e.identity {
		e.reject(ReasonIdentityMismatch)
		return nil, auth.ErrAuthenticationFailed
	}

	msg, err := auth.ResponseMessage(resp.Identity, resp.Active, resp.ExpiresAt, resp.ServerTime, auth.ResponsePath)
	if err != nil {
		// A signed response never carries the separator, so one in a field
		// means the fields were altered after signing.
		if errors.Is(err, auth.ErrFieldContainsSeparator) {
			e.reject(ReasonTagMismatch)
			return nil, auth.ErrAuthenticationFailed
		}
		e.reject(ReasonDecode)
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	expected, err := e.computeTag(e.key, msg)
	if err != nil {
		e.reject(ReasonCrypto)
		if errors.Is(err, auth.ErrCryptoBackend) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", auth.ErrCryptoBackend, err)
	}
	if !auth.TagsEqual(expected, resp.Tag) {
		e.reject(ReasonTagMismatch)
		return nil, auth.ErrAuthenticationFailed
	}

	e.state = StateVerified
	return resp, nil
}

func (e *Exchange) reject(reason Reason) {
	e.state = StateRejected
	e.reason = reason
}

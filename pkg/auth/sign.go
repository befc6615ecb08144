package auth

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
)

// unknownIdentityKey is used to keep the verification work for an unknown
// identity the same as for a known one.
var unknownIdentityKey = Key{Data: make([]byte, MinKeyLength)}

// SignRequest signs a status request for identity using the current
// time from clk.
func SignRequest(key Key, identity string, clk clock.Clock) (*RequestPayload, error) {
	return SignRequestAt(key, identity, clk.Now().Unix())
}

// SignRequestAt signs a status request for identity at the given timestamp.
func SignRequestAt(key Key, identity string, timestamp int64) (*RequestPayload, error) {
	msg, err := RequestMessage(identity, timestamp, RequestPath)
	if err != nil {
		return nil, err
	}
	tag, err := ComputeTag(key, msg)
	if err != nil {
		return nil, err
	}

	return &RequestPayload{
		Identity:  identity,
		Timestamp: &timestamp,
		Tag:       tag,
	}, nil
}

// VerifyRequest authenticates req against the key keys holds for its
// identity and returns that key.
//
// An unknown identity still costs one MAC computation and fails with an
// error wrapping both ErrAuthenticationFailed and ErrUnknownIdentity.
func VerifyRequest(keys KeyLookup, req *RequestPayload) (Key, error) {
	if req.Timestamp == nil {
		return Key{}, fmt.Errorf("%w: missing timestamp", ErrAuthenticationFailed)
	}

	key, found := keys.LookupKey(req.Identity)
	verifyKey := key
	if !found {
		verifyKey = unknownIdentityKey
	}

	msg, err := RequestMessage(req.Identity, *req.Timestamp, RequestPath)
	if err != nil {
		return Key{}, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}
	ok, err := VerifyTag(verifyKey, msg, req.Tag)
	if err != nil {
		return Key{}, err
	}

	switch {
	case !found:
		return Key{}, fmt.Errorf("%w: %w", ErrAuthenticationFailed, ErrUnknownIdentity)
	case !ok:
		return Key{}, fmt.Errorf("%w: invalid tag", ErrAuthenticationFailed)
	}
	return key, nil
}

// SignResponse computes and sets the tag on resp.
func SignResponse(key Key, resp *ResponsePayload) error {
	msg, err := ResponseMessage(resp.Identity, resp.Active, resp.ExpiresAt, resp.ServerTime, ResponsePath)
	if err != nil {
		return err
	}
	tag, err := ComputeTag(key, msg)
	if err != nil {
		return err
	}
	resp.Tag = tag
	return nil
}

// VerifyResponse reports whether resp carries a valid tag under key.
func VerifyResponse(key Key, resp *ResponsePayload) (bool, error) {
	msg, err := ResponseMessage(resp.Identity, resp.Active, resp.ExpiresAt, resp.ServerTime, ResponsePath)
	if err != nil {
		return false, err
	}
	return VerifyTag(key, msg, resp.Tag)
}

// CheckFreshness rejects timestamps further than window from the time
// reported by clk, in either direction. A zero window disables the check.
func CheckFreshness(clk clock.Clock, timestamp int64, window time.Duration) error {
	if window <= 0 {
		return nil
	}

	skew := clk.Now().Sub(time.Unix(timestamp, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > window {
		return fmt.Errorf("%w: timestamp is %s away from server time", ErrAuthenticationExpired, skew.Round(time.Second))
	}
	return nil
}

package auth

import (
	"encoding/hex"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MinKeyLength is the shortest shared key accepted by Key.Validate.
const MinKeyLength = 32

// Key is a shared MAC key for one identity. It is designed to be
// YAML and JSON marshalable, but as it contains secret material care
// must be taken when using it.
type Key struct {
	Data []byte `json:"data" yaml:"data"` // secret key data
}

// NewKey wraps raw key material, copying it so later mutation of b
// does not leak into the key.
func NewKey(b []byte) Key {
	data := make([]byte, len(b))
	copy(data, b)
	return Key{Data: data}
}

// ParseHexKey decodes a hex encoded key.
func ParseHexKey(s string) (Key, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Key{}, fmt.Errorf("%w: not valid hex", ErrInvalidKey)
	}
	return Key{Data: b}, nil
}

// Validate reports whether the key satisfies the minimum length policy.
func (k Key) Validate() error {
	if len(k.Data) < MinKeyLength {
		return fmt.Errorf("%w: must be at least %d bytes, got %d", ErrInvalidKey, MinKeyLength, len(k.Data))
	}
	return nil
}

// String never prints the key material.
func (k Key) String() string {
	return fmt.Sprintf("auth.Key(%d bytes)", len(k.Data))
}

// KeyLookup resolves the shared key for an identity.
type KeyLookup interface {
	LookupKey(identity string) (Key, bool)
}

// KeyLookupFunc adapts a function to a KeyLookup.
type KeyLookupFunc func(identity string) (Key, bool)

func (f KeyLookupFunc) LookupKey(identity string) (Key, bool) {
	return f(identity)
}

// Tag is a lowercase hex encoded HMAC-SHA512 output.
type Tag string

// CanonicalMessage is the exact byte sequence that gets signed.
type CanonicalMessage []byte

func (m CanonicalMessage) String() string {
	return string(m)
}

// RequestPayload is the wire form of a signed status request.
type RequestPayload struct {
	Identity  string `json:"user_id"`
	Timestamp *int64 `json:"timestamp"`
	Tag       Tag    `json:"tag"`
}

// ResponsePayload is the wire form of a signed status response.
type ResponsePayload struct {
	Identity   string `json:"user_id"`
	Active     bool   `json:"active"`
	ExpiresAt  string `json:"expires_at"`
	ServerTime int64  `json:"server_time"`
	Tag        Tag    `json:"tag"`
}

// Marshal encodes v using the package codec.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes data into v using the package codec.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

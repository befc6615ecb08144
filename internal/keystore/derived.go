package keystore

import (
	"crypto/sha512"
	"fmt"
	"io"
	"strings"

	"go.encore.dev/statusauth/pkg/auth"
	"golang.org/x/crypto/hkdf"
)

// derivedKeyLength is the size of keys produced by Derived.
const derivedKeyLength = 64

const derivationInfo = "statusauth shared key v1|"

// Derived looks keys up by deriving them from a master secret with
// HKDF-SHA512, so the responder stores one secret instead of one per
// identity. If Identities is non-nil only the listed identities resolve.
type Derived struct {
	Master     auth.Key
	Salt       []byte
	Identities map[string]struct{}
}

// NewDerived returns a Derived lookup restricted to identities, or open to
// every identity when none are given.
func NewDerived(master auth.Key, salt []byte, identities ...string) (*Derived, error) {
	if err := master.Validate(); err != nil {
		return nil, fmt.Errorf("master key: %w", err)
	}

	d := &Derived{Master: auth.NewKey(master.Data), Salt: salt}
	if len(identities) > 0 {
		d.Identities = make(map[string]struct{}, len(identities))
		for _, id := range identities {
			d.Identities[id] = struct{}{}
		}
	}
	return d, nil
}

// DeriveKey returns the key for identity.
func (d *Derived) DeriveKey(identity string) (auth.Key, error) {
	if identity == "" || strings.ContainsRune(identity, auth.Separator) {
		return auth.Key{}, fmt.Errorf("%w: %q", ErrInvalidIdentity, identity)
	}

	r := hkdf.New(sha512.New, d.Master.Data, d.Salt, []byte(derivationInfo+identity))
	key := make([]byte, derivedKeyLength)
	if _, err := io.ReadFull(r, key); err != nil {
		return auth.Key{}, fmt.Errorf("%w: %v", auth.ErrCryptoBackend, err)
	}
	return auth.Key{Data: key}, nil
}

// LookupKey implements auth.KeyLookup.
func (d *Derived) LookupKey(identity string) (auth.Key, bool) {
	if d.Identities != nil {
		if _, ok := d.Identities[identity]; !ok {
			return auth.Key{}, false
		}
	}
	key, err := d.DeriveKey(identity)
	if err != nil {
		return auth.Key{}, false
	}
	return key, true
}

package auth

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
)

// TagLength is the length of a hex encoded HMAC-SHA512 tag.
const TagLength = sha512.Size * 2

// ComputeTag computes HMAC-SHA512 over msg under key and returns it as
// lowercase hex.
func ComputeTag(key Key, msg CanonicalMessage) (Tag, error) {
	switch {
	case len(key.Data) == 0:
		return "", fmt.Errorf("%w: empty key", ErrInvalidKey)
	case len(msg) == 0:
		return "", ErrEmptyMessage
	}

	mac := hmac.New(sha512.New, key.Data)
	if _, err := mac.Write(msg); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCryptoBackend, err)
	}
	sum := mac.Sum(nil)
	if len(sum) != sha512.Size {
		return "", fmt.Errorf("%w: unexpected digest size %d", ErrCryptoBackend, len(sum))
	}

	return Tag(hex.EncodeToString(sum)), nil
}

// TagsEqual reports whether a and b are identical.
//
// It uses hmac.Equal so the time taken depends only on the lengths of
// the inputs and never on where they first differ.
func TagsEqual(a, b Tag) bool {
	return hmac.Equal([]byte(a), []byte(b))
}

// VerifyTag recomputes the tag for msg and compares it against tag.
func VerifyTag(key Key, msg CanonicalMessage, tag Tag) (bool, error) {
	expected, err := ComputeTag(key, msg)
	if err != nil {
		return false, err
	}
	return TagsEqual(expected, tag), nil
}

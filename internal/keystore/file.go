package keystore

import (
	"fmt"
	"os"
	"time"

	"go.encore.dev/statusauth/pkg/auth"
	"gopkg.in/yaml.v3"
)

// FileEntry is one user in a key file. Exactly one of Key and KeyHex must
// be set.
type FileEntry struct {
	ID        string `yaml:"id"`
	Key       string `yaml:"key,omitempty"`     // raw key text
	KeyHex    string `yaml:"key_hex,omitempty"` // hex encoded key bytes
	ExpiresAt string `yaml:"expires_at"`        // RFC 3339
}

// File is the on-disk key file layout.
type File struct {
	Users []FileEntry `yaml:"users"`
}

// LoadFile reads a YAML key file into a Memory store.
func LoadFile(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("key file %s is empty", path)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse key file: %w", err)
	}
	return f.Store()
}

// Store builds a Memory store from the file's entries.
func (f File) Store() (*Memory, error) {
	m := NewMemory()
	for i, e := range f.Users {
		key, err := e.key()
		if err != nil {
			return nil, fmt.Errorf("users[%d] (%s): %w", i, e.ID, err)
		}
		expiresAt, err := time.Parse(time.RFC3339, e.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("users[%d] (%s): invalid expires_at: %w", i, e.ID, err)
		}
		if _, dup := m.LookupKey(e.ID); dup {
			return nil, fmt.Errorf("users[%d]: duplicate id %q", i, e.ID)
		}
		if err := m.Put(e.ID, User{Key: key, ExpiresAt: expiresAt}); err != nil {
			return nil, fmt.Errorf("users[%d]: %w", i, err)
		}
	}
	return m, nil
}

func (e FileEntry) key() (auth.Key, error) {
	switch {
	case e.Key != "" && e.KeyHex != "":
		return auth.Key{}, fmt.Errorf("%w: key and key_hex are mutually exclusive", auth.ErrInvalidKey)
	case e.KeyHex != "":
		return auth.ParseHexKey(e.KeyHex)
	case e.Key != "":
		return auth.NewKey([]byte(e.Key)), nil
	default:
		return auth.Key{}, fmt.Errorf("%w: no key provided", auth.ErrInvalidKey)
	}
}

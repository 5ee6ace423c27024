package pseudonym

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// KeySize is the width of the encryption key in bytes (AES-128).
const KeySize = 16

var (
	// ErrKeyNotFound means no key material exists at the configured path.
	ErrKeyNotFound = errors.New("encryption key not found")
	// ErrKeyCorrupt means key material exists but is unusable. Regenerating
	// here would silently break pseudonym stability for already-published
	// output, so callers must treat this as fatal.
	ErrKeyCorrupt = errors.New("encryption key corrupt")
)

// LoadKey returns the batch encryption key. A non-empty base64 override
// (typically from the environment) takes precedence over the on-disk key.
// A missing or malformed key is an error, never a trigger to mint a new one:
// outputs produced under different keys cannot be joined.
func LoadKey(path, base64Override string) ([]byte, error) {
	if base64Override != "" {
		key, err := base64.StdEncoding.DecodeString(base64Override)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid base64 override: %v", ErrKeyCorrupt, err)
		}
		if len(key) != KeySize {
			return nil, fmt.Errorf("%w: override is %d bytes, want %d", ErrKeyCorrupt, len(key), KeySize)
		}
		return key, nil
	}

	key, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, path)
		}
		return nil, fmt.Errorf("could not read key file %s: %w", path, err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: %s is %d bytes, want %d", ErrKeyCorrupt, path, len(key), KeySize)
	}
	return key, nil
}

// GenerateKey mints a fresh random key and persists it at path. It refuses
// to replace an existing key file.
func GenerateKey(path string) ([]byte, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("key file already exists: %s", path)
	}

	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("could not generate key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("could not create key directory: %w", err)
	}
	if err := os.WriteFile(path, key, 0600); err != nil {
		return nil, fmt.Errorf("could not write key file: %w", err)
	}
	return key, nil
}

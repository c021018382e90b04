// Package credman resolves the master key that protects persisted session
// cookies and seals individual cookie values with it.
package credman

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/agentwire/agentwire/pkg/credman/encryption"
	"github.com/agentwire/agentwire/pkg/credman/keyring"
	"golang.org/x/crypto/hkdf"
)

// KeyProvider is implemented by keyring.Keyring and keyring.FileKeyStore.
type KeyProvider interface {
	GetKey() ([]byte, error)
	SetKey() ([]byte, error)
}

// ErrNoKeyProvider is returned by ResolveKey when no provider could supply
// or create a key.
var ErrNoKeyProvider = errors.New("no usable key provider")

// ResolveKey picks the master key. A hex key from the environment wins;
// otherwise the first provider holding a key is used, and failing that the
// first provider able to create one.
func ResolveKey(envHex string, providers ...KeyProvider) ([]byte, error) {
	if envHex != "" {
		key, err := hex.DecodeString(envHex)
		if err != nil {
			return nil, fmt.Errorf("decode session key: %w", err)
		}
		if len(key) != keyring.KeySize {
			return nil, fmt.Errorf("session key must be %d bytes, got %d", keyring.KeySize, len(key))
		}
		return key, nil
	}
	for _, p := range providers {
		if key, err := p.GetKey(); err == nil && len(key) == keyring.KeySize {
			return key, nil
		}
	}
	var errs []error
	for _, p := range providers {
		key, err := p.SetKey()
		if err == nil {
			return key, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, ErrNoKeyProvider
	}
	return nil, fmt.Errorf("%w: %w", ErrNoKeyProvider, errors.Join(errs...))
}

// Sealer encrypts cookie values for one session store. Its key is derived
// from the master key with HKDF-SHA256 so the master key itself never
// touches cookie data.
type Sealer struct {
	key []byte
}

// NewSealer derives a store key from master, scoped by purpose (typically
// the store's service domain).
func NewSealer(master []byte, purpose string) (*Sealer, error) {
	if len(master) != keyring.KeySize {
		return nil, fmt.Errorf("master key must be %d bytes, got %d", keyring.KeySize, len(master))
	}
	r := hkdf.New(sha256.New, master, []byte("agentwire/session-store"), []byte(purpose))
	key := make([]byte, keyring.KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive store key: %w", err)
	}
	return &Sealer{key: key}, nil
}

// Seal encrypts value, binding it to the cookie name.
func (s *Sealer) Seal(name, value string) (string, error) {
	return encryption.SealString(value, s.key, []byte(name))
}

// Open decrypts a sealed value. Values that were never sealed are returned
// unchanged so plain stores keep loading after sealing is switched on.
func (s *Sealer) Open(name, value string) (string, error) {
	if !encryption.IsSealed(value) {
		return value, nil
	}
	return encryption.OpenString(value, s.key, []byte(name))
}

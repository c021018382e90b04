// Package keyring stores the master key used to seal persisted session
// cookies, either in the operating system keyring or in a 0600 file.
package keyring

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeySize is the length of every master key in bytes.
const KeySize = 32

// Keyring keeps the hex-encoded master key in the OS keyring under
// Service/User.
type Keyring struct {
	Service string
	User    string
}

var (
	keyringSet    = keyring.Set
	keyringGet    = keyring.Get
	keyringDelete = keyring.Delete
	randRead      = rand.Read
)

// NewKeyring returns a Keyring using the agentwire service entry.
func NewKeyring() *Keyring {
	return &Keyring{
		Service: "agentwire",
		User:    "session-key",
	}
}

// SetKey generates and stores a new master key.
func (k *Keyring) SetKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := randRead(key); err != nil {
		return nil, err
	}
	if err := keyringSet(k.Service, k.User, hex.EncodeToString(key)); err != nil {
		return nil, err
	}
	return key, nil
}

// GetKey returns the stored master key.
func (k *Keyring) GetKey() ([]byte, error) {
	keyHex, err := keyringGet(k.Service, k.User)
	if err != nil {
		return nil, err
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid key format: %w", err)
	}
	return key, nil
}

// DeleteKey removes the keyring entry.
func (k *Keyring) DeleteKey() error {
	return keyringDelete(k.Service, k.User)
}

// String names the backend in log lines.
func (k *Keyring) String() string {
	return "os keyring"
}

// Package encryption seals short secrets such as cookie values with
// AES-256-GCM.
package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"strings"
)

// gcmPrefix tags ciphertexts produced by this package. The textual form used
// in JSON stores is gcmPrefix + ":" + base64(nonce||ciphertext).
const gcmPrefix = "gcm1"

var (
	// ErrCiphertextTooShort is returned when the input cannot hold a nonce.
	ErrCiphertextTooShort = errors.New("ciphertext too short")
	// ErrNotSealed is returned by OpenString for values without the gcm1 tag.
	ErrNotSealed = errors.New("value is not sealed")
)

var randReader io.Reader = rand.Reader

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// EncryptValue returns gcmPrefix || nonce || ciphertext. additional is bound
// to the ciphertext as GCM associated data and must be supplied again to
// decrypt; it may be nil.
func EncryptValue(value string, key, additional []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(randReader, nonce); err != nil {
		return nil, err
	}
	ciphertext := gcm.Seal(nil, nonce, []byte(value), additional)
	out := make([]byte, 0, len(gcmPrefix)+len(nonce)+len(ciphertext))
	out = append(out, gcmPrefix...)
	out = append(out, nonce...)
	return append(out, ciphertext...), nil
}

// DecryptValue reverses EncryptValue.
func DecryptValue(ciphertext, key, additional []byte) ([]byte, error) {
	if len(ciphertext) < len(gcmPrefix) || string(ciphertext[:len(gcmPrefix)]) != gcmPrefix {
		return nil, ErrNotSealed
	}
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	body := ciphertext[len(gcmPrefix):]
	if len(body) < gcm.NonceSize() {
		return nil, ErrCiphertextTooShort
	}
	return gcm.Open(nil, body[:gcm.NonceSize()], body[gcm.NonceSize():], additional)
}

// IsSealed reports whether s looks like the output of SealString.
func IsSealed(s string) bool {
	return strings.HasPrefix(s, gcmPrefix+":")
}

// SealString encrypts value into a JSON-safe string "gcm1:<base64>".
func SealString(value string, key, additional []byte) (string, error) {
	raw, err := EncryptValue(value, key, additional)
	if err != nil {
		return "", err
	}
	return gcmPrefix + ":" + base64.StdEncoding.EncodeToString(raw[len(gcmPrefix):]), nil
}

// OpenString decrypts a value produced by SealString.
func OpenString(sealed string, key, additional []byte) (string, error) {
	if !IsSealed(sealed) {
		return "", ErrNotSealed
	}
	body, err := base64.StdEncoding.DecodeString(sealed[len(gcmPrefix)+1:])
	if err != nil {
		return "", err
	}
	plain, err := DecryptValue(append([]byte(gcmPrefix), body...), key, additional)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

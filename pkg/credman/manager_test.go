package credman

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/agentwire/agentwire/pkg/credman/keyring"
)

type fakeProvider struct {
	key    []byte
	getErr error
	setErr error
	sets   int
}

func (f *fakeProvider) GetKey() ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.key, nil
}

func (f *fakeProvider) SetKey() ([]byte, error) {
	f.sets++
	if f.setErr != nil {
		return nil, f.setErr
	}
	f.key = bytes.Repeat([]byte{0x07}, keyring.KeySize)
	return f.key, nil
}

func TestResolveKey_EnvWins(t *testing.T) {
	want := bytes.Repeat([]byte{0xab}, keyring.KeySize)
	p := &fakeProvider{key: bytes.Repeat([]byte{0x01}, keyring.KeySize)}
	got, err := ResolveKey(hex.EncodeToString(want), p)
	if err != nil {
		t.Fatalf("ResolveKey: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("expected env key, got %x", got)
	}
}

func TestResolveKey_EnvInvalid(t *testing.T) {
	if _, err := ResolveKey("zz"); err == nil {
		t.Fatal("expected hex error")
	}
	if _, err := ResolveKey("aabb"); err == nil {
		t.Fatal("expected length error")
	}
}

func TestResolveKey_FallsBackAcrossProviders(t *testing.T) {
	broken := &fakeProvider{getErr: errors.New("no dbus"), setErr: errors.New("no dbus")}
	file := &fakeProvider{getErr: errors.New("not found")}

	key, err := ResolveKey("", broken, file)
	if err != nil {
		t.Fatalf("ResolveKey: %v", err)
	}
	if len(key) != keyring.KeySize {
		t.Fatalf("unexpected key length %d", len(key))
	}
	if broken.sets != 1 || file.sets != 1 {
		t.Fatalf("expected one SetKey per provider, got %d and %d", broken.sets, file.sets)
	}
}

func TestResolveKey_PrefersExistingKey(t *testing.T) {
	existing := bytes.Repeat([]byte{0x09}, keyring.KeySize)
	first := &fakeProvider{getErr: errors.New("not found")}
	second := &fakeProvider{key: existing}

	key, err := ResolveKey("", first, second)
	if err != nil {
		t.Fatalf("ResolveKey: %v", err)
	}
	if !bytes.Equal(key, existing) || first.sets != 0 {
		t.Fatal("an existing key must be used before creating a new one")
	}
}

func TestResolveKey_AllFail(t *testing.T) {
	p := &fakeProvider{getErr: errors.New("x"), setErr: errors.New("y")}
	if _, err := ResolveKey("", p); !errors.Is(err, ErrNoKeyProvider) {
		t.Fatalf("expected ErrNoKeyProvider, got %v", err)
	}
	if _, err := ResolveKey(""); !errors.Is(err, ErrNoKeyProvider) {
		t.Fatalf("expected ErrNoKeyProvider without providers, got %v", err)
	}
}

func TestSealer_RoundTrip(t *testing.T) {
	s, err := NewSealer(bytes.Repeat([]byte{0x42}, keyring.KeySize), ".twitter.com")
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}
	sealed, err := s.Seal("auth_token", "abc")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if strings.Contains(sealed, "abc") {
		t.Fatal("sealed value leaks plaintext")
	}
	got, err := s.Open("auth_token", sealed)
	if err != nil || got != "abc" {
		t.Fatalf("Open: %q %v", got, err)
	}
	if _, err := s.Open("ct0", sealed); err == nil {
		t.Fatal("value sealed for one cookie must not open under another name")
	}
	if got, err := s.Open("auth_token", "plain"); err != nil || got != "plain" {
		t.Fatalf("plain values should pass through, got %q %v", got, err)
	}
}

func TestSealer_PurposeSeparatesKeys(t *testing.T) {
	master := bytes.Repeat([]byte{0x42}, keyring.KeySize)
	a, _ := NewSealer(master, ".twitter.com")
	b, _ := NewSealer(master, ".example.com")
	sealed, _ := a.Seal("sid", "v")
	if _, err := b.Open("sid", sealed); err == nil {
		t.Fatal("sealers with different purposes must not share keys")
	}
	if _, err := NewSealer([]byte{1}, "x"); err == nil {
		t.Fatal("expected error for short master key")
	}
}

package session

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why Acquire failed.
type ErrorKind int

const (
	// MissingCredentials means no username/password pair is configured.
	MissingCredentials ErrorKind = iota + 1
	// LoginRejected means the service did not report an authenticated
	// session after login.
	LoginRejected
	// NoCookiesIssued means login succeeded but the client holds no cookies.
	NoCookiesIssued
	// PersistFailed means the session store could not be written.
	PersistFailed
	// Timeout means a network call exceeded the per-call deadline.
	Timeout
)

func (k ErrorKind) String() string {
	switch k {
	case MissingCredentials:
		return "missing credentials"
	case LoginRejected:
		return "login rejected"
	case NoCookiesIssued:
		return "no cookies issued"
	case PersistFailed:
		return "persist failed"
	case Timeout:
		return "timeout"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Sentinels matched by (*AuthError).Is.
var (
	ErrMissingCredentials = &AuthError{Kind: MissingCredentials}
	ErrLoginRejected      = &AuthError{Kind: LoginRejected}
	ErrNoCookiesIssued    = &AuthError{Kind: NoCookiesIssued}
	ErrPersistFailed      = &AuthError{Kind: PersistFailed}
	ErrTimeout            = &AuthError{Kind: Timeout}
)

// Store-level errors. Acquire treats all of them as "no cached session".
var (
	ErrStoreNotFound   = errors.New("session store not found")
	ErrStoreEmpty      = errors.New("session store holds no usable cookies")
	ErrDeserialization = errors.New("session store is not readable")
)

// AuthError is the single error type returned by Acquire.
type AuthError struct {
	Kind ErrorKind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return "session: " + e.Kind.String()
	}
	return "session: " + e.Kind.String() + ": " + e.Err.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is matches any AuthError of the same kind, so errors.Is(err,
// ErrLoginRejected) holds regardless of the wrapped cause.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Kind == e.Kind
}

func authErr(kind ErrorKind, err error) error {
	return &AuthError{Kind: kind, Err: err}
}

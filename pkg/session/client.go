package session

import "context"

// Client is the capability set the manager needs from a remote service
// client. webclient.Client is the HTTP implementation.
type Client interface {
	Login(ctx context.Context, username, password string) error
	Logout(ctx context.Context) error
	IsLoggedIn(ctx context.Context) (bool, error)
	Cookies(ctx context.Context) ([]RawCookie, error)
	SetCookies(ctx context.Context, cookies []Cookie) error
	SendMessage(ctx context.Context, text string) (*SendResult, error)
}

// SendResult is the service's answer to SendMessage.
type SendResult struct {
	Status int
	Body   []byte
}

// OK reports a 2xx status.
func (r *SendResult) OK() bool {
	return r != nil && r.Status >= 200 && r.Status < 300
}

// Credential is the username/password pair used for a fresh login. It is
// never written to the store.
type Credential struct {
	Username string
	Password string
}

// Valid reports whether both fields are set.
func (c Credential) Valid() bool {
	return c.Username != "" && c.Password != ""
}

// State is the lifecycle position of a ClientSession.
type State int

const (
	StateEmpty State = iota
	StateActive
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateFailed:
		return "failed"
	}
	return "empty"
}

// ClientSession is an authenticated client returned by Manager.Acquire.
type ClientSession struct {
	State  State
	Client Client
	// Restored is true when the session came from the store rather than a
	// fresh login.
	Restored bool
}

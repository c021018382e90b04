// Package session acquires an authenticated client session for a remote
// service, preferring cookies persisted by a previous run and falling back
// to a credential login whose cookies are then persisted.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agentwire/agentwire/pkg/logger"
)

const (
	DefaultDomain      = ".twitter.com"
	DefaultLoginDelay  = time.Second
	DefaultCallTimeout = 30 * time.Second
	DefaultTTL         = 7 * 24 * time.Hour
)

// Manager owns the session store and the lifecycle of one client session.
// It is not safe for concurrent use.
type Manager struct {
	client      Client
	store       Store
	cred        Credential
	domain      string
	loginDelay  time.Duration
	callTimeout time.Duration
	ttl         time.Duration
	log         logger.Logger
	now         func() time.Time
	sleep       func(context.Context, time.Duration) error
	state       State
}

// Option configures a Manager.
type Option func(*Manager)

func WithCredential(c Credential) Option { return func(m *Manager) { m.cred = c } }

// WithDomain sets the domain stamped on persisted cookies.
func WithDomain(d string) Option { return func(m *Manager) { m.domain = d } }

// WithLoginDelay sets the pause between logout and login.
func WithLoginDelay(d time.Duration) Option { return func(m *Manager) { m.loginDelay = d } }

// WithCallTimeout bounds every individual network call.
func WithCallTimeout(d time.Duration) Option { return func(m *Manager) { m.callTimeout = d } }

// WithTTL sets how long persisted cookies are considered valid.
func WithTTL(d time.Duration) Option { return func(m *Manager) { m.ttl = d } }

func WithLogger(l logger.Logger) Option { return func(m *Manager) { m.log = l } }

func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

// WithSleep replaces the login delay wait.
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(m *Manager) { m.sleep = sleep }
}

// NewManager creates a Manager for client backed by store.
func NewManager(client Client, store Store, opts ...Option) *Manager {
	m := &Manager{
		client:      client,
		store:       store,
		domain:      DefaultDomain,
		loginDelay:  DefaultLoginDelay,
		callTimeout: DefaultCallTimeout,
		ttl:         DefaultTTL,
		log:         logger.NewNopLogger(),
		now:         time.Now,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State reports the outcome of the last Acquire.
func (m *Manager) State() State {
	return m.state
}

// Acquire returns an authenticated session. Cached cookies are tried first;
// any problem with them falls through to a credential login. Errors are
// always *AuthError, except a cancelled ctx which is returned as is.
func (m *Manager) Acquire(ctx context.Context) (*ClientSession, error) {
	s, err := m.acquire(ctx)
	if err != nil {
		m.state = StateFailed
		return nil, err
	}
	m.state = StateActive
	return s, nil
}

func (m *Manager) acquire(ctx context.Context) (*ClientSession, error) {
	if ok, err := m.restore(ctx); err != nil {
		return nil, err
	} else if ok {
		return &ClientSession{State: StateActive, Client: m.client, Restored: true}, nil
	}

	if !m.cred.Valid() {
		return nil, authErr(MissingCredentials, errors.New("USERNAME and PASSWORD must both be set"))
	}

	m.log.Info("attempting fresh login as %s", m.cred.Username)
	if err := m.call(ctx, m.client.Logout); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		m.log.Info("logout before login: %v", err)
	}

	if err := m.sleep(ctx, m.loginDelay); err != nil {
		return nil, err
	}

	err := m.call(ctx, func(ctx context.Context) error {
		return m.client.Login(ctx, m.cred.Username, m.cred.Password)
	})
	if err != nil {
		return nil, m.classify(ctx, LoginRejected, err)
	}
	loggedIn, err := m.isLoggedIn(ctx)
	if err != nil {
		return nil, m.classify(ctx, LoginRejected, err)
	}
	if !loggedIn {
		return nil, authErr(LoginRejected, errors.New("not logged in after login attempt"))
	}
	m.log.Info("login succeeded")

	var raw []RawCookie
	err = m.call(ctx, func(ctx context.Context) error {
		var err error
		raw, err = m.client.Cookies(ctx)
		return err
	})
	if err != nil {
		return nil, m.classify(ctx, NoCookiesIssued, err)
	}
	if len(raw) == 0 {
		return nil, authErr(NoCookiesIssued, errors.New("no cookies received after login"))
	}

	cookies := Normalize(raw, m.domain, m.now(), m.ttl)
	if len(cookies) == 0 {
		return nil, authErr(NoCookiesIssued, errors.New("no named cookies after normalization"))
	}

	if err := m.store.SaveRaw(raw); err != nil {
		m.log.Warning("write raw cookie capture: %v", err)
	}
	if err := m.store.Save(cookies); err != nil {
		return nil, authErr(PersistFailed, err)
	}
	m.log.Info("saved %d cookies (%s)", len(cookies), strings.Join(CookieNames(cookies), ", "))

	return &ClientSession{State: StateActive, Client: m.client}, nil
}

// restore installs stored cookies and asks the service whether they still
// authenticate. Only a cancelled ctx is returned as an error.
func (m *Manager) restore(ctx context.Context) (bool, error) {
	cookies, err := m.store.Load()
	switch {
	case errors.Is(err, ErrStoreNotFound):
		m.log.Info("no cached session")
		return false, nil
	case err != nil:
		m.log.Warning("ignoring cached session: %v", err)
		return false, nil
	}

	m.log.Info("loading cached session (%d cookies)", len(cookies))
	err = m.call(ctx, func(ctx context.Context) error {
		return m.client.SetCookies(ctx, cookies)
	})
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		m.log.Warning("install cached cookies: %v", err)
		return false, nil
	}

	loggedIn, err := m.isLoggedIn(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		m.log.Warning("verify cached session: %v", err)
		return false, nil
	}
	if !loggedIn {
		m.log.Warning("cached session is no longer authenticated")
		return false, nil
	}
	m.log.Info("logged in with cached session")
	return true, nil
}

// Invalidate deletes the persisted store. The in-memory session, if any,
// is left untouched.
func (m *Manager) Invalidate() error {
	if err := m.store.Delete(); err != nil {
		return fmt.Errorf("delete session store: %w", err)
	}
	m.log.Info("session store deleted")
	return nil
}

func (m *Manager) isLoggedIn(ctx context.Context) (bool, error) {
	var ok bool
	err := m.call(ctx, func(ctx context.Context) error {
		var err error
		ok, err = m.client.IsLoggedIn(ctx)
		return err
	})
	return ok, err
}

// call runs fn under the per-call timeout. A deadline hit by that timeout
// (not by the caller's ctx) is reported as ErrTimeout.
func (m *Manager) call(ctx context.Context, fn func(context.Context) error) error {
	if m.callTimeout <= 0 {
		return fn(ctx)
	}
	cctx, cancel := context.WithTimeout(ctx, m.callTimeout)
	defer cancel()
	err := fn(cctx)
	if err != nil && ctx.Err() == nil && errors.Is(cctx.Err(), context.DeadlineExceeded) {
		return authErr(Timeout, err)
	}
	return err
}

func (m *Manager) classify(ctx context.Context, kind ErrorKind, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, ErrTimeout) {
		return err
	}
	return authErr(kind, err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

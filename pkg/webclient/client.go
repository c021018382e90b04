// Package webclient is an HTTP implementation of session.Client for
// services that authenticate with a form login and keep the session in
// cookies.
package webclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/agentwire/agentwire/pkg/redirect"
	"github.com/agentwire/agentwire/pkg/session"
	"golang.org/x/net/publicsuffix"
)

const (
	DefaultUserAgent = "agentwire/1.0"

	maxBodySize = 1 << 20
)

// Endpoints are resolved against the client's base URL.
type Endpoints struct {
	Login   string
	Logout  string
	Verify  string
	Message string
}

// DefaultEndpoints are used unless WithEndpoints overrides them.
var DefaultEndpoints = Endpoints{
	Login:   "/login",
	Logout:  "/logout",
	Verify:  "/account/verify",
	Message: "/message",
}

// ErrUnauthorized is returned by Login when the service answers 401 or 403.
var ErrUnauthorized = errors.New("credentials rejected")

// StatusError reports an unexpected HTTP status.
type StatusError struct {
	Op     string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %s", e.Op, e.Status)
}

// Client talks to one service. It is not safe for concurrent use.
type Client struct {
	base      *url.URL
	hc        *http.Client
	endpoints Endpoints
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient uses hc's transport and timeout. Its Jar and CheckRedirect
// are replaced.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		cp := *hc
		c.hc = &cp
	}
}

func WithEndpoints(e Endpoints) Option { return func(c *Client) { c.endpoints = e } }

func WithUserAgent(ua string) Option { return func(c *Client) { c.userAgent = ua } }

// New creates a Client for the service at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse service url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" || base.Host == "" {
		return nil, fmt.Errorf("service url must be http(s) with a host: %q", baseURL)
	}
	c := &Client{
		base:      base,
		hc:        &http.Client{},
		endpoints: DefaultEndpoints,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.hc.CheckRedirect = redirect.Policy(redirect.DefaultMaxRedirects)
	if err := c.resetJar(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) resetJar() error {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return err
	}
	c.hc.Jar = jar
	return nil
}

// Login posts the credential as JSON.
func (c *Client) Login(ctx context.Context, username, password string) error {
	resp, err := c.do(ctx, http.MethodPost, c.endpoints.Login, map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return err
	}
	drain(resp)
	switch {
	case isSuccess(resp.StatusCode):
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("login: %w (%s)", ErrUnauthorized, resp.Status)
	}
	return &StatusError{Op: "login", Code: resp.StatusCode, Status: resp.Status}
}

// Logout asks the service to end the session and always clears the local
// jar, even when the request fails.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, c.endpoints.Logout, nil)
	if jerr := c.resetJar(); jerr != nil && err == nil {
		err = jerr
	}
	if err != nil {
		return err
	}
	drain(resp)
	if !isSuccess(resp.StatusCode) && resp.StatusCode != http.StatusUnauthorized {
		return &StatusError{Op: "logout", Code: resp.StatusCode, Status: resp.Status}
	}
	return nil
}

// IsLoggedIn probes the verify endpoint: 2xx means authenticated, 401 and
// 403 mean not.
func (c *Client) IsLoggedIn(ctx context.Context) (bool, error) {
	resp, err := c.do(ctx, http.MethodGet, c.endpoints.Verify, nil)
	if err != nil {
		return false, err
	}
	drain(resp)
	switch {
	case isSuccess(resp.StatusCode):
		return true, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return false, nil
	}
	return false, &StatusError{Op: "verify", Code: resp.StatusCode, Status: resp.Status}
}

// Cookies returns the jar's cookies for the base URL. The jar only keeps
// name and value per cookie, so the domain reported is the base host.
func (c *Client) Cookies(ctx context.Context) ([]session.RawCookie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	jarCookies := c.hc.Jar.Cookies(c.base)
	out := make([]session.RawCookie, 0, len(jarCookies))
	for _, hc := range jarCookies {
		out = append(out, session.RawCookie{
			Name:   hc.Name,
			Value:  hc.Value,
			Domain: c.base.Hostname(),
		})
	}
	return out, nil
}

// SetCookies installs cookies as host cookies of the base URL. The stored
// domain is not used for scoping since every cookie is normalized to the
// service's own domain anyway. Secure is dropped for plain-http bases, where
// the jar would otherwise never send the cookie back.
func (c *Client) SetCookies(ctx context.Context, cookies []session.Cookie) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	hcs := make([]*http.Cookie, 0, len(cookies))
	for _, sc := range cookies {
		hc := &http.Cookie{
			Name:     sc.Name,
			Value:    sc.Value,
			Path:     sc.Path,
			Expires:  sc.Expires,
			HttpOnly: sc.HttpOnly,
			Secure:   sc.Secure && c.base.Scheme == "https",
			SameSite: sameSite(sc.SameSite),
		}
		if err := hc.Valid(); err != nil {
			return fmt.Errorf("cookie %q: %w", sc.Name, err)
		}
		hcs = append(hcs, hc)
	}
	c.hc.Jar.SetCookies(c.base, hcs)
	return nil
}

// SendMessage posts text. A non-2xx status is reported in the result, not
// as an error.
func (c *Client) SendMessage(ctx context.Context, text string) (*session.SendResult, error) {
	resp, err := c.do(ctx, http.MethodPost, c.endpoints.Message, map[string]string{"text": text})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read message response: %w", err)
	}
	return &session.SendResult{Status: resp.StatusCode, Body: body}, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.hc.Do(req)
}

func (c *Client) resolve(path string) string {
	ref := &url.URL{Path: strings.TrimPrefix(path, "/")}
	base := *c.base
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return base.ResolveReference(ref).String()
}

func sameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	}
	return http.SameSiteDefaultMode
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
	resp.Body.Close()
}

var _ session.Client = (*Client)(nil)

// Package httpclient builds the *http.Client shared by the service client
// and the downloader: optional proxying (http, https or socks5) plus the
// redirect policy.
package httpclient

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/agentwire/agentwire/pkg/redirect"
	"golang.org/x/net/proxy"
)

var (
	ErrInvalidProxyURL        = errors.New("invalid proxy URL")
	ErrUnsupportedProxyScheme = errors.New("unsupported proxy scheme")
)

// Options configures New.
type Options struct {
	// Proxy is an http, https or socks5 URL. Empty means the environment's
	// HTTP_PROXY / HTTPS_PROXY / NO_PROXY settings apply.
	Proxy        string
	Timeout      time.Duration
	MaxRedirects int
}

// New returns a client for opts.
func New(opts Options) (*http.Client, error) {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if opts.Proxy != "" {
		u, err := ParseProxy(opts.Proxy)
		if err != nil {
			return nil, err
		}
		if u.Scheme == "socks5" {
			var auth *proxy.Auth
			if u.User != nil {
				pass, _ := u.User.Password()
				auth = &proxy.Auth{User: u.User.Username(), Password: pass}
			}
			d, err := proxy.SOCKS5("tcp", u.Host, auth, proxy.Direct)
			if err != nil {
				return nil, fmt.Errorf("socks5 proxy: %w", err)
			}
			cd, ok := d.(proxy.ContextDialer)
			if !ok {
				return nil, fmt.Errorf("socks5 proxy: dialer does not support contexts")
			}
			tr.Proxy = nil
			tr.DialContext = cd.DialContext
		} else {
			tr.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Transport:     tr,
		Timeout:       opts.Timeout,
		CheckRedirect: redirect.Policy(opts.MaxRedirects),
	}, nil
}

// ParseProxy validates a proxy URL.
func ParseProxy(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProxyURL, raw)
	}
	switch u.Scheme {
	case "http", "https", "socks5":
		return u, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedProxyScheme, u.Scheme)
}

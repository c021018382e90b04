// Package redirect supplies the http.Client CheckRedirect policy shared by
// the service client and the image downloader.
package redirect

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// DefaultMaxRedirects matches the hop limit of Go's default http.Client.
const DefaultMaxRedirects = 10

var (
	// ErrTooManyRedirects is returned when a chain exceeds the configured hops.
	ErrTooManyRedirects = errors.New("redirect loop detected")

	// ErrCrossProtocolRedirect is returned when an http(s) URL redirects to a
	// non-http scheme.
	ErrCrossProtocolRedirect = errors.New("cross-protocol redirect not supported")
)

func isHTTPScheme(scheme string) bool {
	return scheme == "http" || scheme == "https"
}

func isCrossOrigin(a, b *url.URL) bool {
	return a.Host != b.Host
}

// Policy returns a CheckRedirect function that caps the number of hops,
// rejects http(s) -> other scheme hops and drops caller-supplied headers when
// the redirect leaves the original host. A non-positive max falls back to
// DefaultMaxRedirects.
func Policy(max int) func(*http.Request, []*http.Request) error {
	if max <= 0 {
		max = DefaultMaxRedirects
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return fmt.Errorf("%w: exceeded %d hops (last URL: %s)",
				ErrTooManyRedirects, max, via[len(via)-1].URL.Redacted())
		}
		if len(via) == 0 {
			return nil
		}
		prev := via[len(via)-1]
		if isHTTPScheme(prev.URL.Scheme) && !isHTTPScheme(req.URL.Scheme) {
			return fmt.Errorf("%w: %s -> %s",
				ErrCrossProtocolRedirect, prev.URL.Scheme, req.URL.Scheme)
		}
		if isCrossOrigin(prev.URL, req.URL) {
			stripUnsafeHeaders(req)
		}
		return nil
	}
}

// safeHeaders survive a cross-origin hop; everything else may carry session
// material (Cookie, X-Csrf-Token, custom auth headers).
var safeHeaders = map[string]bool{
	"User-Agent":      true,
	"Accept":          true,
	"Accept-Language": true,
	"Accept-Encoding": true,
}

func stripUnsafeHeaders(req *http.Request) {
	for key := range req.Header {
		if !safeHeaders[http.CanonicalHeaderKey(key)] {
			req.Header.Del(key)
		}
	}
}

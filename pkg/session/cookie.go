package session

import (
	"encoding/json"
	"fmt"
	"time"
)

// expiresLayout is the ISO-8601 form written to the store: UTC, millisecond
// precision, trailing Z (e.g. 2099-01-01T00:00:00.000Z).
const expiresLayout = "2006-01-02T15:04:05.000Z07:00"

// SameSiteLax is the policy stamped on every normalized cookie.
const SameSiteLax = "Lax"

// Cookie is one persisted authentication cookie.
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Expires  time.Time
	HttpOnly bool
	Secure   bool
	SameSite string
}

type cookieJSON struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain"`
	Path     string `json:"path"`
	Expires  string `json:"expires"`
	HttpOnly bool   `json:"httpOnly"`
	Secure   bool   `json:"secure"`
	SameSite string `json:"sameSite"`
}

// MarshalJSON writes the store representation of c.
func (c Cookie) MarshalJSON() ([]byte, error) {
	return json.Marshal(cookieJSON{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Expires:  c.Expires.UTC().Format(expiresLayout),
		HttpOnly: c.HttpOnly,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}

// UnmarshalJSON reads the store representation. An empty expires string
// leaves Expires zero (a session cookie).
func (c *Cookie) UnmarshalJSON(data []byte) error {
	var v cookieJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	var expires time.Time
	if v.Expires != "" {
		t, err := time.Parse(time.RFC3339, v.Expires)
		if err != nil {
			return fmt.Errorf("cookie %q: invalid expires: %w", v.Name, err)
		}
		expires = t
	}
	*c = Cookie{
		Name:     v.Name,
		Value:    v.Value,
		Domain:   v.Domain,
		Path:     v.Path,
		Expires:  expires,
		HttpOnly: v.HttpOnly,
		Secure:   v.Secure,
		SameSite: v.SameSite,
	}
	return nil
}

// Expired reports whether c has an explicit expiry at or before now.
func (c Cookie) Expired(now time.Time) bool {
	return !c.Expires.IsZero() && !c.Expires.After(now)
}

// RawCookie is a cookie as handed back by a service client. Client
// libraries disagree on whether the cookie name lives in Name or Key; both
// are kept here and reconciled once by Normalize.
type RawCookie struct {
	Name     string    `json:"name,omitempty"`
	Key      string    `json:"key,omitempty"`
	Value    string    `json:"value"`
	Domain   string    `json:"domain,omitempty"`
	Path     string    `json:"path,omitempty"`
	Expires  time.Time `json:"expires,omitzero"`
	HttpOnly bool      `json:"httpOnly,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	SameSite string    `json:"sameSite,omitempty"`
}

// CookieName returns Name, falling back to Key.
func (r RawCookie) CookieName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Key
}

// Normalize converts raw cookies into store cookies. The source cookie's
// domain, path, expiry and flags are discarded: every cookie gets domain,
// path "/", an expiry of now+ttl, HttpOnly, Secure and SameSite=Lax. Raw
// cookies without a name or key are dropped.
func Normalize(raw []RawCookie, domain string, now time.Time, ttl time.Duration) []Cookie {
	expires := now.Add(ttl)
	out := make([]Cookie, 0, len(raw))
	for _, r := range raw {
		name := r.CookieName()
		if name == "" {
			continue
		}
		out = append(out, Cookie{
			Name:     name,
			Value:    r.Value,
			Domain:   domain,
			Path:     "/",
			Expires:  expires,
			HttpOnly: true,
			Secure:   true,
			SameSite: SameSiteLax,
		})
	}
	return out
}

// CookieNames lists cookie names for log lines; values are never logged.
func CookieNames(cookies []Cookie) []string {
	names := make([]string, len(cookies))
	for i, c := range cookies {
		names[i] = c.Name
	}
	return names
}

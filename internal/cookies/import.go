package cookies

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agentwire/agentwire/pkg/logger"
	"github.com/agentwire/agentwire/pkg/session"
)

var now = time.Now

// Result is the outcome of Import.
type Result struct {
	Path    string
	Format  Format
	Cookies []Cookie
}

// Import reads the cookie store at path, keeping unexpired cookies that
// belong to domain. A leading dot on domain is ignored. SQLite stores are
// read from a private snapshot so a running browser's lock does not
// interfere.
func Import(path, domain string, log logger.Logger) (*Result, error) {
	domain = strings.TrimPrefix(domain, ".")
	format, err := Detect(path)
	if err != nil {
		return nil, err
	}
	res := &Result{Path: path, Format: format}

	switch format {
	case FormatFirefox:
		res.Cookies, err = fromSnapshot(path, domain, ParseFirefox)
	case FormatChrome:
		res.Cookies, err = fromSnapshot(path, domain, ParseChrome)
	case FormatNetscape:
		var f *os.File
		if f, err = os.Open(path); err == nil {
			res.Cookies, err = ParseNetscape(f, domain, log)
			f.Close()
		}
	default:
		err = fmt.Errorf("%s: %w", path, ErrUnsupported)
	}
	if err != nil {
		return nil, err
	}
	log.Info("read %d %s cookies for %s", len(res.Cookies), format, domain)
	return res, nil
}

func fromSnapshot(path, domain string, parse func(string, string) ([]Cookie, error)) ([]Cookie, error) {
	dir, cleanup, err := snapshot(path)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return parse(filepath.Join(dir, filepath.Base(path)), domain)
}

// snapshot copies a SQLite database and its -wal/-shm companions into a
// fresh temp directory. The caller must run cleanup.
func snapshot(src string) (dir string, cleanup func(), err error) {
	if err := checkFile(src); err != nil {
		return "", nil, err
	}
	dir, err = os.MkdirTemp("", "agentwire-cookies-*")
	if err != nil {
		return "", nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	cleanup = func() { os.RemoveAll(dir) }

	base := filepath.Base(src)
	if err := copyFile(src, filepath.Join(dir, base)); err != nil {
		cleanup()
		return "", nil, err
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if _, err := os.Stat(src + suffix); err == nil {
			_ = copyFile(src+suffix, filepath.Join(dir, base+suffix))
		}
	}
	return dir, cleanup, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}

// ToSession converts browser cookies into store cookies. Browser attributes
// are kept; SameSite becomes Lax and session-only cookies (no expiry) get
// an expiry of at+ttl.
func ToSession(cookies []Cookie, at time.Time, ttl time.Duration) []session.Cookie {
	out := make([]session.Cookie, 0, len(cookies))
	for _, c := range cookies {
		if c.Name == "" {
			continue
		}
		path := c.Path
		if path == "" {
			path = "/"
		}
		exp := c.Expiry
		if exp.IsZero() || exp.Unix() <= 0 {
			exp = at.Add(ttl)
		}
		out = append(out, session.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     path,
			Expires:  exp.UTC(),
			HttpOnly: c.HttpOnly,
			Secure:   c.Secure,
			SameSite: session.SameSiteLax,
		})
	}
	return out
}

package cookies

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// chromeEpochOffset is the distance in seconds between 1601-01-01 and the
// Unix epoch. Chrome stores microseconds since 1601.
const chromeEpochOffset int64 = 11_644_473_600

type schema struct {
	format Format
	table  string
	query  string
	// since converts now into the store's expiry unit.
	since func(time.Time) int64
	// expiry converts a stored expiry back to time.
	expiry func(int64) time.Time
}

var firefoxSchema = schema{
	format: FormatFirefox,
	table:  "moz_cookies",
	query: `SELECT name, value, host, path, expiry, isSecure, isHttpOnly
		FROM moz_cookies
		WHERE (host = ? OR host = ? OR host LIKE ?) AND expiry > ?
		ORDER BY path DESC, name ASC`,
	since:  func(t time.Time) int64 { return t.Unix() },
	expiry: func(v int64) time.Time { return time.Unix(v, 0) },
}

var chromeSchema = schema{
	format: FormatChrome,
	table:  "cookies",
	query: `SELECT name, value, host_key, path, expires_utc, is_secure, is_httponly
		FROM cookies
		WHERE (host_key = ? OR host_key = ? OR host_key LIKE ?) AND value != '' AND expires_utc > ?
		ORDER BY path DESC, name ASC`,
	since:  func(t time.Time) int64 { return (t.Unix() + chromeEpochOffset) * 1_000_000 },
	expiry: func(v int64) time.Time { return time.Unix(v/1_000_000-chromeEpochOffset, 0) },
}

// ParseFirefox reads unexpired cookies for domain from a Firefox
// cookies.sqlite snapshot.
func ParseFirefox(dbPath, domain string) ([]Cookie, error) {
	return readSQLite(dbPath, domain, firefoxSchema)
}

// ParseChrome reads unexpired, unencrypted cookies for domain from a
// Chrome Cookies snapshot. Encrypted-only rows are skipped.
func ParseChrome(dbPath, domain string) ([]Cookie, error) {
	return readSQLite(dbPath, domain, chromeSchema)
}

func readSQLite(dbPath, domain string, s schema) ([]Cookie, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?immutable=1")
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", s.format, err)
	}
	defer db.Close()

	rows, err := db.Query(s.query, domain, "."+domain, "%."+domain, s.since(now()))
	if err != nil {
		return nil, fmt.Errorf("query %s cookies: %w", s.format, err)
	}
	defer rows.Close()

	var out []Cookie
	for rows.Next() {
		var (
			c                Cookie
			exp              int64
			secure, httpOnly int
		)
		if err := rows.Scan(&c.Name, &c.Value, &c.Domain, &c.Path, &exp, &secure, &httpOnly); err != nil {
			return nil, fmt.Errorf("scan %s cookie: %w", s.format, err)
		}
		c.Expiry = s.expiry(exp)
		c.Secure = secure != 0
		c.HttpOnly = httpOnly != 0
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s cookies: %w", s.format, err)
	}
	return out, nil
}

package cookies

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func freezeNow(t *testing.T) {
	t.Helper()
	orig := now
	now = func() time.Time { return fixedNow }
	t.Cleanup(func() { now = orig })
}

type row struct {
	name, value, host, path string
	expiry                  time.Time
	secure, httpOnly        bool
	encrypted               bool
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

func writeSQLite(t *testing.T, path string, ddl, insert string, args func(row) []any, rows []row) string {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(ddl); err != nil {
		t.Fatalf("create table: %v", err)
	}
	for _, r := range rows {
		if _, err := db.Exec(insert, args(r)...); err != nil {
			t.Fatalf("insert %s: %v", r.name, err)
		}
	}
	return path
}

func firefoxDB(t *testing.T, rows ...row) string {
	return writeSQLite(t, filepath.Join(t.TempDir(), "cookies.sqlite"),
		`CREATE TABLE moz_cookies (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL, value TEXT NOT NULL, host TEXT NOT NULL,
			path TEXT NOT NULL DEFAULT '/', expiry INTEGER NOT NULL DEFAULT 0,
			isSecure INTEGER NOT NULL DEFAULT 0, isHttpOnly INTEGER NOT NULL DEFAULT 0)`,
		`INSERT INTO moz_cookies (name, value, host, path, expiry, isSecure, isHttpOnly) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		func(r row) []any {
			return []any{r.name, r.value, r.host, r.path, r.expiry.Unix(), b2i(r.secure), b2i(r.httpOnly)}
		}, rows)
}

func chromeDB(t *testing.T, rows ...row) string {
	return writeSQLite(t, filepath.Join(t.TempDir(), "Cookies"),
		`CREATE TABLE cookies (
			creation_utc INTEGER NOT NULL, host_key TEXT NOT NULL, name TEXT NOT NULL,
			value TEXT NOT NULL, encrypted_value BLOB NOT NULL DEFAULT x'',
			path TEXT NOT NULL DEFAULT '/', expires_utc INTEGER NOT NULL DEFAULT 0,
			is_secure INTEGER NOT NULL DEFAULT 0, is_httponly INTEGER NOT NULL DEFAULT 0)`,
		`INSERT INTO cookies (creation_utc, host_key, name, value, encrypted_value, path, expires_utc, is_secure, is_httponly) VALUES (0, ?, ?, ?, ?, ?, ?, ?, ?)`,
		func(r row) []any {
			value, enc := r.value, []byte{}
			if r.encrypted {
				value, enc = "", []byte("v10"+r.value)
			}
			return []any{r.host, r.name, value, enc, r.path, chromeSchema.since(r.expiry), b2i(r.secure), b2i(r.httpOnly)}
		}, rows)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0600); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func names(cs []Cookie) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

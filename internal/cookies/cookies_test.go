package cookies

import (
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/agentwire/agentwire/pkg/logger"
	"github.com/agentwire/agentwire/pkg/session"
)

var (
	future = fixedNow.Add(30 * 24 * time.Hour)
	past   = fixedNow.Add(-time.Hour)
)

func TestDetect(t *testing.T) {
	freezeNow(t)
	tests := []struct {
		name string
		path func(t *testing.T) string
		want Format
		err  error
	}{
		{"firefox", func(t *testing.T) string { return firefoxDB(t) }, FormatFirefox, nil},
		{"chrome", func(t *testing.T) string { return chromeDB(t) }, FormatChrome, nil},
		{"netscape", func(t *testing.T) string { return writeFile(t, "c.txt", "# Netscape HTTP Cookie File\n") }, FormatNetscape, nil},
		{"netscape crlf alt header", func(t *testing.T) string { return writeFile(t, "c.txt", "# HTTP Cookie File\r\n") }, FormatNetscape, nil},
		{"empty", func(t *testing.T) string { return writeFile(t, "c.txt", "") }, FormatUnknown, ErrEmptyFile},
		{"text", func(t *testing.T) string { return writeFile(t, "c.txt", "hello\n") }, FormatUnknown, ErrUnsupported},
		{"directory", func(t *testing.T) string { return t.TempDir() }, FormatUnknown, ErrIsDirectory},
		{"missing", func(t *testing.T) string { return t.TempDir() + "/nope" }, FormatUnknown, os.ErrNotExist},
		{"other sqlite", func(t *testing.T) string {
			return writeSQLite(t, t.TempDir()+"/x.db", `CREATE TABLE other (id INTEGER)`, "", nil, nil)
		}, FormatUnknown, ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(tt.path(t))
			if got != tt.want {
				t.Errorf("format = %v, want %v", got, tt.want)
			}
			if tt.err == nil && err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if tt.err != nil && !errors.Is(err, tt.err) {
				t.Fatalf("error = %v, want %v", err, tt.err)
			}
		})
	}
}

func TestParseFirefox(t *testing.T) {
	freezeNow(t)
	db := firefoxDB(t,
		row{name: "auth_token", value: "a", host: ".twitter.com", path: "/", expiry: future, secure: true, httpOnly: true},
		row{name: "ct0", value: "b", host: "twitter.com", path: "/", expiry: future},
		row{name: "sub", value: "c", host: "api.twitter.com", path: "/i", expiry: future},
		row{name: "old", value: "d", host: ".twitter.com", path: "/", expiry: past},
		row{name: "other", value: "e", host: ".nottwitter.com", path: "/", expiry: future},
	)

	got, err := ParseFirefox(db, "twitter.com")
	if err != nil {
		t.Fatalf("ParseFirefox: %v", err)
	}
	if want := []string{"sub", "auth_token", "ct0"}; !reflect.DeepEqual(names(got), want) {
		t.Fatalf("names = %v, want %v", names(got), want)
	}
	auth := got[1]
	if !auth.Secure || !auth.HttpOnly || auth.Expiry.Unix() != future.Unix() || auth.Domain != ".twitter.com" {
		t.Errorf("unexpected attributes %+v", auth)
	}
}

func TestParseChrome(t *testing.T) {
	freezeNow(t)
	db := chromeDB(t,
		row{name: "auth_token", value: "a", host: ".twitter.com", path: "/", expiry: future, secure: true},
		row{name: "locked", value: "b", host: ".twitter.com", path: "/", expiry: future, encrypted: true},
		row{name: "old", value: "c", host: ".twitter.com", path: "/", expiry: past},
		row{name: "elsewhere", value: "d", host: ".example.com", path: "/", expiry: future},
	)

	got, err := ParseChrome(db, "twitter.com")
	if err != nil {
		t.Fatalf("ParseChrome: %v", err)
	}
	if len(got) != 1 || got[0].Name != "auth_token" {
		t.Fatalf("unexpected cookies %v", names(got))
	}
	if got[0].Expiry.Unix() != future.Unix() {
		t.Errorf("expiry conversion: got %v want %v", got[0].Expiry, future)
	}
	if !got[0].Secure || got[0].HttpOnly {
		t.Errorf("unexpected flags %+v", got[0])
	}
}

const cookiesTxt = "# Netscape HTTP Cookie File\r\n" +
	"# comment\n" +
	"\n" +
	".twitter.com\tTRUE\t/\tTRUE\t1900000000\tauth_token\tsecret\n" +
	"#HttpOnly_twitter.com\tFALSE\t/\tFALSE\t0\tct0\tsess\n" +
	".twitter.com\tTRUE\t/\tFALSE\t1000\told\tgone\n" +
	"broken line\n" +
	".twitter.com\tTRUE\t/\tFALSE\tsoon\tbad\tx\n" +
	".example.com\tTRUE\t/\tFALSE\t1900000000\tother\ty\n"

func TestParseNetscape(t *testing.T) {
	freezeNow(t)
	log := logger.NewMockLogger()

	got, err := ParseNetscape(strings.NewReader(cookiesTxt), ".twitter.com", log)
	if err != nil {
		t.Fatalf("ParseNetscape: %v", err)
	}
	if want := []string{"auth_token", "ct0"}; !reflect.DeepEqual(names(got), want) {
		t.Fatalf("names = %v, want %v", names(got), want)
	}
	if !got[0].Secure || got[0].HttpOnly {
		t.Errorf("auth_token flags: %+v", got[0])
	}
	if !got[1].HttpOnly || !got[1].Expiry.IsZero() {
		t.Errorf("ct0 should be an HttpOnly session cookie: %+v", got[1])
	}
	if len(log.WarningCalls) != 2 {
		t.Fatalf("expected 2 warnings, got %v", log.WarningCalls)
	}
	for _, w := range log.WarningCalls {
		if strings.Contains(w, "secret") || strings.Contains(w, "sess") {
			t.Fatalf("cookie value leaked into log: %q", w)
		}
	}
}

func TestImport(t *testing.T) {
	freezeNow(t)
	tests := []struct {
		name   string
		path   func(t *testing.T) string
		format Format
	}{
		{"firefox", func(t *testing.T) string {
			return firefoxDB(t, row{name: "auth_token", value: "a", host: ".twitter.com", path: "/", expiry: future})
		}, FormatFirefox},
		{"chrome", func(t *testing.T) string {
			return chromeDB(t, row{name: "auth_token", value: "a", host: ".twitter.com", path: "/", expiry: future})
		}, FormatChrome},
		{"netscape", func(t *testing.T) string { return writeFile(t, "cookies.txt", cookiesTxt) }, FormatNetscape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := logger.NewMockLogger()
			res, err := Import(tt.path(t), ".twitter.com", log)
			if err != nil {
				t.Fatalf("Import: %v", err)
			}
			if res.Format != tt.format || len(res.Cookies) == 0 || res.Cookies[0].Name != "auth_token" {
				t.Fatalf("unexpected result %v %v", res.Format, names(res.Cookies))
			}
			if len(log.InfoCalls) != 1 || !strings.Contains(log.InfoCalls[0], tt.format.String()) {
				t.Errorf("unexpected log %v", log.InfoCalls)
			}
		})
	}
}

func TestImport_Errors(t *testing.T) {
	if _, err := Import(writeFile(t, "c.txt", ""), "twitter.com", logger.NewNopLogger()); !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
	if _, err := Import(t.TempDir()+"/missing", "twitter.com", logger.NewNopLogger()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist, got %v", err)
	}
}

func TestSnapshot(t *testing.T) {
	src := writeFile(t, "Cookies", "db")
	if err := os.WriteFile(src+"-wal", []byte("wal"), 0600); err != nil {
		t.Fatal(err)
	}

	dir, cleanup, err := snapshot(src)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	for name, want := range map[string]string{"Cookies": "db", "Cookies-wal": "wal"} {
		data, err := os.ReadFile(dir + "/" + name)
		if err != nil || string(data) != want {
			t.Errorf("%s = %q, %v", name, data, err)
		}
	}
	if _, err := os.Stat(dir + "/Cookies-shm"); !os.IsNotExist(err) {
		t.Errorf("no -shm should be created, stat err %v", err)
	}
	cleanup()
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("cleanup should remove %s", dir)
	}
}

func TestToSession(t *testing.T) {
	exp := time.Date(2026, 1, 1, 0, 0, 0, 0, time.FixedZone("X", 3600))
	in := []Cookie{
		{Name: "auth_token", Value: "a", Domain: ".twitter.com", Path: "/", Expiry: exp, Secure: true, HttpOnly: true},
		{Name: "ct0", Value: "b", Domain: "twitter.com"},
		{Name: "", Value: "dropped"},
	}

	got := ToSession(in, fixedNow, 24*time.Hour)
	want := []session.Cookie{
		{Name: "auth_token", Value: "a", Domain: ".twitter.com", Path: "/", Expires: exp.UTC(), HttpOnly: true, Secure: true, SameSite: session.SameSiteLax},
		{Name: "ct0", Value: "b", Domain: "twitter.com", Path: "/", Expires: fixedNow.Add(24 * time.Hour), SameSite: session.SameSiteLax},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ToSession mismatch\n got %+v\nwant %+v", got, want)
	}
}

func TestMatchesDomain(t *testing.T) {
	tests := []struct {
		cookie, domain string
		want           bool
	}{
		{"twitter.com", "twitter.com", true},
		{".twitter.com", "twitter.com", true},
		{"api.twitter.com", ".twitter.com", true},
		{"nottwitter.com", "twitter.com", false},
		{"twitter.com.evil", "twitter.com", false},
	}
	for _, tt := range tests {
		if got := matchesDomain(tt.cookie, tt.domain); got != tt.want {
			t.Errorf("matchesDomain(%q, %q) = %v", tt.cookie, tt.domain, got)
		}
	}
}

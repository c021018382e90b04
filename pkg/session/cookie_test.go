package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	raw := []RawCookie{
		{Name: "sid", Value: "xyz", Domain: "x.example.org", Path: "/deep", Secure: false, SameSite: "Strict",
			Expires: now.Add(time.Minute)},
		{Key: "guest_id", Value: "v1"},
		{Name: "name", Key: "key", Value: "both"},
		{},
	}
	got := Normalize(raw, ".twitter.com", now, DefaultTTL)
	if len(got) != 3 {
		t.Fatalf("expected 3 cookies, got %d", len(got))
	}
	wantNames := []string{"sid", "guest_id", "name"}
	for i, c := range got {
		if c.Name != wantNames[i] {
			t.Errorf("cookie %d: name %q, want %q", i, c.Name, wantNames[i])
		}
		if c.Domain != ".twitter.com" || c.Path != "/" || !c.HttpOnly || !c.Secure || c.SameSite != "Lax" {
			t.Errorf("cookie %d not normalized: %+v", i, c)
		}
		if !c.Expires.Equal(now.Add(7 * 24 * time.Hour)) {
			t.Errorf("cookie %d: expires %v", i, c.Expires)
		}
	}
}

func TestCookieJSON_ExpiresFormat(t *testing.T) {
	c := Cookie{Name: "a", Expires: time.Date(2099, 1, 1, 0, 0, 0, 0, time.FixedZone("X", 3600))}
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"expires":"2098-12-31T23:00:00.000Z"`) {
		t.Fatalf("expires should be UTC with milliseconds: %s", data)
	}
}

func TestCookieJSON_AcceptsRFC3339Variants(t *testing.T) {
	for _, s := range []string{"2099-01-01T00:00:00.000Z", "2099-01-01T00:00:00Z", "2099-01-01T01:00:00+01:00"} {
		var c Cookie
		if err := json.Unmarshal([]byte(`{"name":"a","expires":"`+s+`"}`), &c); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		if !c.Expires.Equal(time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("%s: parsed %v", s, c.Expires)
		}
	}
}

func TestCookieExpired(t *testing.T) {
	now := time.Now()
	if (Cookie{}).Expired(now) {
		t.Error("cookie without expiry never expires")
	}
	if !(Cookie{Expires: now}).Expired(now) {
		t.Error("cookie expiring now is expired")
	}
	if (Cookie{Expires: now.Add(time.Second)}).Expired(now) {
		t.Error("future cookie is not expired")
	}
}

func TestAuthErrorIs(t *testing.T) {
	err := authErr(LoginRejected, errors.New("boom"))
	if !strings.Contains(err.Error(), "login rejected: boom") {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, ErrLoginRejected) || errors.Is(err, ErrTimeout) {
		t.Fatal("kind matching is wrong")
	}
	wrapped := fmt.Errorf("post: %w", err)
	if !errors.Is(wrapped, ErrLoginRejected) {
		t.Fatal("wrapped AuthError should still match")
	}
}

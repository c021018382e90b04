package cookies

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/agentwire/agentwire/pkg/logger"
)

const httpOnlyPrefix = "#HttpOnly_"

// ParseNetscape reads cookies for domain from a cookies.txt stream.
// Malformed lines are skipped with a warning; an expiry of 0 marks a
// browser-session cookie and is kept with a zero Expiry.
func ParseNetscape(r io.Reader, domain string, log logger.Logger) ([]Cookie, error) {
	t := now()
	var out []Cookie
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		httpOnly := strings.HasPrefix(line, httpOnlyPrefix)
		if httpOnly {
			line = line[len(httpOnlyPrefix):]
		} else if strings.HasPrefix(line, "#") {
			continue
		}

		f := strings.Split(line, "\t")
		if len(f) != 7 {
			log.Warning("cookies.txt line %d: expected 7 fields, got %d", lineNo, len(f))
			continue
		}
		exp, err := strconv.ParseInt(f[4], 10, 64)
		if err != nil {
			log.Warning("cookies.txt line %d: invalid expiry %q", lineNo, f[4])
			continue
		}
		if !matchesDomain(f[0], domain) {
			continue
		}
		c := Cookie{
			Domain:   f[0],
			Path:     f[2],
			Secure:   strings.EqualFold(f[3], "TRUE"),
			Name:     f[5],
			Value:    f[6],
			HttpOnly: httpOnly,
		}
		if exp > 0 {
			c.Expiry = time.Unix(exp, 0)
			if c.Expiry.Before(t) {
				continue
			}
		}
		out = append(out, c)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read cookies.txt: %w", err)
	}
	return out, nil
}

// matchesDomain accepts the domain itself, its dotted form, and subdomains.
func matchesDomain(cookieDomain, domain string) bool {
	domain = strings.TrimPrefix(domain, ".")
	return cookieDomain == domain || strings.HasSuffix(cookieDomain, "."+domain)
}

// Package urlnorm reduces URLs to their canonical origin form.
package urlnorm

import (
	"net"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

var schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// Origin returns scheme://host[:port]/ for rawURL. A missing scheme is
// treated as https. Blank input yields "". Input that cannot be parsed
// into a URL with a host is returned trimmed and otherwise unchanged.
//
// Origin is idempotent: Origin(Origin(u)) == Origin(u).
func Origin(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return ""
	}

	candidate := trimmed
	if !schemePattern.MatchString(trimmed) {
		candidate = "https://" + trimmed
	}

	u, err := url.Parse(candidate)
	if err == nil && u.Host == "" && !strings.Contains(trimmed, "://") {
		// "example.com:8080/path" parses as scheme "example.com".
		u, err = url.Parse("https://" + trimmed)
	}
	if err != nil || u.Host == "" {
		return trimmed
	}

	host, ok := asciiHost(u.Hostname())
	if !ok {
		return trimmed
	}

	scheme := strings.ToLower(u.Scheme)
	if port := u.Port(); port != "" && port != defaultPorts[scheme] {
		host = net.JoinHostPort(strings.Trim(host, "[]"), port)
	}

	return scheme + "://" + host + "/"
}

// asciiHost lowercases the host and converts internationalised names to
// punycode. IPv6 literals come back bracketed.
func asciiHost(hostname string) (string, bool) {
	if hostname == "" {
		return "", false
	}
	if ip := net.ParseIP(hostname); ip != nil {
		if ip.To4() == nil {
			return "[" + strings.ToLower(hostname) + "]", true
		}
		return hostname, true
	}

	lower := strings.ToLower(hostname)
	ascii, err := idna.Lookup.ToASCII(lower)
	if err != nil {
		// Underscores and similar are rejected by the lookup profile but
		// are still reachable hosts.
		if strings.ContainsAny(lower, " \t") {
			return "", false
		}
		return lower, true
	}
	return ascii, true
}

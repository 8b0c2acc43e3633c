package utils

import (
	"net"
	"net/url"
	"strings"
)

// ParseSiteURL returns the URL when it is an absolute http or https URL with
// a host.
func ParseSiteURL(raw string) (*url.URL, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	if u.Hostname() == "" {
		return nil, false
	}
	return u, true
}

// IsIP reports whether host is an IP literal.
func IsIP(host string) bool {
	return net.ParseIP(strings.Trim(host, "[]")) != nil
}

func IsValidHost(host string) bool {
	if IsIP(host) {
		return true
	}
	if host == "" || len(host) > 255 {
		return false
	}
	for _, ch := range host {
		if (ch < 'a' || ch > 'z') && (ch < 'A' || ch > 'Z') && (ch < '0' || ch > '9') && ch != '.' && ch != '-' {
			return false
		}
	}
	return strings.Contains(host, ".")
}

// DisplayHost is the hostname with a leading "www." removed.
func DisplayHost(u *url.URL) string {
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

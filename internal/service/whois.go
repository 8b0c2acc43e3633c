package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"github.com/weppos/publicsuffix-go/publicsuffix"

	"sitewatch/internal/model"
	"sitewatch/internal/utils"
)

// WhoisLookup queries WHOIS for domain, optionally against specific servers.
type WhoisLookup func(domain string, servers ...string) (string, error)

// Manual fallbacks for TLDs the library or IANA sometimes cannot place.
var whoisFallbacks = map[string]string{
	"info": "whois.nic.info",
	"biz":  "whois.nic.biz",
	"mobi": "whois.dotmobi.net",
}

var expiryKeys = []string{
	"expir",
	"paid-till",
	"renewal date",
	"valid until",
}

var expiryLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006.01.02",
	"2006/01/02",
	"02-Jan-2006",
	"02.01.2006",
	"January 2 2006",
	"Mon Jan 2 15:04:05 MST 2006",
}

type DomainProbe struct {
	Lookup WhoisLookup
}

func NewDomainProbe(timeout time.Duration) *DomainProbe {
	client := whois.NewClient().SetTimeout(timeout)
	return &DomainProbe{Lookup: client.Whois}
}

// Expiry looks up the registrable domain of host and returns the earliest
// expiration date found in the record.
func (p *DomainProbe) Expiry(ctx context.Context, host string) model.Expiry {
	if utils.IsIP(host) {
		return model.ExpiryFailed(fmt.Errorf("whois: %s is an IP address", host))
	}
	if !utils.IsValidHost(host) {
		return model.ExpiryFailed(fmt.Errorf("whois: invalid host %q", host))
	}
	domain, err := RootDomain(host)
	if err != nil {
		return model.ExpiryFailed(err)
	}

	type result struct {
		raw string
		err error
	}
	done := make(chan result, 1)
	go func() {
		raw, err := p.query(domain)
		done <- result{raw, err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return model.ExpiryFailed(fmt.Errorf("whois %s: %w", domain, ctx.Err()))
	case res = <-done:
	}
	if res.err != nil {
		return model.ExpiryFailed(fmt.Errorf("whois %s: %w", domain, res.err))
	}

	parsed, err := whoisparser.Parse(res.raw)
	if errors.Is(err, whoisparser.ErrNotFoundDomain) {
		return model.ExpiryFailed(fmt.Errorf("whois %s: %w", domain, err))
	}

	dates := ExpiryDates(res.raw)
	if err == nil && parsed.Domain != nil {
		dates = append(dates, parseExpiry(parsed.Domain.ExpirationDate))
	}

	e := EarliestExpiry(dates)
	if !e.OK() {
		e.Err = fmt.Errorf("whois %s: %w", domain, e.Err)
	}
	return e
}

// RootDomain reduces host to its registrable domain, e.g.
// "api.example.co.uk" to "example.co.uk".
func RootDomain(host string) (string, error) {
	host = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	domain, err := publicsuffix.Domain(host)
	if err != nil {
		return "", fmt.Errorf("registrable domain of %q: %w", host, err)
	}
	return domain, nil
}

func (p *DomainProbe) query(domain string) (string, error) {
	raw, err := p.Lookup(domain)
	if err != nil && strings.Contains(err.Error(), "no whois server found") {
		tld := domain[strings.LastIndex(domain, ".")+1:]
		if server, ok := whoisFallbacks[tld]; ok {
			raw, err = p.Lookup(domain, server)
		}

		if err != nil || raw == "" {
			// Ask IANA for the referral server.
			if ianaRaw, ianaErr := p.Lookup(domain, "whois.iana.org"); ianaErr == nil {
				if server := lineValue(ianaRaw, "refer:", "whois:"); server != "" {
					raw, err = p.Lookup(domain, server)
				}
			}
		}
	}
	if err != nil {
		return "", err
	}

	if server := lineValue(raw, "registrar whois server:"); server != "" {
		refRaw, refErr := p.Lookup(domain, server)
		if refErr == nil && len(refRaw) > len(raw)/2 {
			raw = refRaw + "\n" + raw
		}
	}
	return raw, nil
}

// lineValue returns the value of the first line starting with one of the
// given lowercase prefixes.
func lineValue(raw string, prefixes ...string) string {
	for _, line := range strings.Split(raw, "\n") {
		lower := strings.ToLower(strings.TrimSpace(line))
		for _, prefix := range prefixes {
			if strings.HasPrefix(lower, prefix) {
				if v := strings.TrimSpace(strings.TrimSpace(line)[len(prefix):]); v != "" {
					return v
				}
			}
		}
	}
	return ""
}

// ExpiryDates scans raw WHOIS text for every expiry-like field. Lines whose
// value does not parse contribute a zero time.
func ExpiryDates(raw string) []time.Time {
	var dates []time.Time
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "%") || strings.HasPrefix(trimmed, "#") {
			continue
		}
		key, value, ok := strings.Cut(trimmed, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(key)
		for _, k := range expiryKeys {
			if strings.Contains(key, k) {
				dates = append(dates, parseExpiry(value))
				break
			}
		}
	}
	return dates
}

func parseExpiry(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	// Some registries append a note after the date.
	if fields := strings.Fields(value); len(fields) > 1 {
		for _, layout := range expiryLayouts {
			if t, err := time.Parse(layout, fields[0]); err == nil {
				return t.UTC()
			}
		}
	}
	return time.Time{}
}

// EarliestExpiry picks the earliest non-zero date; zero entries stand for
// values the record did not carry.
func EarliestExpiry(dates []time.Time) model.Expiry {
	var earliest time.Time
	for _, d := range dates {
		if d.IsZero() {
			continue
		}
		if earliest.IsZero() || d.Before(earliest) {
			earliest = d
		}
	}
	return model.ExpiresAt(earliest)
}

package service

import (
	"context"
	"testing"
	"time"

	"sitewatch/internal/config"
	"sitewatch/internal/model"
)

func TestChecker_Check(t *testing.T) {
	probes := healthyProbes()
	c := NewChecker(probes)
	now := time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)
	c.Now = func() time.Time { return now }

	rec := c.Check(context.Background(), model.SiteRecord{Name: "Example", URL: "https://www.example.com:8443/path"})
	if rec.Status != model.StatusOK || !rec.Timestamp.Equal(now) {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.SSLExpiry.String() != "2026-01-01" || rec.DomainExpiry.String() != "2027-01-01" {
		t.Fatalf("expiry dates not carried: %+v", rec)
	}
	if probes.sslHosts[0] != "www.example.com:8443" {
		t.Errorf("ssl host = %q", probes.sslHosts[0])
	}
	if probes.domainHosts[0] != "www.example.com" {
		t.Errorf("domain host = %q", probes.domainHosts[0])
	}
}

func TestChecker_PlainHTTPUsesDefaultTLSPort(t *testing.T) {
	probes := healthyProbes()
	NewChecker(probes).Check(context.Background(), model.SiteRecord{URL: "http://example.com:8080/"})
	if probes.sslHosts[0] != "example.com" {
		t.Errorf("ssl host = %q", probes.sslHosts[0])
	}
}

func TestChecker_ProbeFailureIsDown(t *testing.T) {
	probes := healthyProbes()
	probes.domain = model.ExpiryFailed(errProbe)

	rec := NewChecker(probes).Check(context.Background(), model.SiteRecord{URL: "https://example.com"})
	if rec.Status != model.StatusDown || !rec.DomainExpiry.IsZero() {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestChecker_InvalidURL(t *testing.T) {
	probes := healthyProbes()
	rec := NewChecker(probes).Check(context.Background(), model.SiteRecord{Name: "Broken", URL: "example.com"})

	if rec.Status != model.StatusDown || rec.URL != "example.com" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if len(probes.urls)+len(probes.sslHosts)+len(probes.domainHosts) != 0 {
		t.Fatal("no probe should run for an invalid URL")
	}
}

func TestNewProber(t *testing.T) {
	cfg := &config.Config{
		DNSResolvers: "127.0.0.1:53",
		DNSTimeout:   time.Second,
		HTTPTimeout:  2 * time.Second,
		TLSTimeout:   time.Second,
		WhoisTimeout: time.Second,
		UserAgent:    "ua",
	}
	p := NewProber(cfg)
	if p.HTTP.Client.Timeout != 2*time.Second || p.HTTP.UserAgent != "ua" {
		t.Errorf("http probe not configured: %+v", p.HTTP)
	}
	if p.SSL.Timeout != time.Second || p.Domain.Lookup == nil {
		t.Errorf("probes not configured: %+v %+v", p.SSL, p.Domain)
	}
	if p.WithRootCAs(nil).SSL.RootCAs != nil {
		t.Error("unexpected root pool")
	}

	var _ Probes = p
}

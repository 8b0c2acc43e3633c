package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"sitewatch/internal/model"
	"sitewatch/internal/utils"
)

func init() {
	utils.TestInitLogger()
}

var errProbe = errors.New("probe failed")

// fakeProbes answers every probe from fixed values and records the hosts it
// was asked about.
type fakeProbes struct {
	reachable bool
	ssl       model.Expiry
	domain    model.Expiry

	mu          sync.Mutex
	urls        []string
	sslHosts    []string
	domainHosts []string
}

func healthyProbes() *fakeProbes {
	return &fakeProbes{
		reachable: true,
		ssl:       model.ExpiresAt(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		domain:    model.ExpiresAt(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
}

func (f *fakeProbes) Reachable(ctx context.Context, rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, rawURL)
	return f.reachable
}

func (f *fakeProbes) SSLExpiry(ctx context.Context, host string) model.Expiry {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sslHosts = append(f.sslHosts, host)
	return f.ssl
}

func (f *fakeProbes) DomainExpiry(ctx context.Context, host string) model.Expiry {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.domainHosts = append(f.domainHosts, host)
	return f.domain
}

package service

import (
	"context"
	"crypto/x509"
	"errors"
	"net"
	"sync"
	"time"

	"sitewatch/internal/config"
	"sitewatch/internal/model"
	"sitewatch/internal/utils"
)

var errBadURL = errors.New("site URL is not an absolute http(s) URL")

// Probes is the set of network checks run against one site.
type Probes interface {
	Reachable(ctx context.Context, rawURL string) bool
	SSLExpiry(ctx context.Context, host string) model.Expiry
	DomainExpiry(ctx context.Context, host string) model.Expiry
}

// Prober wires the concrete probes together.
type Prober struct {
	HTTP   *ReachabilityProbe
	SSL    *SSLProbe
	Domain *DomainProbe
}

func NewProber(cfg *config.Config) *Prober {
	dnsSvc := NewDNSService(cfg.Resolvers(), cfg.DNSTimeout)
	return &Prober{
		HTTP:   NewReachabilityProbe(dnsSvc, cfg.HTTPTimeout, cfg.UserAgent),
		SSL:    NewSSLProbe(cfg.TLSTimeout),
		Domain: NewDomainProbe(cfg.WhoisTimeout),
	}
}

// WithRootCAs makes the TLS probe trust pool instead of the system roots.
func (p *Prober) WithRootCAs(pool *x509.CertPool) *Prober {
	p.SSL.RootCAs = pool
	return p
}

func (p *Prober) Reachable(ctx context.Context, rawURL string) bool {
	return p.HTTP.Reachable(ctx, rawURL)
}

func (p *Prober) SSLExpiry(ctx context.Context, host string) model.Expiry {
	return p.SSL.Expiry(ctx, host)
}

func (p *Prober) DomainExpiry(ctx context.Context, host string) model.Expiry {
	return p.Domain.Expiry(ctx, host)
}

// Checker produces one history row per site.
type Checker struct {
	Probes Probes
	Now    func() time.Time
}

func NewChecker(p Probes) *Checker {
	return &Checker{Probes: p, Now: time.Now}
}

// Check runs the three probes for site concurrently. Probe failures never
// escape; they show up as a DOWN row.
func (c *Checker) Check(ctx context.Context, site model.SiteRecord) model.StatusRecord {
	u, ok := utils.ParseSiteURL(site.URL)
	if !ok {
		utils.Log.Warn("invalid site url", utils.Field("name", site.Name), utils.Field("url", site.URL))
		res := model.ProbeResult{
			SSL:    model.ExpiryFailed(errBadURL),
			Domain: model.ExpiryFailed(errBadURL),
		}
		return c.record(site, res)
	}

	host := u.Hostname()
	sslHost := host
	if u.Scheme == "https" && u.Port() != "" {
		sslHost = net.JoinHostPort(host, u.Port())
	}

	var res model.ProbeResult
	var mu sync.Mutex
	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		r := c.Probes.Reachable(ctx, site.URL)
		mu.Lock()
		res.Reachable = r
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		e := c.Probes.SSLExpiry(ctx, sslHost)
		mu.Lock()
		res.SSL = e
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		e := c.Probes.DomainExpiry(ctx, host)
		mu.Lock()
		res.Domain = e
		mu.Unlock()
	}()
	wg.Wait()

	if !res.Reachable {
		probeFailures.WithLabelValues("http").Inc()
	}
	if !res.SSL.OK() {
		probeFailures.WithLabelValues("ssl").Inc()
		utils.Log.Info("ssl probe failed", utils.Field("url", site.URL), utils.Field("reason", res.SSL.Reason()))
	}
	if !res.Domain.OK() {
		probeFailures.WithLabelValues("whois").Inc()
		utils.Log.Info("whois probe failed", utils.Field("url", site.URL), utils.Field("reason", res.Domain.Reason()))
	}

	return c.record(site, res)
}

func (c *Checker) record(site model.SiteRecord, res model.ProbeResult) model.StatusRecord {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	rec := Synthesize(site, res, now())
	checksTotal.WithLabelValues(string(rec.Status)).Inc()
	return rec
}

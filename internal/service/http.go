package service

import (
	"context"
	"io"
	"net/http"
	"time"

	"sitewatch/internal/utils"
)

// ReachabilityProbe reports whether a site answers a GET with status 200.
type ReachabilityProbe struct {
	Resolver  HostResolver
	Client    *http.Client
	UserAgent string
}

func NewReachabilityProbe(resolver HostResolver, timeout time.Duration, userAgent string) *ReachabilityProbe {
	client := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
	return &ReachabilityProbe{Resolver: resolver, Client: client, UserAgent: userAgent}
}

// Reachable never fails: every error, including an unresolvable host, is
// reported as false. No request is sent when the host does not resolve.
func (p *ReachabilityProbe) Reachable(ctx context.Context, rawURL string) bool {
	u, ok := utils.ParseSiteURL(rawURL)
	if !ok {
		return false
	}

	if p.Resolver != nil {
		if _, err := p.Resolver.Resolve(ctx, u.Hostname()); err != nil {
			utils.Log.Debug("dns resolution failed", utils.Field("url", rawURL), utils.Field("error", err.Error()))
			return false
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return false
	}
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		utils.Log.Debug("http probe failed", utils.Field("url", rawURL), utils.Field("error", err.Error()))
		return false
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		_ = resp.Body.Close()
	}()

	return resp.StatusCode == http.StatusOK
}

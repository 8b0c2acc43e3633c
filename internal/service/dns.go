package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"

	"sitewatch/internal/utils"
)

var ErrNoAddress = errors.New("no address records")

// HostResolver resolves a hostname to its addresses.
type HostResolver interface {
	Resolve(ctx context.Context, host string) ([]string, error)
}

// DNSService queries the configured resolvers in order and returns the
// answers of the first one that responds. With no resolvers configured it
// falls back to the system resolver.
type DNSService struct {
	Resolvers []string
	Timeout   time.Duration
}

func NewDNSService(resolvers []string, timeout time.Duration) *DNSService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &DNSService{Resolvers: resolvers, Timeout: timeout}
}

func (s *DNSService) Resolve(ctx context.Context, host string) ([]string, error) {
	host = strings.TrimSuffix(strings.TrimSpace(host), ".")
	if utils.IsIP(host) {
		return []string{strings.Trim(host, "[]")}, nil
	}
	if host == "" {
		return nil, fmt.Errorf("resolve: empty host")
	}

	if len(s.Resolvers) == 0 {
		ctx, cancel := context.WithTimeout(ctx, s.Timeout)
		defer cancel()
		return net.DefaultResolver.LookupHost(ctx, host)
	}

	var lastErr error
	for _, server := range s.Resolvers {
		addrs, err := s.lookup(ctx, server, host)
		if err == nil {
			return addrs, nil
		}
		lastErr = err
		var rcodeErr *rcodeError
		if errors.As(err, &rcodeErr) && rcodeErr.rcode == dns.RcodeNameError {
			// NXDOMAIN is authoritative; asking the next resolver won't help.
			break
		}
	}
	return nil, lastErr
}

type rcodeError struct {
	host  string
	rcode int
}

func (e *rcodeError) Error() string {
	return fmt.Sprintf("resolve %s: %s", e.host, dns.RcodeToString[e.rcode])
}

// lookup asks one server for A and AAAA records in parallel.
func (s *DNSService) lookup(ctx context.Context, server, host string) ([]string, error) {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		addrs   []string
		errs    []error
		answers int
	)

	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		wg.Add(1)
		go func(qtype uint16) {
			defer wg.Done()
			r, err := s.query(ctx, server, host, qtype)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			answers++
			addrs = append(addrs, r...)
		}(qtype)
	}
	wg.Wait()

	if len(addrs) > 0 {
		return addrs, nil
	}
	for _, err := range errs {
		var rcodeErr *rcodeError
		if errors.As(err, &rcodeErr) {
			return nil, err
		}
	}
	if answers == 0 && len(errs) > 0 {
		return nil, errs[0]
	}
	return nil, fmt.Errorf("resolve %s: %w", host, ErrNoAddress)
}

func (s *DNSService) query(ctx context.Context, server, host string, qtype uint16) ([]string, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(host), qtype)
	m.RecursionDesired = true

	c := new(dns.Client)
	c.Timeout = s.Timeout
	in, _, err := c.ExchangeContext(ctx, m, server)
	if err != nil {
		return nil, err
	}
	if in.Rcode != dns.RcodeSuccess {
		return nil, &rcodeError{host: host, rcode: in.Rcode}
	}

	var results []string
	for _, ans := range in.Answer {
		switch t := ans.(type) {
		case *dns.A:
			results = append(results, t.A.String())
		case *dns.AAAA:
			results = append(results, t.AAAA.String())
		}
	}
	return results, nil
}

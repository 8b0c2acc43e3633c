package service

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"time"

	"sitewatch/internal/model"
)

// SSLProbe reads the leaf certificate's expiry. Verification uses the
// system roots unless RootCAs is set.
type SSLProbe struct {
	Timeout time.Duration
	RootCAs *x509.CertPool
}

func NewSSLProbe(timeout time.Duration) *SSLProbe {
	return &SSLProbe{Timeout: timeout}
}

// Expiry dials host:443, or host as given when it already carries a port.
func (p *SSLProbe) Expiry(ctx context.Context, host string) model.Expiry {
	addr := host
	hostname, _, err := net.SplitHostPort(host)
	if err != nil {
		hostname = host
		addr = net.JoinHostPort(host, "443")
	}

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: p.Timeout},
		Config: &tls.Config{
			ServerName: hostname,
			RootCAs:    p.RootCAs,
		},
	}

	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return model.ExpiryFailed(fmt.Errorf("tls dial %s: %w", addr, err))
	}
	defer func() {
		_ = conn.Close()
	}()

	tlsConn, ok := conn.(*tls.Conn)
	if !ok {
		return model.ExpiryFailed(fmt.Errorf("tls dial %s: not a tls connection", addr))
	}
	state := tlsConn.ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return model.ExpiryFailed(fmt.Errorf("tls dial %s: no certificates found", addr))
	}

	return model.ExpiresAt(state.PeerCertificates[0].NotAfter.UTC())
}

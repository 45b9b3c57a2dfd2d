package transport

import (
	"context"
	"net"
	"time"

	"golang.org/x/net/proxy"
)

// TCPDialer establishes TCP connections, honouring ALL_PROXY / NO_PROXY
// from the environment.
type TCPDialer struct {
	Timeout time.Duration
}

// DialContext connects to address over TCP, through a SOCKS5 proxy when
// the environment names one.
func (d *TCPDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	direct := &net.Dialer{Timeout: d.Timeout}
	if cd, ok := proxy.FromEnvironmentUsing(direct).(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, network, address)
	}
	return direct.DialContext(ctx, network, address)
}

// Close is a no-op for stateless TCP dialers.
func (d *TCPDialer) Close() error { return nil }

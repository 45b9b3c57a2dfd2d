package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
)

// TLSDialer wraps connections from Base in a TLS client session.
type TLSDialer struct {
	Base       Dialer
	SkipVerify bool
}

// DialContext dials through Base and completes the TLS handshake,
// verifying the certificate against the host part of address.
func (d *TLSDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	conn, err := d.Base.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}

	host, _, err := net.SplitHostPort(address)
	if err != nil {
		conn.Close()
		return nil, err
	}
	tc := tls.Client(conn, &tls.Config{
		ServerName:         host,
		InsecureSkipVerify: d.SkipVerify, //nolint:gosec // user opted in
		NextProtos:         []string{"irc"},
	})
	if err := tc.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}
	return tc, nil
}

// Close releases the base dialer.
func (d *TLSDialer) Close() error { return d.Base.Close() }

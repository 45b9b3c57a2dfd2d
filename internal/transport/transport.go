// Package transport opens the byte stream an IRC session runs over.
// Transports handle the "how" (plain TCP through an optional proxy, an
// SSH gateway, TLS on top of either) independent of the protocol
// spoken over the connection.
package transport

import "golang.org/x/net/proxy"

// Dialer opens outbound network connections.  It is a
// [proxy.ContextDialer] that may also hold long-lived resources.
type Dialer interface {
	proxy.ContextDialer

	// Close releases any long-lived resources held by the dialer
	// (e.g. an SSH session).  Stateless dialers return nil.
	Close() error
}

var (
	_ Dialer = (*TCPDialer)(nil)
	_ Dialer = (*SSHDialer)(nil)
	_ Dialer = (*TLSDialer)(nil)
)

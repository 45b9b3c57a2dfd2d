// Package tunnel reaches IRC servers through an SSH gateway, backed by
// golang.org/x/crypto/ssh.  Useful when the server only accepts
// connections from inside a network (a company bouncer, a private
// ircd on a jump host).
package tunnel

import (
	"context"
	"net"
)

// Gateway is a host that forwards TCP connections on our behalf.  A
// Gateway may die on its own; Alive tells the dialer to reconnect.
type Gateway interface {
	Connect(ctx context.Context) error
	Dial(ctx context.Context, network, address string) (net.Conn, error)
	Close() error
	Alive() bool
}

// Package transport abstracts the byte-stream channels connections run
// over. Implementations register themselves with the root package under
// their URL scheme.
package transport

import (
	"context"
	"fmt"
	"net"
	"net/url"
)

// Transport represents a method of producing byte-stream channels.
type Transport interface {
	// Name of the transport's URL scheme.
	Name() string

	// Bind creates a Listener if successful.
	Bind(u *url.URL) (net.Listener, error)

	// Connect to a remote address. A fatal error is one that will not
	// go away by retrying, such as an unresolvable address.
	Connect(ctx context.Context, u *url.URL) (conn net.Conn, fatal bool, err error)
}

// BuildURL builds a URL given a transport and an address.
func BuildURL(addr net.Addr, tp Transport) string {
	return fmt.Sprintf("%s://%s", tp.Name(), addr.String())
}

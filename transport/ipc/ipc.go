package ipc

import (
	"context"
	"net"
	"net/url"

	"github.com/meshwire/zmtp"
	"github.com/meshwire/zmtp/transport"
)

func init() {
	zmtp.RegisterTransport("ipc", func() transport.Transport {
		return IPCTransport{}
	})
}

// IPCTransport implements transport.Transport over unix domain sockets.
// The socket path is the URL's host and path joined, so both
// ipc:///tmp/sock and ipc://relative/sock work.
type IPCTransport struct{}

func (IPCTransport) Name() string {
	return "ipc"
}

// Bind to a unix socket path.
func (IPCTransport) Bind(u *url.URL) (net.Listener, error) {
	unixAddr, err := net.ResolveUnixAddr("unix", u.Host+u.Path)
	if err != nil {
		return nil, err
	}

	return net.ListenUnix("unix", unixAddr)
}

// Connect to a unix socket path.
func (IPCTransport) Connect(
	ctx context.Context,
	u *url.URL,
) (
	conn net.Conn,
	fatal bool,
	err error,
) {
	_, err = net.ResolveUnixAddr("unix", u.Host+u.Path)
	if err != nil {
		return nil, true, err
	}

	var d net.Dialer
	conn, err = d.DialContext(ctx, "unix", u.Host+u.Path)
	return conn, false, err
}

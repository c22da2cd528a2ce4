package tcp

import (
	"context"
	"net"
	"net/url"

	"github.com/meshwire/zmtp"
	"github.com/meshwire/zmtp/transport"
)

func init() {
	zmtp.RegisterTransport("tcp", func() transport.Transport {
		return TCPTransport{}
	})
}

// TCPTransport implements transport.Transport over tcp.
type TCPTransport struct{}

func (TCPTransport) Name() string {
	return "tcp"
}

// Bind to a tcp address.
func (TCPTransport) Bind(u *url.URL) (net.Listener, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", u.Host)
	if err != nil {
		return nil, err
	}

	return net.ListenTCP("tcp", tcpAddr)
}

// Connect to a tcp address.
func (TCPTransport) Connect(
	ctx context.Context,
	u *url.URL,
) (
	conn net.Conn,
	fatal bool,
	err error,
) {
	_, err = net.ResolveTCPAddr("tcp", u.Host)
	if err != nil {
		return nil, true, err
	}

	var d net.Dialer
	conn, err = d.DialContext(ctx, "tcp", u.Host)
	return conn, false, err
}

package zmtp

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/meshwire/zmtp/transport"
)

// Context owns the process-level wiring shared by the connections it
// creates: transports, configuration, the event bus and the mechanism to
// advertise in greetings.
type Context struct {
	sync.RWMutex
	transports map[string]transport.Transport
	ctx        context.Context
	conf       *Config
	bus        EventBus
	mech       string
}

// NewContext builds a Context with default configuration, no event bus
// and the NULL mechanism advertised.
func NewContext(ctx context.Context) *Context {
	conf := &Config{}
	conf.Default()
	return &Context{
		ctx:        ctx,
		transports: make(map[string]transport.Transport),
		conf:       conf,
		bus:        NopBus{},
		mech:       "NULL",
	}
}

// Config returns the configuration shared by every connection this
// Context creates. It may be mutated at any time.
func (c *Context) Config() *Config {
	c.RLock()
	defer c.RUnlock()
	return c.conf
}

// SetEventBus routes lifecycle events of future connections to bus.
func (c *Context) SetEventBus(bus EventBus) {
	c.Lock()
	defer c.Unlock()
	c.bus = bus
}

// SetMechanism changes the mechanism advertised in outgoing greetings.
// The named mechanism must be registered before connections are made.
func (c *Context) SetMechanism(name string) {
	c.Lock()
	defer c.Unlock()
	c.mech = name
}

func (c *Context) getTransport(name string) (transport.Transport, bool) {
	c.Lock()
	defer c.Unlock()

	if tp, ok := c.transports[name]; ok {
		return tp, ok
	}

	registeredTransports.RLock()
	defer registeredTransports.RUnlock()
	if fac, ok := registeredTransports.transports[name]; ok {
		tp := fac()
		c.transports[name] = tp
		return tp, true
	}

	return nil, false
}

// Dial connects to addr (scheme://host) and establishes a connection
// with the given local socket type.
func (c *Context) Dial(addr string, local SocketType) (*Conn, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return nil, err
	}

	tp, ok := c.getTransport(u.Scheme)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTransportNotFound, u.Scheme)
	}

	dialCtx, cancel := context.WithTimeout(c.ctx, c.conf.ConnectTimeout())
	conn, _, err := tp.Connect(dialCtx, u)
	cancel()
	if err != nil {
		return nil, err
	}

	return c.establish(conn, tp, local, false)
}

// Listen binds to addr (scheme://host) and returns a Listener that
// establishes connections with the given local socket type.
func (c *Context) Listen(addr string, local SocketType) (*Listener, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return nil, err
	}

	tp, ok := c.getTransport(u.Scheme)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTransportNotFound, u.Scheme)
	}

	nl, err := tp.Bind(u)
	if err != nil {
		return nil, err
	}

	return &Listener{nl: nl, tp: tp, parent: c, local: local}, nil
}

// establish runs connection setup over nc, bounding the whole exchange
// with the configured handshake timeout. Events for the connection carry
// scheme-qualified addresses built from the transport.
func (c *Context) establish(nc net.Conn, tp transport.Transport, local SocketType, server bool) (*Conn, error) {
	c.RLock()
	mech, conf, bus := c.mech, c.conf, c.bus
	c.RUnlock()

	bus = addrBus{
		next:   bus,
		local:  transport.BuildURL(nc.LocalAddr(), tp),
		remote: transport.BuildURL(nc.RemoteAddr(), tp),
	}

	if t := conf.HandshakeTimeout(); t > 0 {
		if err := nc.SetDeadline(time.Now().Add(t)); err != nil {
			nc.Close()
			return nil, fmt.Errorf("handshake deadline: %w", err)
		}
	}

	conn, err := NewConn(nc, mech, local, server, conf, bus)
	if err != nil {
		return nil, err
	}

	if err := nc.SetDeadline(time.Time{}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("handshake deadline: %w", err)
	}

	return conn, nil
}

// addrBus rewrites event addresses into the scheme-qualified form Dial
// and Listen accept, so bus consumers see the same notation callers use.
type addrBus struct {
	next   EventBus
	local  string
	remote string
}

func (b addrBus) Post(ev Event) {
	ev.LocalAddr = b.local
	ev.RemoteAddr = b.remote
	b.next.Post(ev)
}

// Listener accepts peers and establishes server-side connections.
type Listener struct {
	nl     net.Listener
	tp     transport.Transport
	parent *Context
	local  SocketType
}

// Accept the next peer and run connection establishment with it.
func (l *Listener) Accept() (*Conn, error) {
	nc, err := l.nl.Accept()
	if err != nil {
		return nil, err
	}

	return l.parent.establish(nc, l.tp, l.local, true)
}

// Addr the listener is bound to.
func (l *Listener) Addr() net.Addr {
	return l.nl.Addr()
}

// Close stops accepting peers. Established connections stay open.
func (l *Listener) Close() error {
	return l.nl.Close()
}

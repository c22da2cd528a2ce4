package zmtp

import (
	"fmt"
	"io"
	"net"
	"sync"
)

// Protocol version offered in outgoing greetings.
const (
	protocolVersionMajor = 3
	protocolVersionMinor = 1
)

// ConnState tracks how far connection establishment has progressed.
type ConnState int

const (
	StateAwaitingGreeting  = ConnState(0)
	StateAwaitingHandshake = ConnState(1)
	StateValidating        = ConnState(2)
	StateEstablished       = ConnState(3)
	StateClosed            = ConnState(4)
)

func (s ConnState) String() string {
	switch s {
	case StateAwaitingGreeting:
		return "Awaiting greeting"
	case StateAwaitingHandshake:
		return "Awaiting handshake"
	case StateValidating:
		return "Validating"
	case StateEstablished:
		return "Established"
	case StateClosed:
		return "Closed"
	}

	return ""
}

// Conn is a protocol connection over a single byte stream. It owns the
// stream exclusively from creation until Close.
//
// A Conn tolerates a split pair of goroutines, one sending and one
// receiving; neither SendFrame nor RecvFrame may itself be called
// concurrently. Callers needing cancellation should set deadlines on
// the underlying net.Conn; every failed read or write closes the Conn.
type Conn struct {
	stream        *Stream
	local         SocketType
	remote        SocketType
	remoteVersion struct {
		Major uint8
		Minor uint8
	}
	props      Properties
	bus        EventBus
	localAddr  string
	remoteAddr string

	mu      sync.Mutex
	state   ConnState
	pending []Message
}

// NewConn establishes a protocol connection over rw: it exchanges
// greetings, runs the handshake of the mechanism the peer's greeting
// names, and validates the declared socket types against each other.
// The advertised mechanism goes out in our own greeting.
//
// The local socket type must be one of the supported local roles. On
// failure the stream is closed before the error is returned.
func NewConn(rw io.ReadWriter, mech string, local SocketType, server bool, conf *Config, bus EventBus) (*Conn, error) {
	if conf == nil {
		conf = &Config{}
		conf.Default()
	}

	if bus == nil {
		bus = NopBus{}
	}

	c := &Conn{
		stream: NewStreamSize(rw, conf.ReadBufferSize()),
		state:  StateAwaitingGreeting,
		local:  local,
		bus:    bus,
	}
	if nc, ok := rw.(net.Conn); ok {
		c.localAddr = nc.LocalAddr().String()
		c.remoteAddr = nc.RemoteAddr().String()
	}

	if !local.Supported() {
		return nil, c.fail(fmt.Errorf("%w: %s", ErrSocketTypeUnsupported, local))
	}

	own := Greeting{Mechanism: mech, Server: server}
	own.Version.Major = protocolVersionMajor
	own.Version.Minor = protocolVersionMinor
	if _, err := own.WriteTo(c.stream); err != nil {
		return nil, c.fail(fmt.Errorf("greeting: %w", err))
	}
	c.post(EventTypeGreetingSent, "")

	var peer Greeting
	if _, err := peer.ReadFrom(c.stream); err != nil {
		return nil, c.fail(fmt.Errorf("greeting: %w", err))
	}
	c.post(EventTypeGreetingReceived, peer.Mechanism)
	c.remoteVersion.Major = peer.Version.Major
	c.remoteVersion.Minor = peer.Version.Minor
	c.state = StateAwaitingHandshake

	fac, ok := FindMechanism(peer.Mechanism)
	if !ok {
		return nil, c.fail(fmt.Errorf("greeting: %w: %s", ErrMechanismUnsupported, peer.Mechanism))
	}

	props, err := fac().Handshake(c.stream, local)
	if err != nil {
		return nil, c.fail(fmt.Errorf("handshake: %w", err))
	}
	c.post(EventTypeHandshakeDone, "")
	c.state = StateValidating

	value, ok := props.Get(PropertySocketType)
	if !ok {
		return nil, c.fail(fmt.Errorf("handshake: %w", ErrSocketTypeMissing))
	}

	remote, err := ParseSocketType(value)
	if err != nil {
		return nil, c.fail(fmt.Errorf("handshake: %w", err))
	}

	if !local.Compatible(remote) {
		comboErr := InvalidSocketCombinationError{Local: local, Remote: remote}
		errFrame := NewFatalError(comboErr.Error())
		_, _ = errFrame.WriteTo(c.stream)
		return nil, c.fail(comboErr)
	}
	c.remote = remote
	c.props = props
	c.post(EventTypeValidated, string(remote))

	c.state = StateEstablished
	c.post(EventTypeEstablished, "")
	return c, nil
}

// fail closes the stream, records the terminal state and posts the
// failure before handing the error back.
func (c *Conn) fail(err error) error {
	c.post(EventTypeFailed, err.Error())
	c.state = StateClosed
	c.stream.Close()
	return err
}

func (c *Conn) post(t EventType, notes string) {
	c.bus.Post(Event{
		EventType:  t,
		LocalAddr:  c.localAddr,
		RemoteAddr: c.remoteAddr,
		Notes:      notes,
	})
}

// RecvFrame reads the next frame off the stream. Message frames carrying
// the MORE flag accumulate in the pending buffer; a final message frame
// clears it. The Conn never reassembles multipart messages itself.
//
// Any read or parse error closes the Conn.
func (c *Conn) RecvFrame() (Frame, error) {
	if err := c.ensureEstablished(); err != nil {
		return Frame{}, err
	}

	var f Frame
	if _, err := f.ReadFrom(c.stream); err != nil {
		c.teardown(err)
		return Frame{}, err
	}

	if f.IsMessage() {
		c.mu.Lock()
		if f.Message.More {
			c.pending = append(c.pending, *f.Message)
		} else {
			c.pending = c.pending[:0]
		}
		c.mu.Unlock()
	}

	return f, nil
}

// SendFrame writes a frame to the stream. Any write error closes the
// Conn.
func (c *Conn) SendFrame(f Frame) error {
	if err := c.ensureEstablished(); err != nil {
		return err
	}

	if _, err := f.WriteTo(c.stream); err != nil {
		c.teardown(err)
		return err
	}

	return nil
}

func (c *Conn) ensureEstablished() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateEstablished {
		return fmt.Errorf("%w: %s", ErrConnNotEstablished, c.state)
	}

	return nil
}

// teardown moves the Conn to its terminal state exactly once; a later
// failure on the other half of a send/receive split finds it already
// closed.
func (c *Conn) teardown(err error) {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return
	}
	c.state = StateClosed
	c.mu.Unlock()

	c.stream.Close()
	c.post(EventTypeClosed, err.Error())
}

// Pending returns a copy of the message parts accumulated for the
// in-progress multipart message.
func (c *Conn) Pending() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Message, len(c.pending))
	copy(out, c.pending)
	return out
}

// State the connection is currently in.
func (c *Conn) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// LocalSocketType returns the socket type this side declared.
func (c *Conn) LocalSocketType() SocketType {
	return c.local
}

// RemoteSocketType returns the socket type the peer declared.
func (c *Conn) RemoteSocketType() SocketType {
	return c.remote
}

// RemoteVersion returns the protocol version from the peer's greeting.
func (c *Conn) RemoteVersion() (major, minor uint8) {
	return c.remoteVersion.Major, c.remoteVersion.Minor
}

// Properties returns the metadata the peer declared during the
// handshake.
func (c *Conn) Properties() Properties {
	return c.props
}

// Close the connection and its stream. Closing twice is harmless.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return nil
	}
	c.state = StateClosed
	c.mu.Unlock()

	err := c.stream.Close()
	c.post(EventTypeClosed, "")
	return err
}

type connNotEstablished struct{}

func (connNotEstablished) Error() string {
	return "Connection not established"
}

var ErrConnNotEstablished connNotEstablished

type socketTypeMissing struct{}

func (socketTypeMissing) Error() string {
	return "Peer declared no socket-type"
}

var ErrSocketTypeMissing socketTypeMissing

// InvalidSocketCombinationError reports a peer whose socket type cannot
// pair with the local one. The same text is sent to the peer in an ERROR
// command before the connection is torn down.
type InvalidSocketCombinationError struct {
	Local  SocketType
	Remote SocketType
}

func (e InvalidSocketCombinationError) Error() string {
	return fmt.Sprintf("invalid socket combination: %s with %s", e.Local, e.Remote)
}

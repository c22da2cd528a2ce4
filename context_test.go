package zmtp_test

import (
	"context"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshwire/zmtp"
	_ "github.com/meshwire/zmtp/transport/tcp"
)

func TestContextDialListen(t *testing.T) {
	zctx := zmtp.NewContext(context.Background())

	ln, err := zctx.Listen("tcp://127.0.0.1:0", zmtp.SocketTypeRep)
	require.NoError(t, err)
	defer ln.Close()

	serverCh := make(chan connResult, 1)
	go func() {
		conn, err := ln.Accept()
		serverCh <- connResult{conn, err}
	}()

	client, err := zctx.Dial("tcp://"+ln.Addr().String(), zmtp.SocketTypeReq)
	require.NoError(t, err)
	defer client.Close()

	res := <-serverCh
	require.NoError(t, res.err)
	server := res.conn
	defer server.Close()

	assert.Equal(t, zmtp.SocketTypeRep, client.RemoteSocketType())
	assert.Equal(t, zmtp.SocketTypeReq, server.RemoteSocketType())

	require.NoError(t, client.SendFrame(zmtp.NewMessageFrame(false, []byte("hi"))))
	f, err := server.RecvFrame()
	require.NoError(t, err)
	require.True(t, f.IsMessage())
	assert.Equal(t, "hi", string(f.Message.Body))
}

func TestContextEventAddresses(t *testing.T) {
	server := zmtp.NewContext(context.Background())
	ln, err := server.Listen("tcp://127.0.0.1:0", zmtp.SocketTypeRep)
	require.NoError(t, err)
	defer ln.Close()

	serverCh := make(chan connResult, 1)
	go func() {
		conn, err := ln.Accept()
		serverCh <- connResult{conn, err}
	}()

	// A separate client context keeps the recording bus single-writer.
	client := zmtp.NewContext(context.Background())
	bus := &recordBus{}
	client.SetEventBus(bus)

	conn, err := client.Dial("tcp://"+ln.Addr().String(), zmtp.SocketTypeReq)
	require.NoError(t, err)
	defer conn.Close()

	res := <-serverCh
	require.NoError(t, res.err)
	defer res.conn.Close()

	require.NotEmpty(t, bus.events)
	for _, ev := range bus.events {
		assert.True(t, strings.HasPrefix(ev.LocalAddr, "tcp://"), "LocalAddr = %q", ev.LocalAddr)
		assert.True(t, strings.HasPrefix(ev.RemoteAddr, "tcp://"), "RemoteAddr = %q", ev.RemoteAddr)
	}
	assert.Equal(t, "tcp://"+ln.Addr().String(), bus.events[0].RemoteAddr)
}

func TestContextHandshakeTimeout(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	// The peer accepts and swallows the greeting without ever answering.
	go func() {
		nc, err := ln.Accept()
		if err != nil {
			return
		}
		defer nc.Close()
		io.Copy(io.Discard, nc)
	}()

	zctx := zmtp.NewContext(context.Background())
	zctx.Config().SetHandshakeTimeout(100 * time.Millisecond)

	_, err = zctx.Dial("tcp://"+ln.Addr().String(), zmtp.SocketTypeReq)
	require.Error(t, err)

	var ne net.Error
	require.ErrorAs(t, err, &ne)
	assert.True(t, ne.Timeout())
}

func TestContextHandshakeDeadlineCleared(t *testing.T) {
	zctx := zmtp.NewContext(context.Background())
	zctx.Config().SetHandshakeTimeout(200 * time.Millisecond)

	ln, err := zctx.Listen("tcp://127.0.0.1:0", zmtp.SocketTypeRep)
	require.NoError(t, err)
	defer ln.Close()

	serverCh := make(chan connResult, 1)
	go func() {
		conn, err := ln.Accept()
		serverCh <- connResult{conn, err}
	}()

	client, err := zctx.Dial("tcp://"+ln.Addr().String(), zmtp.SocketTypeReq)
	require.NoError(t, err)
	defer client.Close()

	res := <-serverCh
	require.NoError(t, res.err)
	server := res.conn
	defer server.Close()

	// Traffic after the handshake window must not inherit its deadline.
	time.Sleep(350 * time.Millisecond)

	require.NoError(t, client.SendFrame(zmtp.NewMessageFrame(false, []byte("late"))))
	f, err := server.RecvFrame()
	require.NoError(t, err)
	require.True(t, f.IsMessage())
	assert.Equal(t, "late", string(f.Message.Body))
}

func TestContextUnknownScheme(t *testing.T) {
	zctx := zmtp.NewContext(context.Background())

	_, err := zctx.Dial("carrierpigeon://somewhere", zmtp.SocketTypeReq)
	require.ErrorIs(t, err, zmtp.ErrTransportNotFound)

	_, err = zctx.Listen("carrierpigeon://somewhere", zmtp.SocketTypeRep)
	require.ErrorIs(t, err, zmtp.ErrTransportNotFound)
}

func TestContextConfig(t *testing.T) {
	zctx := zmtp.NewContext(context.Background())
	conf := zctx.Config()
	require.NotNil(t, conf)

	conf.SetHandshakeTimeout(time.Minute)
	assert.Equal(t, time.Minute, conf.HandshakeTimeout())
	conf.SetConnectTimeout(2 * time.Second)
	assert.Equal(t, 2*time.Second, conf.ConnectTimeout())
	conf.SetReadBufferSize(8192)
	assert.Equal(t, 8192, conf.ReadBufferSize())
}

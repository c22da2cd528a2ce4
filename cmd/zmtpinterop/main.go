// Command zmtpinterop exercises this implementation against libzmq. It
// binds a libzmq REP socket through pebbe/zmq4 and trades greetings
// with it over a raw TCP connection, where both sides interoperate. It
// then attempts full establishment, which is expected to stop at the
// command stage: command names here are NUL-terminated where libzmq
// length-prefixes them, and the run reports where the two dialects part
// ways.
package main

import (
	"context"
	"flag"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/pebbe/zmq4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/meshwire/zmtp"
	"github.com/meshwire/zmtp/null"
	_ "github.com/meshwire/zmtp/transport/tcp"
)

func main() {
	addr := flag.String("addr", "tcp://127.0.0.1:8089", "endpoint the libzmq REP socket binds")
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Str("app", "zmtpinterop").Logger()

	rep, err := bindEcho(*addr)
	if err != nil {
		log.Fatal().Err(err).Msg("failed binding libzmq REP socket")
	}
	defer rep.Close()

	probeGreeting(*addr)
	exchange(*addr)
}

// bindEcho stands up a libzmq REP socket that echoes every request back
// to its sender.
func bindEcho(addr string) (*zmq4.Socket, error) {
	sock, err := zmq4.NewSocket(zmq4.REP)
	if err != nil {
		return nil, err
	}

	if err := sock.Bind(addr); err != nil {
		sock.Close()
		return nil, err
	}

	go func() {
		for {
			msg, err := sock.RecvMessage(0)
			if err != nil {
				return
			}

			if _, err := sock.SendMessage(msg); err != nil {
				return
			}
		}
	}()

	return sock, nil
}

// probeGreeting trades greetings with the libzmq peer over a raw TCP
// connection and reports what the peer announced. libzmq sends its
// greeting in stages, so the read has to collect all 64 octets.
func probeGreeting(addr string) {
	u, err := url.Parse(addr)
	if err != nil {
		log.Fatal().Err(err).Msg("bad endpoint")
	}

	nc, err := net.DialTimeout("tcp", u.Host, 3*time.Second)
	if err != nil {
		log.Fatal().Err(err).Msg("failed dialing raw endpoint")
	}
	defer nc.Close()

	own := zmtp.Greeting{Mechanism: null.MechName}
	own.Version.Major = 3
	own.Version.Minor = 1
	if _, err := own.WriteTo(nc); err != nil {
		log.Fatal().Err(err).Msg("failed writing greeting")
	}

	var peer zmtp.Greeting
	if _, err := peer.ReadFrom(nc); err != nil {
		log.Fatal().Err(err).Msg("failed reading libzmq greeting")
	}

	log.Info().
		Uint8("major", peer.Version.Major).
		Uint8("minor", peer.Version.Minor).
		Str("mechanism", peer.Mechanism).
		Bool("as_server", peer.Server).
		Msg("libzmq greeting received")
}

// exchange attempts full establishment as REQ against the libzmq REP
// socket. The command stage is expected to diverge over the
// command-name layout, and the divergence is reported rather than
// treated as a failure. Against a peer speaking this dialect the same
// path runs one echo round trip, with the REP envelope's empty
// delimiter part ahead of the body mirrored back in the reply.
func exchange(addr string) {
	zctx := zmtp.NewContext(context.Background())
	conn, err := zctx.Dial(addr, zmtp.SocketTypeReq)
	if err != nil {
		log.Info().Err(err).Msg("establishment stopped at the command stage; command-name layouts differ")
		return
	}
	defer conn.Close()

	major, minor := conn.RemoteVersion()
	log.Info().
		Str("remote", string(conn.RemoteSocketType())).
		Uint8("major", major).
		Uint8("minor", minor).
		Msg("connection established")
	conn.Properties().Each(func(name string, value []byte) {
		log.Info().Str("name", name).Str("value", string(value)).Msg("peer property")
	})

	if err := conn.SendFrame(zmtp.NewMessageFrame(true, nil)); err != nil {
		log.Fatal().Err(err).Msg("failed sending delimiter")
	}
	if err := conn.SendFrame(zmtp.NewMessageFrame(false, []byte("ping"))); err != nil {
		log.Fatal().Err(err).Msg("failed sending request")
	}

	for {
		f, err := conn.RecvFrame()
		if err != nil {
			log.Fatal().Err(err).Msg("failed receiving reply")
		}

		if f.IsCommand() {
			log.Info().Str("command", f.Command.Name).Msg("received command")
			continue
		}

		if f.Message.More {
			continue
		}

		log.Info().Str("reply", string(f.Message.Body)).Msg("echo round trip complete")
		return
	}
}

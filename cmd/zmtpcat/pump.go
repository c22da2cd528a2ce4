package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/meshwire/zmtp"
)

// pump ships stdin lines to the peer as single-part messages and prints
// incoming message bodies line by line. Commands are logged rather than
// printed so piped output stays clean.
func pump(conn *zmtp.Conn) error {
	defer conn.Close()

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			if err := conn.SendFrame(zmtp.NewMessageFrame(false, line)); err != nil {
				logger.Warn().Err(err).Msg("send failed")
				return
			}
		}
		if err := scanner.Err(); err != nil {
			logger.Warn().Err(err).Msg("stdin read failed")
		}
	}()

	for {
		f, err := conn.RecvFrame()
		if err != nil {
			if errors.Is(err, io.EOF) {
				logger.Info().Msg("peer closed the connection")
				return nil
			}
			return fmt.Errorf("recv: %w", err)
		}

		switch {
		case f.IsMessage():
			fmt.Printf("%s\n", f.Message.Body)
		case f.IsCommand():
			logger.Info().
				Str("command", f.Command.Name).
				Int("bytes", len(f.Command.Body)).
				Msg("received command")
		}
	}
}

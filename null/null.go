// Package null implements the NULL security mechanism: no authentication
// and no encryption, just a READY exchange carrying peer metadata.
// Importing the package registers it.
package null

import (
	"fmt"

	"github.com/meshwire/zmtp"
)

type Null struct{}

func (Null) Name() string {
	return MechName
}

// Handshake sends our READY eagerly, then requires the peer's READY
// before anything else. The local socket type is declared in the READY
// properties.
func (Null) Handshake(s *zmtp.Stream, local zmtp.SocketType) (zmtp.Properties, error) {
	props := zmtp.NewProperties()
	props.Set(zmtp.PropertySocketType, []byte(local))
	body, err := props.Encode()
	if err != nil {
		return zmtp.Properties{}, err
	}

	ready := zmtp.NewCommandFrame(zmtp.CommandReady, body)
	if _, err := ready.WriteTo(s); err != nil {
		return zmtp.Properties{}, err
	}

	var f zmtp.Frame
	if _, err := f.ReadFrom(s); err != nil {
		return zmtp.Properties{}, err
	}

	if !f.IsCommand() {
		return zmtp.Properties{}, fmt.Errorf("%w: received message frame", ErrNotReady)
	}

	if f.Command.Name != zmtp.CommandReady {
		return zmtp.Properties{}, fmt.Errorf("%w: received %s", ErrNotReady, f.Command.Name)
	}

	peer, err := zmtp.DecodeProperties(f.Command.Body)
	if err != nil {
		return zmtp.Properties{}, err
	}

	return peer, nil
}

type notReady struct{}

func (notReady) Error() string {
	return "Failed receiving ready command"
}

var ErrNotReady notReady

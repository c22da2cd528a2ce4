package zmtp

import (
	"bytes"
	"fmt"
	"io"
)

const (
	greetingLen   = 64
	sigFirstOctet = 0xFF
	sigLastOctet  = 0x7F
	mechanismLen  = 20
)

// Greeting byte layout.
const (
	sigLastPos   = 9
	verMajorPos  = 10
	verMinorPos  = 11
	mechanismPos = 12
	asServerPos  = 32
)

// Greeting is the fixed 64-octet preamble both peers exchange before any
// frame traffic.
type Greeting struct {
	// Version of the protocol the peer speaks.
	Version struct {
		// Major protocol version.
		Major uint8

		// Minor protocol version.
		Minor uint8
	}

	// Mechanism names the security mechanism for the rest of the
	// connection.
	Mechanism string

	// Server is true if the peer takes the server role.
	Server bool
}

// WriteTo writes the greeting in wire form. The mechanism name must fit
// the 20-octet field and use only the characters the protocol permits.
func (g Greeting) WriteTo(w io.Writer) (int64, error) {
	if len(g.Mechanism) > mechanismLen {
		return 0, fmt.Errorf("%w: %q", ErrMechanismTooLong, g.Mechanism)
	}

	for i := 0; i < len(g.Mechanism); i++ {
		if !validMechanismByte(g.Mechanism[i]) {
			return 0, fmt.Errorf("%w: %q", ErrMechanismInvalidChar, g.Mechanism)
		}
	}

	var buf [greetingLen]byte
	buf[0] = sigFirstOctet
	buf[sigLastPos] = sigLastOctet
	buf[verMajorPos] = g.Version.Major
	buf[verMinorPos] = g.Version.Minor
	copy(buf[mechanismPos:mechanismPos+mechanismLen], g.Mechanism)
	if g.Server {
		buf[asServerPos] = 0x01
	}

	n, err := w.Write(buf[:])
	return int64(n), err
}

// ReadFrom reads a greeting from the given reader, replacing the
// greeting's contents. The padding and filler octets are not inspected.
func (g *Greeting) ReadFrom(r io.Reader) (int64, error) {
	var buf [greetingLen]byte
	n, err := io.ReadFull(r, buf[:])
	total := int64(n)
	if err != nil {
		return total, err
	}

	if buf[0] != sigFirstOctet || buf[sigLastPos] != sigLastOctet {
		return total, ErrSignature
	}

	g.Version.Major = buf[verMajorPos]
	g.Version.Minor = buf[verMinorPos]

	mech := buf[mechanismPos : mechanismPos+mechanismLen]
	if end := bytes.IndexByte(mech, 0); end >= 0 {
		mech = mech[:end]
	}
	for _, b := range mech {
		if !validMechanismByte(b) {
			return total, fmt.Errorf("%w: %q", ErrMechanismInvalidChar, mech)
		}
	}
	g.Mechanism = string(mech)

	switch buf[asServerPos] {
	case 0x00:
		g.Server = false
	case 0x01:
		g.Server = true
	default:
		return total, AsServerError{Value: buf[asServerPos]}
	}

	return total, nil
}

// validMechanismByte permits uppercase alphanumerics and -_.+ in
// mechanism names. Lowercase is rejected outright.
func validMechanismByte(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z':
		return true
	case b >= '0' && b <= '9':
		return true
	case b == '-' || b == '_' || b == '.' || b == '+':
		return true
	}

	return false
}

type invalidSignature struct{}

func (invalidSignature) Error() string {
	return "Malformed greeting signature"
}

// ErrSignature is returned when a greeting does not open with the
// protocol signature.
var ErrSignature invalidSignature

type mechanismInvalidChar struct{}

func (mechanismInvalidChar) Error() string {
	return "Invalid character in mechanism name"
}

var ErrMechanismInvalidChar mechanismInvalidChar

type mechanismTooLong struct{}

func (mechanismTooLong) Error() string {
	return "Mechanism name exceeds 20 octets"
}

var ErrMechanismTooLong mechanismTooLong

// AsServerError reports an as-server octet that is neither 0x00 nor 0x01.
type AsServerError struct {
	Value byte
}

func (e AsServerError) Error() string {
	return fmt.Sprintf("invalid as-server octet: 0x%02X", e.Value)
}

package zmtp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"
)

const (
	flagMore         = 0x01
	flagLong         = 0x02
	flagCommand      = 0x04
	flagReservedMask = 0xF8
)

// shortSizeMax is the largest body a SHORT frame can carry; anything
// bigger takes the 8-octet LONG form.
const shortSizeMax = 255

// Well-known command names.
const (
	CommandReady = "READY"
	CommandError = "ERROR"
)

// errorMsgMax is the longest reason an ERROR command can carry.
const errorMsgMax = 255

// Command is a control frame exchanged during connection setup. Commands
// are never multipart, which the type makes unrepresentable.
type Command struct {
	Name string
	Body []byte
}

// Message is a data frame. More marks it as a non-final part of a
// multipart message.
type Message struct {
	More bool
	Body []byte
}

// Frame is the atomic unit of wire traffic. Exactly one of Command or
// Message is set.
type Frame struct {
	Command *Command
	Message *Message
}

// NewCommandFrame builds a frame holding the named command.
func NewCommandFrame(name string, body []byte) Frame {
	return Frame{Command: &Command{Name: name, Body: body}}
}

// NewMessageFrame builds a frame holding a message part.
func NewMessageFrame(more bool, body []byte) Frame {
	return Frame{Message: &Message{More: more, Body: body}}
}

// NewFatalError builds the ERROR command sent to a peer right before the
// connection is abandoned. The body is a 1-octet length followed by the
// reason, cut to at most 255 bytes without splitting a multi-byte rune.
func NewFatalError(reason string) Frame {
	cut := len(reason)
	if cut > errorMsgMax {
		cut = errorMsgMax
		for cut > 0 && !utf8.RuneStart(reason[cut]) {
			cut--
		}
	}

	body := make([]byte, 0, 1+cut)
	body = append(body, byte(cut))
	body = append(body, reason[:cut]...)
	return NewCommandFrame(CommandError, body)
}

// IsCommand reports whether the frame holds a command.
func (f Frame) IsCommand() bool {
	return f.Command != nil
}

// IsMessage reports whether the frame holds a message.
func (f Frame) IsMessage() bool {
	return f.Message != nil
}

// WriteTo writes the frame in wire form.
func (f Frame) WriteTo(w io.Writer) (int64, error) {
	switch {
	case f.Command != nil:
		return f.Command.WriteTo(w)
	case f.Message != nil:
		return f.Message.WriteTo(w)
	}

	return 0, ErrFrameEmpty
}

// writeFrameHeader writes the flags octet and the size field, switching
// to the LONG form when the body exceeds shortSizeMax.
func writeFrameHeader(w io.Writer, flags byte, size uint64) (int64, error) {
	var hdr [9]byte
	hdr[0] = flags
	n := 2
	if size > shortSizeMax {
		hdr[0] |= flagLong
		binary.BigEndian.PutUint64(hdr[1:], size)
		n = 9
	} else {
		hdr[1] = byte(size)
	}

	written, err := w.Write(hdr[:n])
	return int64(written), err
}

// WriteTo writes the command to the given writer. The size field covers
// the name, its NUL terminator and the body.
func (c Command) WriteTo(w io.Writer) (int64, error) {
	if !utf8.ValidString(c.Name) {
		return 0, fmt.Errorf("%w: %q", ErrCommandNameInvalidUTF8, c.Name)
	}

	if strings.IndexByte(c.Name, 0) >= 0 {
		return 0, fmt.Errorf("%w: contains NUL octet", ErrCommandNameInvalid)
	}

	size := uint64(len(c.Name)) + 1 + uint64(len(c.Body))
	total, err := writeFrameHeader(w, flagCommand, size)
	if err != nil {
		return total, err
	}

	// Zero-length writes are skipped: on a synchronous channel they cost
	// a rendezvous the reader has no reason to serve.
	if len(c.Name) > 0 {
		n, err := io.WriteString(w, c.Name)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}

	n, err := w.Write([]byte{0})
	total += int64(n)
	if err != nil {
		return total, err
	}

	if len(c.Body) == 0 {
		return total, nil
	}

	n, err = w.Write(c.Body)
	total += int64(n)
	return total, err
}

// WriteTo writes the message to the given writer.
func (m Message) WriteTo(w io.Writer) (int64, error) {
	var flags byte
	if m.More {
		flags |= flagMore
	}

	total, err := writeFrameHeader(w, flags, uint64(len(m.Body)))
	if err != nil {
		return total, err
	}

	if len(m.Body) == 0 {
		return total, nil
	}

	n, err := w.Write(m.Body)
	total += int64(n)
	return total, err
}

// ReadFrom reads the next frame from the given reader, replacing the
// frame's contents. The flags octet is validated before the size field is
// trusted, and the size field before any body is allocated.
func (f *Frame) ReadFrom(r io.Reader) (int64, error) {
	var buf [8]byte
	n, err := io.ReadFull(r, buf[:1])
	total := int64(n)
	if err != nil {
		return total, err
	}

	flags := buf[0]
	if flags&flagReservedMask != 0 {
		return total, fmt.Errorf("%w: 0x%02X", ErrFlagsInvalid, flags)
	}

	if flags&flagCommand != 0 && flags&flagMore != 0 {
		return total, ErrMultipartCommand
	}

	var size uint64
	if flags&flagLong != 0 {
		n, err := io.ReadFull(r, buf[:8])
		total += int64(n)
		if err != nil {
			return total, err
		}
		size = binary.BigEndian.Uint64(buf[:8])
	} else {
		n, err := io.ReadFull(r, buf[:1])
		total += int64(n)
		if err != nil {
			return total, err
		}
		size = uint64(buf[0])
	}

	if size > math.MaxInt {
		return total, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, size)
	}

	body := make([]byte, size)
	n, err = io.ReadFull(r, body)
	total += int64(n)
	if err != nil {
		return total, err
	}

	if flags&flagCommand == 0 {
		f.Command = nil
		f.Message = &Message{More: flags&flagMore != 0, Body: body}
		return total, nil
	}

	end := bytes.IndexByte(body, 0)
	if end < 0 {
		return total, ErrCommandNameUnterminated
	}

	name := body[:end]
	if !utf8.Valid(name) {
		return total, fmt.Errorf("%w: %q", ErrCommandNameInvalidUTF8, name)
	}

	f.Message = nil
	f.Command = &Command{Name: string(name), Body: body[end+1:]}
	return total, nil
}

type flagsInvalid struct{}

func (flagsInvalid) Error() string {
	return "Reserved frame flag bits set"
}

// ErrFlagsInvalid is returned when a frame sets any of the reserved flag
// bits 3 through 7.
var ErrFlagsInvalid flagsInvalid

type multipartCommand struct{}

func (multipartCommand) Error() string {
	return "Command frames cannot be multipart"
}

// ErrMultipartCommand is returned when a frame sets both the COMMAND and
// MORE bits.
var ErrMultipartCommand multipartCommand

type commandNameInvalidUTF8 struct{}

func (commandNameInvalidUTF8) Error() string {
	return "Command name is not valid UTF-8"
}

var ErrCommandNameInvalidUTF8 commandNameInvalidUTF8

type commandNameUnterminated struct{}

func (commandNameUnterminated) Error() string {
	return "Command name is not NUL terminated"
}

var ErrCommandNameUnterminated commandNameUnterminated

type commandNameInvalid struct{}

func (commandNameInvalid) Error() string {
	return "Invalid command name"
}

var ErrCommandNameInvalid commandNameInvalid

type frameTooLarge struct{}

func (frameTooLarge) Error() string {
	return "Frame too large for this platform"
}

// ErrFrameTooLarge is returned when a frame declares a size beyond what
// the host can address.
var ErrFrameTooLarge frameTooLarge

type frameEmpty struct{}

func (frameEmpty) Error() string {
	return "Frame holds neither command nor message"
}

var ErrFrameEmpty frameEmpty

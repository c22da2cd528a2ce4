package zmtp

import (
	"bufio"
	"io"
)

// Stream pairs the buffered read half of a duplex byte channel with its
// write half. A Conn owns its Stream exclusively for its whole life;
// nothing else may read from or write to the channel while the Conn
// lives.
type Stream struct {
	*bufio.Reader
	rw io.ReadWriter
}

// NewStream wraps rw with the default read buffer size.
func NewStream(rw io.ReadWriter) *Stream {
	return NewStreamSize(rw, defaultReadBufferSize)
}

// NewStreamSize wraps rw with a read buffer of the given size.
func NewStreamSize(rw io.ReadWriter, size int) *Stream {
	return &Stream{
		Reader: bufio.NewReaderSize(rw, size),
		rw:     rw,
	}
}

// Write passes straight through to the underlying channel.
func (s *Stream) Write(p []byte) (int, error) {
	return s.rw.Write(p)
}

// Close closes the underlying channel when it supports closing.
func (s *Stream) Close() error {
	if c, ok := s.rw.(io.Closer); ok {
		return c.Close()
	}

	return nil
}

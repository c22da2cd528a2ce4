package zmtp

import (
	"bytes"
	"io"
	"net"
	"testing"
)

func TestStreamReadWrite(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewStream(buf)

	if _, err := s.Write([]byte("abc")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got := make([]byte, 3)
	if _, err := io.ReadFull(s, got); err != nil {
		t.Fatalf("ReadFull() error = %v", err)
	}
	if string(got) != "abc" {
		t.Errorf("read %q, want abc", got)
	}
}

func TestStreamCloseWithoutCloser(t *testing.T) {
	s := NewStream(&bytes.Buffer{})
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestStreamCloseClosesChannel(t *testing.T) {
	a, b := net.Pipe()
	defer b.Close()

	s := NewStream(a)
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, err := a.Write([]byte{0}); err == nil {
		t.Error("write on closed channel succeeded")
	}
}

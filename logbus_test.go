package zmtp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLogBusPost(t *testing.T) {
	buf := &bytes.Buffer{}
	bus := LogBus{Logger: zerolog.New(buf)}

	bus.Post(Event{
		EventType:  EventTypeEstablished,
		LocalAddr:  "127.0.0.1:1111",
		RemoteAddr: "127.0.0.1:2222",
	})

	out := buf.String()
	if !strings.Contains(out, `"level":"info"`) {
		t.Errorf("established event logged as %s, want info level", out)
	}
	if !strings.Contains(out, `"event":"Established"`) {
		t.Errorf("missing event field in %s", out)
	}
	if !strings.Contains(out, `"remote":"127.0.0.1:2222"`) {
		t.Errorf("missing remote field in %s", out)
	}
}

func TestLogBusPostFailure(t *testing.T) {
	buf := &bytes.Buffer{}
	bus := LogBus{Logger: zerolog.New(buf)}

	bus.Post(Event{
		EventType: EventTypeFailed,
		Notes:     "greeting: Malformed greeting signature",
	})

	out := buf.String()
	if !strings.Contains(out, `"level":"warn"`) {
		t.Errorf("failure event logged as %s, want warn level", out)
	}
	if !strings.Contains(out, "Malformed greeting signature") {
		t.Errorf("missing notes in %s", out)
	}
}

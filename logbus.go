package zmtp

import (
	"github.com/rs/zerolog"
)

// LogBus posts connection events to a zerolog logger. Failed events log
// at warn level, everything else at info.
type LogBus struct {
	Logger zerolog.Logger
}

func (b LogBus) Post(ev Event) {
	entry := b.Logger.Info()
	if ev.EventType == EventTypeFailed {
		entry = b.Logger.Warn()
	}

	entry.
		Str("event", ev.EventType.String()).
		Str("local", ev.LocalAddr).
		Str("remote", ev.RemoteAddr).
		Str("notes", ev.Notes).
		Msg("connection event")
}

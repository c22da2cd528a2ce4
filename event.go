package zmtp

type EventType int

const (
	EventTypeGreetingSent     = EventType(0)
	EventTypeGreetingReceived = EventType(1)
	EventTypeHandshakeDone    = EventType(2)
	EventTypeValidated        = EventType(3)
	EventTypeEstablished      = EventType(4)
	EventTypeFailed           = EventType(5)
	EventTypeClosed           = EventType(6)
)

func (e EventType) String() string {
	switch e {
	case EventTypeGreetingSent:
		return "Greeting sent"
	case EventTypeGreetingReceived:
		return "Greeting received"
	case EventTypeHandshakeDone:
		return "Handshake done"
	case EventTypeValidated:
		return "Validated"
	case EventTypeEstablished:
		return "Established"
	case EventTypeFailed:
		return "Failed"
	case EventTypeClosed:
		return "Closed"
	}

	return ""
}

type Event struct {
	EventType
	LocalAddr  string
	RemoteAddr string
	Notes      string
}

type EventBus interface {
	Post(Event)
}

// NopBus discards every event.
type NopBus struct{}

func (NopBus) Post(Event) {}

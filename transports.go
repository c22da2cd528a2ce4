package zmtp

import (
	"sync"

	"github.com/meshwire/zmtp/transport"
)

// TransportFactory creates a transport.
type TransportFactory func() transport.Transport

// registeredTransports contains all registered transports.
var registeredTransports struct {
	transports map[string]TransportFactory
	sync.RWMutex
}

func RegisterTransport(name string, fac TransportFactory) error {
	registeredTransports.Lock()
	defer registeredTransports.Unlock()

	if registeredTransports.transports == nil {
		registeredTransports.transports = make(map[string]TransportFactory)
	}

	if _, ok := registeredTransports.transports[name]; ok {
		return ErrTransportExists
	}

	registeredTransports.transports[name] = fac

	return nil
}

type transportExists struct{}

func (transportExists) Error() string {
	return "Transport already registered"
}

var ErrTransportExists transportExists

type transportNotFound struct{}

func (transportNotFound) Error() string {
	return "Transport not found"
}

var ErrTransportNotFound transportNotFound

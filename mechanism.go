package zmtp

import (
	"sync"
)

// Mechanism implements the security handshake that follows the greeting.
type Mechanism interface {
	// Name of the mechanism as it appears in the greeting.
	Name() string

	// Handshake runs the mechanism's exchange over the stream. The local
	// socket type is declared to the peer; the returned Properties carry
	// whatever the peer declared about itself.
	Handshake(s *Stream, local SocketType) (Properties, error)
}

var registeredMechanisms struct {
	mechanisms map[string]func() Mechanism
	sync.RWMutex
}

func RegisterMechanism(name string, mech func() Mechanism) error {
	registeredMechanisms.Lock()
	defer registeredMechanisms.Unlock()

	if registeredMechanisms.mechanisms == nil {
		registeredMechanisms.mechanisms = make(map[string]func() Mechanism)
	}

	if _, ok := registeredMechanisms.mechanisms[name]; ok {
		return ErrMechanismExists
	}

	registeredMechanisms.mechanisms[name] = mech
	return nil
}

type mechanismExists struct{}

func (mechanismExists) Error() string {
	return "Mechanism already registered"
}

var ErrMechanismExists mechanismExists

func FindMechanism(name string) (func() Mechanism, bool) {
	registeredMechanisms.RLock()
	defer registeredMechanisms.RUnlock()
	mech, ok := registeredMechanisms.mechanisms[name]
	return mech, ok
}

type mechanismUnsupported struct{}

func (mechanismUnsupported) Error() string {
	return "Mechanism not supported"
}

// ErrMechanismUnsupported is returned when a peer's greeting names a
// mechanism nothing has registered.
var ErrMechanismUnsupported mechanismUnsupported

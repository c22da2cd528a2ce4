package zmtp

import (
	"fmt"
)

// SocketType identifies the messaging role a peer declares during the
// handshake.
type SocketType string

const (
	SocketTypeReq    = SocketType("REQ")
	SocketTypeRep    = SocketType("REP")
	SocketTypeDealer = SocketType("DEALER")
	SocketTypeRouter = SocketType("ROUTER")
	SocketTypePub    = SocketType("PUB")
	SocketTypeSub    = SocketType("SUB")
	SocketTypeXPub   = SocketType("XPUB")
	SocketTypeXSub   = SocketType("XSUB")
	SocketTypePush   = SocketType("PUSH")
	SocketTypePull   = SocketType("PULL")
	SocketTypePair   = SocketType("PAIR")
)

// localSocketTypes are the roles a Conn may take on its own side.
var localSocketTypes = []SocketType{
	SocketTypeReq,
	SocketTypeRep,
}

// Supported reports whether the type may be used as the local role of a
// Conn. Any canonical type is still accepted from a peer.
func (s SocketType) Supported() bool {
	for _, t := range localSocketTypes {
		if s == t {
			return true
		}
	}

	return false
}

// Compatible reports whether a peer declaring the given type may pair
// with a local socket of this type. The relation is symmetric, but each
// side only ever consults its own row.
func (s SocketType) Compatible(peer SocketType) bool {
	switch s {
	case SocketTypeReq:
		return peer == SocketTypeRep || peer == SocketTypeRouter
	case SocketTypeRep:
		return peer == SocketTypeReq || peer == SocketTypeDealer
	case SocketTypeDealer:
		return peer == SocketTypeRep || peer == SocketTypeDealer || peer == SocketTypeRouter
	case SocketTypeRouter:
		return peer == SocketTypeReq || peer == SocketTypeDealer || peer == SocketTypeRouter
	case SocketTypePub:
		return peer == SocketTypeSub || peer == SocketTypeXSub
	case SocketTypeSub:
		return peer == SocketTypePub || peer == SocketTypeXPub
	case SocketTypeXPub:
		return peer == SocketTypeSub || peer == SocketTypeXSub
	case SocketTypeXSub:
		return peer == SocketTypePub || peer == SocketTypeXPub
	case SocketTypePush:
		return peer == SocketTypePull
	case SocketTypePull:
		return peer == SocketTypePush
	case SocketTypePair:
		return peer == SocketTypePair
	}

	return false
}

// ParseSocketType maps the wire form of a socket-type declaration to its
// SocketType. All eleven canonical types parse; whether one may serve as
// the local role is answered by Supported.
func ParseSocketType(value []byte) (SocketType, error) {
	switch s := SocketType(value); s {
	case SocketTypeReq, SocketTypeRep,
		SocketTypeDealer, SocketTypeRouter,
		SocketTypePub, SocketTypeSub, SocketTypeXPub, SocketTypeXSub,
		SocketTypePush, SocketTypePull,
		SocketTypePair:
		return s, nil
	}

	return "", SocketTypeUnknownError{Value: append([]byte(nil), value...)}
}

// SocketTypeUnknownError reports a socket-type declaration outside the
// canonical eleven.
type SocketTypeUnknownError struct {
	Value []byte
}

func (e SocketTypeUnknownError) Error() string {
	return fmt.Sprintf("unknown socket type: %q", e.Value)
}

type socketTypeUnsupported struct{}

func (socketTypeUnsupported) Error() string {
	return "Socket type not supported as local role"
}

var ErrSocketTypeUnsupported socketTypeUnsupported

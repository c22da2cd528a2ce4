// Package zmtp implements the ZMTP wire protocol: framing, greetings,
// security mechanism handshakes and connection establishment. It speaks
// the byte-level protocol only; routing, queueing and socket patterns
// are left to the caller.
package zmtp

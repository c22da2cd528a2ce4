package zmtp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	wk8 "github.com/wk8/go-ordered-map/v2"
)

// PropertySocketType is the handshake property carrying a peer's declared
// socket type.
const PropertySocketType = "socket-type"

const (
	propertyNameMax  = 255
	propertyValueMax = math.MaxUint32
)

// Properties holds the name/value metadata peers exchange during a
// handshake. Names are case-insensitive: reads and writes fold them to
// lowercase. Entries keep insertion order, so encoding is deterministic.
type Properties struct {
	inner *wk8.OrderedMap[string, []byte]
}

// NewProperties builds an empty property set.
func NewProperties() Properties {
	return Properties{inner: wk8.New[string, []byte]()}
}

// Set stores value under the lowercase form of name, replacing any
// previous value.
func (p *Properties) Set(name string, value []byte) {
	if p.inner == nil {
		p.inner = wk8.New[string, []byte]()
	}

	p.inner.Set(strings.ToLower(name), value)
}

// Get returns the value stored under the lowercase form of name.
func (p Properties) Get(name string) ([]byte, bool) {
	if p.inner == nil {
		return nil, false
	}

	return p.inner.Get(strings.ToLower(name))
}

// Del removes the entry stored under the lowercase form of name.
func (p *Properties) Del(name string) {
	if p.inner == nil {
		return
	}

	p.inner.Delete(strings.ToLower(name))
}

// Len returns the number of entries.
func (p Properties) Len() int {
	if p.inner == nil {
		return 0
	}

	return p.inner.Len()
}

// Each calls f for every entry in insertion order.
func (p Properties) Each(f func(name string, value []byte)) {
	if p.inner == nil {
		return
	}

	for pair := p.inner.Oldest(); pair != nil; pair = pair.Next() {
		f(pair.Key, pair.Value)
	}
}

// Encode writes every entry as a 1-octet name length, the name, a
// 4-octet big-endian value length and the value.
func (p Properties) Encode() ([]byte, error) {
	if p.inner == nil {
		return nil, nil
	}

	var buf bytes.Buffer
	for pair := p.inner.Oldest(); pair != nil; pair = pair.Next() {
		name, value := pair.Key, pair.Value
		if len(name) == 0 {
			return nil, ErrPropertyNameEmpty
		}

		if len(name) > propertyNameMax {
			return nil, fmt.Errorf("%w: %q", ErrPropertyNameTooLong, name)
		}

		for i := 0; i < len(name); i++ {
			if !validPropertyNameByte(name[i]) {
				return nil, fmt.Errorf("%w: %q", ErrPropertyNameInvalidChar, name)
			}
		}

		if uint64(len(value)) > propertyValueMax {
			return nil, fmt.Errorf("%w: %q", ErrPropertyValueTooLong, name)
		}

		buf.WriteByte(byte(len(name)))
		buf.WriteString(name)
		var size [4]byte
		binary.BigEndian.PutUint32(size[:], uint32(len(value)))
		buf.Write(size[:])
		buf.Write(value)
	}

	return buf.Bytes(), nil
}

// DecodeProperties parses an encoded property block. Wire names may use
// either case; they are folded to lowercase as they are stored.
func DecodeProperties(data []byte) (Properties, error) {
	props := NewProperties()
	rest := data
	for len(rest) > 0 {
		nameLen := int(rest[0])
		rest = rest[1:]
		if nameLen == 0 {
			return Properties{}, ErrPropertyNameEmpty
		}

		if nameLen > len(rest) {
			return Properties{}, ErrPropertyNameTruncated
		}

		name := rest[:nameLen]
		for _, b := range name {
			if !validPropertyNameByte(b) {
				return Properties{}, fmt.Errorf("%w: %q", ErrPropertyNameInvalidChar, name)
			}
		}
		rest = rest[nameLen:]

		if len(rest) < 4 {
			return Properties{}, ErrPropertyValueSizeTruncated
		}

		valueLen := binary.BigEndian.Uint32(rest)
		rest = rest[4:]
		if uint64(valueLen) > uint64(len(rest)) {
			return Properties{}, ErrPropertyValueTruncated
		}

		value := append([]byte(nil), rest[:valueLen]...)
		rest = rest[valueLen:]

		props.Set(string(name), value)
	}

	return props, nil
}

// validPropertyNameByte permits alphanumerics of either case and -_.+ in
// property names.
func validPropertyNameByte(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z':
		return true
	case b >= 'a' && b <= 'z':
		return true
	case b >= '0' && b <= '9':
		return true
	case b == '-' || b == '_' || b == '.' || b == '+':
		return true
	}

	return false
}

type propertyNameEmpty struct{}

func (propertyNameEmpty) Error() string {
	return "Property name has size zero"
}

var ErrPropertyNameEmpty propertyNameEmpty

type propertyNameTruncated struct{}

func (propertyNameTruncated) Error() string {
	return "Property name runs past the metadata"
}

var ErrPropertyNameTruncated propertyNameTruncated

type propertyNameInvalidChar struct{}

func (propertyNameInvalidChar) Error() string {
	return "Invalid character in property name"
}

var ErrPropertyNameInvalidChar propertyNameInvalidChar

type propertyNameTooLong struct{}

func (propertyNameTooLong) Error() string {
	return "Property name > 255 bytes"
}

var ErrPropertyNameTooLong propertyNameTooLong

type propertyValueSizeTruncated struct{}

func (propertyValueSizeTruncated) Error() string {
	return "Not enough bytes for property value size"
}

var ErrPropertyValueSizeTruncated propertyValueSizeTruncated

type propertyValueTruncated struct{}

func (propertyValueTruncated) Error() string {
	return "Property value runs past the metadata"
}

var ErrPropertyValueTruncated propertyValueTruncated

type propertyValueTooLong struct{}

func (propertyValueTooLong) Error() string {
	return "Property value > 4 GiB"
}

var ErrPropertyValueTooLong propertyValueTooLong

package zmtp

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestPropertiesRoundTrip(t *testing.T) {
	props := NewProperties()
	props.Set("Socket-Type", []byte("REQ"))
	props.Set("Identity", []byte("worker-7"))
	props.Set("Resource", []byte{})

	encoded, err := props.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	decoded, err := DecodeProperties(encoded)
	if err != nil {
		t.Fatalf("DecodeProperties() error = %v", err)
	}

	if decoded.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", decoded.Len())
	}

	var order []string
	decoded.Each(func(name string, value []byte) {
		order = append(order, name)
	})
	want := []string{"socket-type", "identity", "resource"}
	for i, name := range want {
		if order[i] != name {
			t.Errorf("entry %d = %q, want %q", i, order[i], name)
		}
	}

	if v, ok := decoded.Get("socket-type"); !ok || !bytes.Equal(v, []byte("REQ")) {
		t.Errorf("Get(socket-type) = %q, %v", v, ok)
	}
	if v, ok := decoded.Get("identity"); !ok || !bytes.Equal(v, []byte("worker-7")) {
		t.Errorf("Get(identity) = %q, %v", v, ok)
	}
	if v, ok := decoded.Get("resource"); !ok || len(v) != 0 {
		t.Errorf("Get(resource) = %q, %v", v, ok)
	}
}

func TestPropertiesWireForm(t *testing.T) {
	props := NewProperties()
	props.Set("Socket-Type", []byte("REQ"))

	encoded, err := props.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	want := append([]byte{0x0B}, "socket-type"...)
	want = append(want, 0x00, 0x00, 0x00, 0x03)
	want = append(want, "REQ"...)
	if !bytes.Equal(encoded, want) {
		t.Errorf("wire form = %x, want %x", encoded, want)
	}
}

func TestPropertiesCaseFolding(t *testing.T) {
	props := NewProperties()
	props.Set("Socket-Type", []byte("REQ"))

	if v, ok := props.Get("SOCKET-TYPE"); !ok || !bytes.Equal(v, []byte("REQ")) {
		t.Errorf("Get(SOCKET-TYPE) = %q, %v, want REQ", v, ok)
	}

	props.Set("socket-TYPE", []byte("REP"))
	if props.Len() != 1 {
		t.Errorf("Len() = %d after case-varied Set, want 1", props.Len())
	}
	if v, _ := props.Get("socket-type"); !bytes.Equal(v, []byte("REP")) {
		t.Errorf("Get(socket-type) = %q, want REP", v)
	}
}

func TestPropertiesDel(t *testing.T) {
	props := NewProperties()
	props.Set("Socket-Type", []byte("REQ"))
	props.Set("Identity", []byte("w"))

	props.Del("SOCKET-TYPE")
	if _, ok := props.Get("socket-type"); ok {
		t.Error("Get(socket-type) found an entry after Del")
	}
	if props.Len() != 1 {
		t.Errorf("Len() = %d after Del, want 1", props.Len())
	}
	if _, ok := props.Get("identity"); !ok {
		t.Error("Del removed an unrelated entry")
	}

	var zero Properties
	zero.Del("anything")
	if zero.Len() != 0 {
		t.Errorf("Len() = %d on zero value, want 0", zero.Len())
	}
}

func TestDecodePropertiesFoldsWireNames(t *testing.T) {
	// Peers may send names in any case; they land lowercased.
	wire := append([]byte{0x0B}, "Socket-Type"...)
	wire = append(wire, 0x00, 0x00, 0x00, 0x03)
	wire = append(wire, "REP"...)

	props, err := DecodeProperties(wire)
	if err != nil {
		t.Fatalf("DecodeProperties() error = %v", err)
	}

	if v, ok := props.Get("socket-type"); !ok || !bytes.Equal(v, []byte("REP")) {
		t.Errorf("Get(socket-type) = %q, %v, want REP", v, ok)
	}
}

func TestDecodePropertiesEmpty(t *testing.T) {
	props, err := DecodeProperties(nil)
	if err != nil {
		t.Fatalf("DecodeProperties(nil) error = %v", err)
	}
	if props.Len() != 0 {
		t.Errorf("Len() = %d, want 0", props.Len())
	}
}

func TestDecodePropertiesErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{
			name:    "zero length name",
			data:    []byte{0x00},
			wantErr: ErrPropertyNameEmpty,
		},
		{
			name:    "name runs past end",
			data:    []byte{0x05, 'a', 'b'},
			wantErr: ErrPropertyNameTruncated,
		},
		{
			name:    "invalid character in name",
			data:    []byte{0x03, 'a', ' ', 'b', 0x00, 0x00, 0x00, 0x00},
			wantErr: ErrPropertyNameInvalidChar,
		},
		{
			name:    "value size runs past end",
			data:    []byte{0x02, 'a', 'b', 0x00, 0x00},
			wantErr: ErrPropertyValueSizeTruncated,
		},
		{
			name:    "value runs past end",
			data:    []byte{0x01, 'a', 0x00, 0x00, 0x00, 0x05, 'x'},
			wantErr: ErrPropertyValueTruncated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeProperties(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEncodePropertiesErrors(t *testing.T) {
	t.Run("empty name", func(t *testing.T) {
		props := NewProperties()
		props.Set("", []byte("x"))
		if _, err := props.Encode(); !errors.Is(err, ErrPropertyNameEmpty) {
			t.Errorf("error = %v, want ErrPropertyNameEmpty", err)
		}
	})

	t.Run("name too long", func(t *testing.T) {
		props := NewProperties()
		props.Set(strings.Repeat("n", 256), []byte("x"))
		if _, err := props.Encode(); !errors.Is(err, ErrPropertyNameTooLong) {
			t.Errorf("error = %v, want ErrPropertyNameTooLong", err)
		}
	})

	t.Run("invalid character in name", func(t *testing.T) {
		props := NewProperties()
		props.Set("bad name", []byte("x"))
		if _, err := props.Encode(); !errors.Is(err, ErrPropertyNameInvalidChar) {
			t.Errorf("error = %v, want ErrPropertyNameInvalidChar", err)
		}
	})
}

func TestPropertiesZeroValue(t *testing.T) {
	var props Properties
	if props.Len() != 0 {
		t.Errorf("Len() = %d, want 0", props.Len())
	}
	if _, ok := props.Get("anything"); ok {
		t.Error("Get() on zero value reported a hit")
	}

	props.Set("key", []byte("value"))
	if v, ok := props.Get("KEY"); !ok || !bytes.Equal(v, []byte("value")) {
		t.Errorf("Get(KEY) = %q, %v after Set on zero value", v, ok)
	}
}

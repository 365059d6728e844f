package codec

import (
	"bytes"
	"testing"
)

func TestDUIDLLTRoundTrip(t *testing.T) {
	var tests = []struct {
		description string
		duid        *DUIDLLT
	}{
		{
			description: "zero fields",
			duid:        &DUIDLLT{},
		},
		{
			description: "populated fields",
			duid: &DUIDLLT{
				HardwareType: 1,
				Time:         123456,
				LinkLayer:    []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			b, err := tt.duid.Save()
			if err != nil {
				t.Fatalf("Save: %v", err)
			}

			decoded, err := DecodeDUID(b)
			if err != nil {
				t.Fatalf("DecodeDUID: %v", err)
			}
			got, ok := decoded.(*DUIDLLT)
			if !ok {
				t.Fatalf("DecodeDUID returned %T, want *DUIDLLT", decoded)
			}
			if got.HardwareType != tt.duid.HardwareType || got.Time != tt.duid.Time ||
				!bytes.Equal(got.LinkLayer, tt.duid.LinkLayer) {
				t.Fatalf("got %+v, want %+v", got, tt.duid)
			}
		})
	}
}

func TestDUIDENRoundTrip(t *testing.T) {
	duid := &DUIDEN{EnterpriseNumber: 9, Identifier: []byte("a-client")}
	b, err := duid.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	decoded, err := DecodeDUID(b)
	if err != nil {
		t.Fatalf("DecodeDUID: %v", err)
	}
	got, ok := decoded.(*DUIDEN)
	if !ok {
		t.Fatalf("DecodeDUID returned %T, want *DUIDEN", decoded)
	}
	if got.EnterpriseNumber != duid.EnterpriseNumber || !bytes.Equal(got.Identifier, duid.Identifier) {
		t.Fatalf("got %+v, want %+v", got, duid)
	}
}

func TestDUIDLLRoundTrip(t *testing.T) {
	duid := NewDUIDLL(1, []byte{1, 2, 3, 4, 5, 6})
	b, err := duid.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	decoded, err := DecodeDUID(b)
	if err != nil {
		t.Fatalf("DecodeDUID: %v", err)
	}
	got, ok := decoded.(*DUIDLL)
	if !ok {
		t.Fatalf("DecodeDUID returned %T, want *DUIDLL", decoded)
	}
	if got.HardwareType != duid.HardwareType || !bytes.Equal(got.LinkLayer, duid.LinkLayer) {
		t.Fatalf("got %+v, want %+v", got, duid)
	}
}

func TestDecodeDUIDUnknownType(t *testing.T) {
	b := []byte{0xff, 0xff, 1, 2, 3}
	decoded, err := DecodeDUID(b)
	if err != nil {
		t.Fatalf("DecodeDUID: %v", err)
	}
	unk, ok := decoded.(*DUIDUnknown)
	if !ok {
		t.Fatalf("DecodeDUID returned %T, want *DUIDUnknown", decoded)
	}
	out, err := unk.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !bytes.Equal(out, b) {
		t.Fatalf("unknown DUID did not round-trip: got %x, want %x", out, b)
	}
}

func TestDecodeDUIDTooShort(t *testing.T) {
	if _, err := DecodeDUID([]byte{0}); err != ErrInvalidPacket {
		t.Fatalf("expected ErrInvalidPacket, got %v", err)
	}
}

func TestDUIDLLTValidateLinkLayerTooLong(t *testing.T) {
	duid := &DUIDLLT{LinkLayer: make([]byte, 121)}
	if err := duid.Validate(); err == nil {
		t.Fatal("expected error for over-long link-layer address")
	}
}

func TestHexString(t *testing.T) {
	duid := NewDUIDLL(1, []byte{0xaa, 0xbb})
	got := HexString(duid)
	want := "00030001aabb"
	if got != want {
		t.Fatalf("HexString = %q, want %q", got, want)
	}
}

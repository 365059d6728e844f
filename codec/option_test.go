package codec

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeOptionsRoundTrip(t *testing.T) {
	opts := []Option{
		&ClientIDOption{DUID: NewDUIDLL(1, []byte{1, 2, 3, 4, 5, 6})},
		&ElapsedTimeOption{Hundredths: 42},
		&RapidCommitOption{},
	}

	encoded, err := EncodeOptions(opts)
	if err != nil {
		t.Fatalf("EncodeOptions: %v", err)
	}

	decoded, err := DecodeOptions(encoded, rawOptionFactory)
	if err != nil {
		t.Fatalf("DecodeOptions: %v", err)
	}
	if len(decoded) != len(opts) {
		t.Fatalf("got %d options, want %d", len(decoded), len(opts))
	}
	for i, o := range decoded {
		if o.Code() != opts[i].Code() {
			t.Fatalf("option %d: code = %d, want %d", i, o.Code(), opts[i].Code())
		}
	}
}

func TestDecodeOptionsLengthOverflow(t *testing.T) {
	// code=1, declared length=10, but only 2 bytes of payload follow.
	b := []byte{0, 1, 0, 10, 0xaa, 0xbb}
	if _, err := DecodeOptions(b, rawOptionFactory); err == nil {
		t.Fatal("expected LengthOverflowError, got nil")
	} else if _, ok := err.(*LengthOverflowError); !ok {
		t.Fatalf("got %T, want *LengthOverflowError", err)
	}
}

func TestDecodeOptionsTruncatedHeader(t *testing.T) {
	b := []byte{0, 1, 0}
	if _, err := DecodeOptions(b, rawOptionFactory); err == nil {
		t.Fatal("expected error for truncated option header")
	}
}

func TestOptionUnknownPreservesPayload(t *testing.T) {
	b := []byte{0xff, 0xff, 0, 3, 1, 2, 3}
	opts, err := DecodeOptions(b, rawOptionFactory)
	if err != nil {
		t.Fatalf("DecodeOptions: %v", err)
	}
	if len(opts) != 1 {
		t.Fatalf("got %d options, want 1", len(opts))
	}
	unk, ok := opts[0].(*OptionUnknown)
	if !ok {
		t.Fatalf("got %T, want *OptionUnknown", opts[0])
	}
	if !bytes.Equal(unk.Raw(), []byte{1, 2, 3}) {
		t.Fatalf("payload = %x, want 010203", unk.Raw())
	}
	out, err := EncodeOptions(opts)
	if err != nil {
		t.Fatalf("EncodeOptions: %v", err)
	}
	if !bytes.Equal(out, b) {
		t.Fatalf("round-trip mismatch: got %x, want %x", out, b)
	}
}

func TestFilterOptions(t *testing.T) {
	opts := []Option{
		&ElapsedTimeOption{Hundredths: 1},
		&RapidCommitOption{},
		&ElapsedTimeOption{Hundredths: 2},
	}
	got := FilterOptions(opts, ClassElapsedTimeOption)
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
}

func TestOptionRequestOptionContains(t *testing.T) {
	oro := &OptionRequestOption{Requested: []uint16{OptionCodeDNSServers, OptionCodeSNTPServers}}
	if !oro.Contains(OptionCodeDNSServers) {
		t.Fatal("expected Contains to find DNS servers code")
	}
	if oro.Contains(OptionCodeIAPD) {
		t.Fatal("did not expect Contains to find IAPD code")
	}
}

func TestOptionRequestOptionOddLength(t *testing.T) {
	oro := &OptionRequestOption{}
	if _, err := oro.Load([]byte{0, 1, 2}); err == nil {
		t.Fatal("expected error for odd-length ORO payload")
	}
}

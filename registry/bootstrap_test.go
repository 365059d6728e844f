package registry

import (
	"bytes"
	"testing"

	"github.com/dhcp6kit/dhcp6d/codec"
)

func TestLoadAllExtensionsWiresOptionFactory(t *testing.T) {
	LoadAllExtensions()

	opt := codec.DefaultOptionFactory(codec.OptionCodeRapidCommit)
	if _, ok := opt.(*codec.RapidCommitOption); !ok {
		t.Fatalf("got %T, want *codec.RapidCommitOption", opt)
	}
}

func TestLoadAllExtensionsIdempotent(t *testing.T) {
	LoadAllExtensions()
	first := codec.DefaultOptionFactory
	LoadAllExtensions()
	second := codec.DefaultOptionFactory
	// Function values cannot be compared directly with ==, so this only
	// checks that the repeated call neither panicked nor changed whether a
	// factory is installed.
	if (first == nil) != (second == nil) {
		t.Fatal("expected factory installation state to stay stable across repeated calls")
	}
}

func TestParseMessageDelegatesToCodec(t *testing.T) {
	LoadAllExtensions()
	msg := &codec.ClientServerMessage{MessageType: codec.MessageTypeSolicit, TransactionID: [3]byte{1, 2, 3}}
	b, err := msg.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	parsed, err := ParseMessage(b)
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	out, err := parsed.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !bytes.Equal(out, b) {
		t.Fatalf("round-trip mismatch: got %x, want %x", out, b)
	}
}

func TestParseDUIDDelegatesToCodec(t *testing.T) {
	duid := codec.NewDUIDLL(1, []byte{1, 2, 3, 4, 5, 6})
	b, err := duid.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	parsed, err := ParseDUID(b)
	if err != nil {
		t.Fatalf("ParseDUID: %v", err)
	}
	if parsed.Hash() != duid.Hash() {
		t.Fatalf("Hash mismatch: got %q, want %q", parsed.Hash(), duid.Hash())
	}
}

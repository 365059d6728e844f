package server

import (
	"net"
	"testing"
	"time"

	"github.com/dhcp6kit/dhcp6d/codec"
)

func TestComputeT1T2Basic(t *testing.T) {
	t1, t2 := computeT1T2(100*time.Second, T1T2Clamp{})
	if t1 != 50*time.Second {
		t.Fatalf("t1 = %v, want 50s", t1)
	}
	if t2 != 80*time.Second {
		t.Fatalf("t2 = %v, want 80s", t2)
	}
}

func TestComputeT1T2ClampedAndOrdered(t *testing.T) {
	clamp := T1T2Clamp{MinT1: 60 * time.Second, MaxT2: 70 * time.Second}
	t1, t2 := computeT1T2(100*time.Second, clamp)
	if t2 != 70*time.Second {
		t.Fatalf("t2 = %v, want clamped to 70s", t2)
	}
	if t1 > t2 {
		t.Fatalf("t1 (%v) must never exceed t2 (%v)", t1, t2)
	}
	if t1 != 60*time.Second {
		t.Fatalf("t1 = %v, want clamped up to the 60s minimum", t1)
	}
}

func TestComputeT1T2NeverExceedsShortestPreferred(t *testing.T) {
	clamp := T1T2Clamp{MaxT1: 1000 * time.Second, MaxT2: 1000 * time.Second}
	_, t2 := computeT1T2(10*time.Second, clamp)
	if t2 > 10*time.Second {
		t.Fatalf("t2 = %v, must not exceed the 10s shortest preferred lifetime", t2)
	}
}

type staticSource struct {
	addrs []LeaseAddress
	found bool
}

func (s staticSource) Addresses(codec.DUID, [4]byte) ([]LeaseAddress, bool) { return s.addrs, s.found }
func (s staticSource) Prefixes(codec.DUID, [4]byte) ([]LeasePrefix, bool)   { return nil, false }

func TestIANAHandlerAssignsAddresses(t *testing.T) {
	clientID := codec.NewDUIDLL(1, []byte{1, 2, 3, 4, 5, 6})
	source := staticSource{
		addrs: []LeaseAddress{{Address: net.ParseIP("2001:db8::1"), PreferredLifetime: 100 * time.Second, ValidLifetime: 200 * time.Second}},
		found: true,
	}
	h := NewIANAHandler(source, T1T2Clamp{})

	req := &codec.ClientServerMessage{
		MessageType: codec.MessageTypeRequest,
		Options: []codec.Option{
			&codec.ClientIDOption{DUID: clientID},
			&codec.IANAOption{IAID: [4]byte{9, 9, 9, 9}},
		},
	}
	b := NewBundle(req, true, false)
	b.Response = &codec.ClientServerMessage{MessageType: codec.MessageTypeReply}

	if err := h.Handle(b); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	iana, ok := b.Response.GetOption(codec.ClassIANAOption).(*codec.IANAOption)
	if !ok {
		t.Fatal("expected an IANAOption in the response")
	}
	if iana.T1 != 50*time.Second || iana.T2 != 80*time.Second {
		t.Fatalf("got T1=%v T2=%v, want T1=50s T2=80s", iana.T1, iana.T2)
	}
	if len(iana.Options) != 1 {
		t.Fatalf("got %d nested options, want 1 assigned address", len(iana.Options))
	}
}

func TestIANAHandlerNoAddressesAvailable(t *testing.T) {
	clientID := codec.NewDUIDLL(1, []byte{1, 2, 3, 4, 5, 6})
	h := NewIANAHandler(staticSource{found: false}, T1T2Clamp{})

	req := &codec.ClientServerMessage{
		MessageType: codec.MessageTypeRequest,
		Options: []codec.Option{
			&codec.ClientIDOption{DUID: clientID},
			&codec.IANAOption{IAID: [4]byte{1, 1, 1, 1}},
		},
	}
	b := NewBundle(req, true, false)
	b.Response = &codec.ClientServerMessage{MessageType: codec.MessageTypeReply}

	if err := h.Handle(b); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	iana := b.Response.GetOption(codec.ClassIANAOption).(*codec.IANAOption)
	status, ok := iana.Options[0].(*codec.StatusCodeOption)
	if !ok || status.Code_ != codec.StatusNoAddrsAvail {
		t.Fatalf("got %+v, want a NoAddrsAvail status", iana.Options)
	}
}

func TestIANAHandlerRenewalDeclinesUnlistedAddress(t *testing.T) {
	clientID := codec.NewDUIDLL(1, []byte{1, 2, 3, 4, 5, 6})
	kept := net.ParseIP("2001:db8::1")
	dropped := net.ParseIP("2001:db8::2")
	source := staticSource{
		addrs: []LeaseAddress{{Address: kept, PreferredLifetime: 100 * time.Second, ValidLifetime: 200 * time.Second}},
		found: true,
	}
	h := NewIANAHandler(source, T1T2Clamp{})

	req := &codec.ClientServerMessage{
		MessageType: codec.MessageTypeRenew,
		Options: []codec.Option{
			&codec.ClientIDOption{DUID: clientID},
			&codec.IANAOption{
				IAID: [4]byte{1, 1, 1, 1},
				Options: []codec.Option{
					&codec.IAAddressOption{Address: kept},
					&codec.IAAddressOption{Address: dropped},
				},
			},
		},
	}
	b := NewBundle(req, true, false)
	b.Response = &codec.ClientServerMessage{MessageType: codec.MessageTypeReply}

	if err := h.Handle(b); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	iana := b.Response.GetOption(codec.ClassIANAOption).(*codec.IANAOption)
	var sawDroppedWithZeroLifetime bool
	for _, o := range iana.Options {
		addr, ok := o.(*codec.IAAddressOption)
		if ok && addr.Address.Equal(dropped) && addr.ValidLifetime == 0 {
			sawDroppedWithZeroLifetime = true
		}
	}
	if !sawDroppedWithZeroLifetime {
		t.Fatal("expected the unlisted address to be echoed back with zero lifetimes")
	}
}

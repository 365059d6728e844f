package server

import (
	"net"
	"testing"

	"golang.org/x/net/ipv6"

	"github.com/dhcp6kit/dhcp6d/codec"
)

func TestLeasequeryPeerAllowedEmptyListAllowsAny(t *testing.T) {
	s := NewServer("eth0", "[::]:547", newTestDispatcher(nil))
	if !s.leasequeryPeerAllowed(net.ParseIP("2001:db8::1")) {
		t.Fatal("expected an empty allow-list to permit any peer")
	}
}

func TestLeasequeryPeerAllowedRestrictsToConfiguredCIDRs(t *testing.T) {
	_, allowed, _ := net.ParseCIDR("2001:db8::/32")
	s := NewServer("eth0", "[::]:547", newTestDispatcher(nil))
	s.AllowedLeasequeryPeers = []*net.IPNet{allowed}

	if !s.leasequeryPeerAllowed(net.ParseIP("2001:db8::1")) {
		t.Fatal("expected an address within the allowed CIDR to be permitted")
	}
	if s.leasequeryPeerAllowed(net.ParseIP("2001:dead::1")) {
		t.Fatal("expected an address outside the allowed CIDR to be rejected")
	}
}

func TestDispatcherAccessorsAreSwappable(t *testing.T) {
	d1 := newTestDispatcher(nil)
	d2 := newTestDispatcher(nil)
	s := NewServer("eth0", "[::]:547", d1)
	if s.Dispatcher() != d1 {
		t.Fatal("expected Dispatcher() to return the constructor-supplied dispatcher")
	}
	s.SetDispatcher(d2)
	if s.Dispatcher() != d2 {
		t.Fatal("expected SetDispatcher to swap in the new dispatcher")
	}
}

type fakeUDPWriter struct {
	sent []byte
	to   net.Addr
}

func (f *fakeUDPWriter) WriteTo(b []byte, _ *ipv6.ControlMessage, addr net.Addr) (int, error) {
	f.sent = append([]byte(nil), b...)
	f.to = addr
	return len(b), nil
}

func TestHandleDatagramRepliesToSolicit(t *testing.T) {
	d := newTestDispatcher(nil)
	s := NewServer("eth0", "[::]:547", d)

	req := &codec.ClientServerMessage{
		MessageType:   codec.MessageTypeSolicit,
		TransactionID: [3]byte{1, 2, 3},
		Options:       []codec.Option{&codec.ClientIDOption{DUID: codec.NewDUIDLL(1, []byte{9, 9, 9, 9, 9, 9})}},
	}
	raw, err := req.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	w := &fakeUDPWriter{}
	addr := &net.UDPAddr{IP: net.ParseIP("2001:db8::1"), Port: 546}
	s.handleDatagram(w, addr, raw, true, false)

	if len(w.sent) == 0 {
		t.Fatal("expected a reply datagram to be written")
	}
	if d.Stats.Export().Outgoing != 1 {
		t.Fatalf("Outgoing = %d, want 1", d.Stats.Export().Outgoing)
	}
}

func TestHandleDatagramDropsUnparsableData(t *testing.T) {
	d := newTestDispatcher(nil)
	s := NewServer("eth0", "[::]:547", d)

	w := &fakeUDPWriter{}
	addr := &net.UDPAddr{IP: net.ParseIP("2001:db8::1"), Port: 546}
	s.handleDatagram(w, addr, []byte{0xff}, true, false)

	if len(w.sent) != 0 {
		t.Fatal("expected no reply for an unparsable datagram")
	}
	if d.Stats.Export().Unparsable != 1 {
		t.Fatalf("Unparsable = %d, want 1", d.Stats.Export().Unparsable)
	}
}

func TestHandleDatagramRejectsDisallowedLeasequeryPeer(t *testing.T) {
	d := newTestDispatcher(nil)
	s := NewServer("eth0", "[::]:547", d)
	_, allowed, _ := net.ParseCIDR("2001:db8::/32")
	s.AllowedLeasequeryPeers = []*net.IPNet{allowed}

	req := &codec.ClientServerMessage{MessageType: codec.MessageTypeLeasequery, TransactionID: [3]byte{1, 1, 1}}
	raw, _ := req.Save()

	w := &fakeUDPWriter{}
	addr := &net.UDPAddr{IP: net.ParseIP("2001:dead::1"), Port: 546}
	s.handleDatagram(w, addr, raw, true, false)

	if len(w.sent) != 0 {
		t.Fatal("expected no reply for a leasequery from a disallowed peer")
	}
	if d.Stats.Export().NotAllowed != 1 {
		t.Fatalf("NotAllowed = %d, want 1", d.Stats.Export().NotAllowed)
	}
}

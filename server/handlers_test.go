package server

import (
	"testing"

	"github.com/dhcp6kit/dhcp6d/codec"
)

func TestRapidCommitGateSetsMarkOnlyWhenAllowed(t *testing.T) {
	req := &codec.ClientServerMessage{
		MessageType: codec.MessageTypeSolicit,
		Options:     []codec.Option{&codec.RapidCommitOption{}},
	}
	b := NewBundle(req, true, false)
	b.AllowRapidCommit = true

	h := newRapidCommitGate()
	if err := h.Pre(b); err != nil {
		t.Fatalf("Pre: %v", err)
	}
	if !b.HasMark(markRapidCommit) {
		t.Fatal("expected the rapid-commit mark to be set")
	}
}

func TestRapidCommitGateNoOpWhenDisallowed(t *testing.T) {
	req := &codec.ClientServerMessage{
		MessageType: codec.MessageTypeSolicit,
		Options:     []codec.Option{&codec.RapidCommitOption{}},
	}
	b := NewBundle(req, true, false)
	b.AllowRapidCommit = false

	h := newRapidCommitGate()
	if err := h.Pre(b); err != nil {
		t.Fatalf("Pre: %v", err)
	}
	if b.HasMark(markRapidCommit) {
		t.Fatal("did not expect the rapid-commit mark when the server disallows it")
	}
}

func TestServerIDHandlerMatchesAndAttaches(t *testing.T) {
	id := codec.NewDUIDLL(1, []byte{1, 2, 3, 4, 5, 6})
	req := &codec.ClientServerMessage{
		MessageType: codec.MessageTypeRequest,
		Options:     []codec.Option{&codec.ServerIDOption{DUID: id}},
	}
	b := NewBundle(req, true, false)
	b.Response = &codec.ClientServerMessage{}

	h := newServerIDHandler(id)
	if err := h.Pre(b); err != nil {
		t.Fatalf("Pre: %v", err)
	}
	if err := h.Handle(b); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if b.Response.GetOption(codec.ClassServerIDOption) == nil {
		t.Fatal("expected ServerIDOption to be attached to the response")
	}
}

func TestServerIDHandlerMismatchRaisesForOtherServer(t *testing.T) {
	ours := codec.NewDUIDLL(1, []byte{1, 1, 1, 1, 1, 1})
	theirs := codec.NewDUIDLL(1, []byte{2, 2, 2, 2, 2, 2})
	req := &codec.ClientServerMessage{
		MessageType: codec.MessageTypeRequest,
		Options:     []codec.Option{&codec.ServerIDOption{DUID: theirs}},
	}
	b := NewBundle(req, true, false)

	h := newServerIDHandler(ours)
	err := h.Pre(b)
	if _, ok := err.(*ForOtherServerError); !ok {
		t.Fatalf("got %T (%v), want *ForOtherServerError", err, err)
	}
}

func TestRejectUnwantedUnicastGate(t *testing.T) {
	requireMulticast := func(mt codec.MessageType) bool { return mt == codec.MessageTypeConfirm }
	h := newRejectUnwantedUnicastGate(requireMulticast)

	req := &codec.ClientServerMessage{MessageType: codec.MessageTypeConfirm}
	unicast := NewBundle(req, false, false)
	if err := h.Pre(unicast); err == nil {
		t.Fatal("expected UseMulticastError for a unicast Confirm")
	}

	multicast := NewBundle(req, true, false)
	if err := h.Pre(multicast); err != nil {
		t.Fatalf("expected no error for a multicast Confirm, got %v", err)
	}
}

func TestMissingStatusCodeHandlerAddsSuccess(t *testing.T) {
	req := &codec.ClientServerMessage{MessageType: codec.MessageTypeDecline}
	b := NewBundle(req, true, false)
	b.Response = &codec.ClientServerMessage{MessageType: codec.MessageTypeReply}

	h := newMissingStatusCodeHandler()
	if err := h.Post(b); err != nil {
		t.Fatalf("Post: %v", err)
	}
	status, ok := b.Response.GetOption(codec.ClassStatusCodeOption).(*codec.StatusCodeOption)
	if !ok || status.Code_ != codec.StatusSuccess {
		t.Fatalf("expected a Success status to be added, got %+v", status)
	}
}

func TestMissingStatusCodeHandlerLeavesExistingStatusAlone(t *testing.T) {
	req := &codec.ClientServerMessage{MessageType: codec.MessageTypeDecline}
	b := NewBundle(req, true, false)
	b.Response = &codec.ClientServerMessage{
		MessageType: codec.MessageTypeReply,
		Options:     []codec.Option{&codec.StatusCodeOption{Code_: codec.StatusNoBinding}},
	}

	h := newMissingStatusCodeHandler()
	if err := h.Post(b); err != nil {
		t.Fatalf("Post: %v", err)
	}
	status := b.Response.GetOption(codec.ClassStatusCodeOption).(*codec.StatusCodeOption)
	if status.Code_ != codec.StatusNoBinding {
		t.Fatalf("got status %v, want the original NoBinding to be preserved", status.Code_)
	}
}

func TestEchoCopyThroughRelay(t *testing.T) {
	in := &codec.RelayForwardMessage{}
	in.MessageType = codec.MessageTypeRelayForward
	in.Options = []codec.Option{
		&codec.InterfaceIDOption{ID: []byte("eth0")},
		&codec.EchoRequestOption{Requested: []uint16{codec.OptionCodeInterfaceID}},
	}

	out := &codec.RelayReplyMessage{}
	out.MessageType = codec.MessageTypeRelayReply

	echoCopyThroughRelay(in, out)

	if len(out.Options) != 1 {
		t.Fatalf("got %d echoed options, want 1", len(out.Options))
	}
	ifid, ok := out.Options[0].(*codec.InterfaceIDOption)
	if !ok || string(ifid.ID) != "eth0" {
		t.Fatalf("got %+v, want InterfaceIDOption(eth0)", out.Options[0])
	}
}

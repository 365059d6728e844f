package server

import (
	"testing"

	"github.com/dhcp6kit/dhcp6d/codec"
)

func newTestDispatcher(root *MessageHandler) *Dispatcher {
	serverID := codec.NewDUIDLL(1, []byte{1, 2, 3, 4, 5, 6})
	return NewDispatcher(serverID, false, root, nil)
}

func TestDispatchSolicitProducesAdvertise(t *testing.T) {
	d := newTestDispatcher(nil)
	req := &codec.ClientServerMessage{
		MessageType:   codec.MessageTypeSolicit,
		TransactionID: [3]byte{1, 2, 3},
		Options:       []codec.Option{&codec.ClientIDOption{DUID: codec.NewDUIDLL(1, []byte{9, 9, 9, 9, 9, 9})}},
	}
	b := NewBundle(req, true, false)

	reply, err := d.Dispatch(b)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	resp, ok := reply.(*codec.ClientServerMessage)
	if !ok {
		t.Fatalf("got %T, want *codec.ClientServerMessage", reply)
	}
	if resp.MessageType != codec.MessageTypeAdvertise {
		t.Fatalf("got message type %v, want Advertise", resp.MessageType)
	}
	if resp.GetOption(codec.ClassServerIDOption) == nil {
		t.Fatal("expected a ServerIDOption in the reply")
	}
	if resp.GetOption(codec.ClassClientIDOption) == nil {
		t.Fatal("expected the ClientIDOption to be copied into the reply")
	}
	if d.Stats.Export().Replied != 1 {
		t.Fatalf("Replied = %d, want 1", d.Stats.Export().Replied)
	}
}

func TestDispatchRapidCommitShortCircuitsToReply(t *testing.T) {
	serverID := codec.NewDUIDLL(1, []byte{1, 2, 3, 4, 5, 6})
	d := NewDispatcher(serverID, true, nil, nil)
	req := &codec.ClientServerMessage{
		MessageType: codec.MessageTypeSolicit,
		Options:     []codec.Option{&codec.RapidCommitOption{}},
	}
	b := NewBundle(req, true, false)

	reply, err := d.Dispatch(b)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	resp := reply.(*codec.ClientServerMessage)
	if resp.MessageType != codec.MessageTypeReply {
		t.Fatalf("got message type %v, want Reply (rapid commit)", resp.MessageType)
	}
	if resp.GetOption(codec.ClassRapidCommitOption) == nil {
		t.Fatal("expected RapidCommitOption to be echoed back")
	}
}

func TestDispatchServerIDMismatchDropsSilently(t *testing.T) {
	serverID := codec.NewDUIDLL(1, []byte{1, 1, 1, 1, 1, 1})
	other := codec.NewDUIDLL(1, []byte{2, 2, 2, 2, 2, 2})
	d := newTestDispatcher(nil)
	d.ServerID = serverID
	req := &codec.ClientServerMessage{
		MessageType: codec.MessageTypeRequest,
		Options:     []codec.Option{&codec.ServerIDOption{DUID: other}},
	}
	b := NewBundle(req, true, false)

	reply, err := d.Dispatch(b)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if reply != nil {
		t.Fatal("expected a nil reply for a server-id mismatch (for-other-server)")
	}
	if d.Stats.Export().ForOtherServer != 1 {
		t.Fatalf("ForOtherServer = %d, want 1", d.Stats.Export().ForOtherServer)
	}
}

func TestDispatchUnicastRejectedWhenMulticastRequired(t *testing.T) {
	serverID := codec.NewDUIDLL(1, []byte{1, 2, 3, 4, 5, 6})
	requireMulticast := func(mt codec.MessageType) bool { return mt == codec.MessageTypeSolicit }
	d := NewDispatcher(serverID, false, nil, requireMulticast)
	req := &codec.ClientServerMessage{MessageType: codec.MessageTypeSolicit}
	b := NewBundle(req, false, false)

	reply, err := d.Dispatch(b)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	resp, ok := reply.(*codec.ClientServerMessage)
	if !ok {
		t.Fatalf("got %T, want *codec.ClientServerMessage", reply)
	}
	status, ok := resp.GetOption(codec.ClassStatusCodeOption).(*codec.StatusCodeOption)
	if !ok {
		t.Fatal("expected a StatusCodeOption in the reply")
	}
	if status.Code_ != codec.StatusUseMulticast {
		t.Fatalf("got status %v, want UseMulticast", status.Code_)
	}
	if d.Stats.Export().UseMulticast != 1 {
		t.Fatalf("UseMulticast = %d, want 1", d.Stats.Export().UseMulticast)
	}
}

func TestDispatchConfirmWithNoAddressesCannotRespond(t *testing.T) {
	d := newTestDispatcher(nil)
	req := &codec.ClientServerMessage{MessageType: codec.MessageTypeConfirm}
	b := NewBundle(req, true, false)

	reply, err := d.Dispatch(b)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if reply != nil {
		t.Fatal("expected a nil reply for a Confirm with no IAAddress/IAPrefix")
	}
}

func TestDispatchReleaseGetsSuccessStatus(t *testing.T) {
	d := newTestDispatcher(nil)
	req := &codec.ClientServerMessage{MessageType: codec.MessageTypeRelease}
	b := NewBundle(req, true, false)

	reply, err := d.Dispatch(b)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	resp := reply.(*codec.ClientServerMessage)
	status, ok := resp.GetOption(codec.ClassStatusCodeOption).(*codec.StatusCodeOption)
	if !ok {
		t.Fatal("expected a StatusCodeOption on the Release reply")
	}
	if status.Code_ != codec.StatusSuccess {
		t.Fatalf("got status %v, want Success", status.Code_)
	}
}

func TestDispatchFillsEmptyIANAWithNoAddrsAvail(t *testing.T) {
	d := newTestDispatcher(&MessageHandler{
		Handlers: []Handler{fakeIANAEchoHandler{}},
	})
	req := &codec.ClientServerMessage{
		MessageType: codec.MessageTypeRequest,
		Options:     []codec.Option{&codec.IANAOption{IAID: [4]byte{1, 2, 3, 4}}},
	}
	b := NewBundle(req, true, false)

	reply, err := d.Dispatch(b)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	resp := reply.(*codec.ClientServerMessage)
	iana, ok := resp.GetOption(codec.ClassIANAOption).(*codec.IANAOption)
	if !ok {
		t.Fatal("expected the echoed IANAOption in the reply")
	}
	var status *codec.StatusCodeOption
	for _, o := range iana.Options {
		if s, ok := o.(*codec.StatusCodeOption); ok {
			status = s
		}
	}
	if status == nil || status.Code_ != codec.StatusNoAddrsAvail {
		t.Fatalf("expected NoAddrsAvail fill-in for an empty IA_NA, got %+v", status)
	}
}

// fakeIANAEchoHandler copies the request's bare IANAOption into the
// response unmodified, simulating an address-assignment handler that found
// nothing to offer, so unansweredIAFiller's fill-in behavior can be tested.
type fakeIANAEchoHandler struct{ baseHandler }

func (fakeIANAEchoHandler) ID() string { return "fake-iana-echo" }
func (fakeIANAEchoHandler) Pre(*Bundle) error { return nil }
func (fakeIANAEchoHandler) Handle(b *Bundle) error {
	if b.Request == nil || b.Response == nil {
		return nil
	}
	if opt, ok := b.Request.GetOption(codec.ClassIANAOption).(*codec.IANAOption); ok {
		b.Response.Options = append(b.Response.Options, &codec.IANAOption{IAID: opt.IAID})
	}
	return nil
}
func (fakeIANAEchoHandler) Post(*Bundle) error { return nil }

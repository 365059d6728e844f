// Package servertest drives a server.Dispatcher end to end without a real
// socket, standing in for a UDP/TCP listener in tests.
package servertest

import (
	"github.com/dhcp6kit/dhcp6d/codec"
	"github.com/dhcp6kit/dhcp6d/server"
)

// Recorder runs requests through a Dispatcher and hands back the resulting
// reply (or error) directly, standing in for the real UDP/TCP listener.
type Recorder struct {
	Dispatcher *server.Dispatcher
}

// NewRecorder builds a Recorder around d.
func NewRecorder(d *server.Dispatcher) *Recorder {
	return &Recorder{Dispatcher: d}
}

// Dispatch wraps req in a Bundle as though it arrived over multicast UDP,
// the shape most handler and filter tests exercise, and dispatches it.
func (r *Recorder) Dispatch(req codec.Message) (codec.Message, error) {
	return r.DispatchBundle(server.NewBundle(req, true, false))
}

// DispatchUnicast is Dispatch's unicast counterpart, for tests of handlers
// that special-case how a message arrived.
func (r *Recorder) DispatchUnicast(req codec.Message) (codec.Message, error) {
	return r.DispatchBundle(server.NewBundle(req, false, false))
}

// DispatchBundle runs an already-built Bundle through the Recorder's
// Dispatcher, for callers that need ReceivedOverTCP or other Bundle state
// the Dispatch/DispatchUnicast helpers don't expose.
func (r *Recorder) DispatchBundle(b *server.Bundle) (codec.Message, error) {
	return r.Dispatcher.Dispatch(b)
}

// Solicit builds the bare "Solicit from a client with this DUID" request
// shape used throughout handler and filter tests.
func Solicit(clientDUID codec.DUID) *codec.ClientServerMessage {
	return &codec.ClientServerMessage{
		MessageType: codec.MessageTypeSolicit,
		Options:     []codec.Option{&codec.ClientIDOption{DUID: clientDUID}},
	}
}

// Request is Solicit's counterpart for the Request/Renew/Rebind family,
// which additionally carry a ServerID echoed back from a prior Advertise.
func Request(messageType codec.MessageType, clientDUID, serverDUID codec.DUID) *codec.ClientServerMessage {
	return &codec.ClientServerMessage{
		MessageType: messageType,
		Options: []codec.Option{
			&codec.ClientIDOption{DUID: clientDUID},
			&codec.ServerIDOption{DUID: serverDUID},
		},
	}
}

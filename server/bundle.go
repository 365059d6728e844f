// Package server implements the relay-chain aware request/response
// pipeline: the per-request transaction bundle, the filter/handler
// selection algorithm, the mandatory handlers, and the UDP/TCP listener
// loop.
package server

import (
	"net"

	"github.com/dhcp6kit/dhcp6d/codec"
)

// Bundle carries every piece of state about one in-flight request, so
// handlers can be order-independent data producers rather than a
// monolithic procedure.
type Bundle struct {
	// IncomingMessage is the raw outermost message as received: either the
	// innermost ClientServerMessage directly, or the outermost
	// RelayForwardMessage of a relay chain.
	IncomingMessage codec.Message

	ReceivedOverMulticast bool
	ReceivedOverTCP       bool

	// Request is the innermost ClientServerMessage, or nil if the incoming
	// message was not recognized or was not a client-to-server message.
	Request *codec.ClientServerMessage

	// IncomingRelayMessages holds the RelayForwardMessage wrappers in
	// client-closest-first order (index 0 is nearest the client).
	IncomingRelayMessages []*codec.RelayForwardMessage

	// Response is the reply under construction; handlers mutate it in
	// place. Nil until InitResponse succeeds.
	Response *codec.ClientServerMessage

	// OutgoingRelayMessages mirrors IncomingRelayMessages, built lazily by
	// OutgoingMessage.
	OutgoingRelayMessages []*codec.RelayReplyMessage

	handledOptions []codec.Option
	marks          map[string]struct{}
	handlerState   map[string]interface{}

	AllowUnicast     bool
	AllowRapidCommit bool
}

// NewBundle splits the relay chain of incoming (walking RelayMessageOption
// payloads) into the ordered RelayForwardMessage wrappers and the
// innermost ClientServerMessage. If the innermost message is not
// recognized, or is not a client-to-server message, Request and
// IncomingRelayMessages are left nil/empty and the bundle is inert.
func NewBundle(incoming codec.Message, receivedOverMulticast, receivedOverTCP bool) *Bundle {
	b := &Bundle{
		IncomingMessage:       incoming,
		ReceivedOverMulticast: receivedOverMulticast,
		ReceivedOverTCP:       receivedOverTCP,
		marks:                 make(map[string]struct{}),
		handlerState:          make(map[string]interface{}),
	}

	cur := incoming
	for {
		relay, ok := cur.(*codec.RelayForwardMessage)
		if !ok {
			break
		}
		// Each deeper hop is nearer the client, so it goes in front.
		b.IncomingRelayMessages = append([]*codec.RelayForwardMessage{relay}, b.IncomingRelayMessages...)

		payload, ok := relay.RelayedMessage()
		if !ok {
			b.IncomingRelayMessages = nil
			return b
		}
		next, err := codec.DecodeMessage(payload)
		if err != nil {
			b.IncomingRelayMessages = nil
			return b
		}
		cur = next
	}

	csm, ok := cur.(*codec.ClientServerMessage)
	if !ok || !csm.MessageType.FromClientToServer() {
		b.IncomingRelayMessages = nil
		return b
	}
	b.Request = csm
	return b
}

// LinkAddress returns the nearest relay link-address that is not
// unspecified/loopback/link-local, used as the primary "which network is
// this client on" key. If none qualifies, returns the unspecified address.
func (b *Bundle) LinkAddress() net.IP {
	for _, relay := range b.IncomingRelayMessages {
		addr := relay.LinkAddress
		if addr == nil {
			continue
		}
		if addr.IsUnspecified() || addr.IsLoopback() || addr.IsLinkLocalUnicast() {
			continue
		}
		return addr
	}
	return net.IPv6unspecified
}

// Relays iterates relay peer-addresses, client-closest-first.
func (b *Bundle) Relays() []net.IP {
	out := make([]net.IP, len(b.IncomingRelayMessages))
	for i, relay := range b.IncomingRelayMessages {
		out[i] = relay.PeerAddress
	}
	return out
}

// OutgoingMessage lazily wraps Response in the matching reply chain,
// mirroring the incoming chain so that hop-count/link-address/peer-address
// are preserved per hop; the first outgoing relay's RelayMessageOption
// always wraps the current Response, so a handler may replace Response
// after the chain is built and a later OutgoingMessage call picks up the
// change.
func (b *Bundle) OutgoingMessage() codec.Message {
	if len(b.IncomingRelayMessages) == 0 {
		return b.Response
	}

	payload, _ := b.Response.Save()
	replies := make([]*codec.RelayReplyMessage, len(b.IncomingRelayMessages))
	for i, in := range b.IncomingRelayMessages {
		reply := &codec.RelayReplyMessage{}
		reply.HopCount = in.HopCount
		reply.LinkAddress = in.LinkAddress
		reply.PeerAddress = in.PeerAddress
		reply.Options = []codec.Option{&codec.RelayMessageOption{Payload: payload}}
		replies[i] = reply
		payload, _ = reply.Save()
	}
	b.OutgoingRelayMessages = replies
	return replies[len(replies)-1]
}

// MarkHandled appends opt to the handled-options set. A handler may only
// mark an option as handled once; the marked set only grows within a
// transaction.
func (b *Bundle) MarkHandled(opt codec.Option) {
	for _, h := range b.handledOptions {
		if h == opt {
			return
		}
	}
	b.handledOptions = append(b.handledOptions, opt)
}

// IsHandled reports whether opt has already been marked handled.
func (b *Bundle) IsHandled(opt codec.Option) bool {
	for _, h := range b.handledOptions {
		if h == opt {
			return true
		}
	}
	return false
}

// UnhandledOptions returns request-side options of the given class not yet
// marked handled.
func (b *Bundle) UnhandledOptions(cls codec.Class) []codec.Option {
	if b.Request == nil {
		return nil
	}
	var out []codec.Option
	for _, o := range b.Request.Options {
		if o.Class() != cls {
			continue
		}
		if !b.IsHandled(o) {
			out = append(out, o)
		}
	}
	return out
}

// AddMark inserts tag into the bundle's mark set, used by filters to scope
// handler application to client subsets.
func (b *Bundle) AddMark(tag string) { b.marks[tag] = struct{}{} }

// HasMark reports whether tag is in the bundle's mark set.
func (b *Bundle) HasMark(tag string) bool {
	_, ok := b.marks[tag]
	return ok
}

// HandlerState returns the opaque scratch slot reserved for handlerID,
// parking computed values between a handler's pre/handle/post phases.
func (b *Bundle) HandlerState(handlerID string) interface{} {
	return b.handlerState[handlerID]
}

// SetHandlerState installs v as handlerID's scratch slot.
func (b *Bundle) SetHandlerState(handlerID string, v interface{}) {
	b.handlerState[handlerID] = v
}

package server

import (
	"github.com/dhcp6kit/dhcp6d/codec"
)

// Handler runs in three ordered phases against a Bundle: Pre validates
// inputs and may short-circuit, Handle builds response content, Post
// performs fix-ups using the full response context. A Handler that has
// nothing to do in a phase simply returns nil.
type Handler interface {
	ID() string
	Pre(b *Bundle) error
	Handle(b *Bundle) error
	Post(b *Bundle) error
}

// baseHandler gives concrete handlers no-op phases to embed and override
// only the phases they need, favoring small single-purpose types over one
// monolithic handler interface.
type baseHandler struct{ id string }

func (h baseHandler) ID() string            { return h.id }
func (h baseHandler) Pre(*Bundle) error     { return nil }
func (h baseHandler) Handle(*Bundle) error  { return nil }
func (h baseHandler) Post(*Bundle) error    { return nil }

// rapidCommitGate turns a Solicit into an immediate Reply when the client
// requested RapidCommitOption and the server allows it, per RFC 3315
// Section 17.2.1's rapid-commit rule. It must run before InitResponse
// chooses the response message type.
type rapidCommitGate struct{ baseHandler }

func newRapidCommitGate() *rapidCommitGate {
	return &rapidCommitGate{baseHandler{id: "rapid-commit-gate"}}
}

func (h *rapidCommitGate) Pre(b *Bundle) error {
	if b.Request == nil || b.Request.MessageType != codec.MessageTypeSolicit {
		return nil
	}
	if !b.AllowRapidCommit {
		return nil
	}
	if b.Request.GetOption(codec.ClassRapidCommitOption) == nil {
		return nil
	}
	b.AddMark(markRapidCommit)
	return nil
}

// serverIDHandler checks an inbound ServerIDOption against the server's own
// DUID (raising ForOtherServer on mismatch) and installs the server's DUID
// into the response.
type serverIDHandler struct {
	baseHandler
	ServerID codec.DUID
}

func newServerIDHandler(id codec.DUID) *serverIDHandler {
	return &serverIDHandler{baseHandler{id: "server-id-check"}, id}
}

func (h *serverIDHandler) Pre(b *Bundle) error {
	if b.Request == nil {
		return &CannotRespondError{Reason: "no request"}
	}
	if opt, ok := b.Request.GetOption(codec.ClassServerIDOption).(*codec.ServerIDOption); ok {
		ours, err := h.ServerID.Save()
		if err != nil {
			return err
		}
		theirs, err := opt.DUID.Save()
		if err != nil {
			return err
		}
		if string(ours) != string(theirs) {
			return NewForOtherServerError("server-id mismatch")
		}
		b.MarkHandled(opt)
	}
	return nil
}

func (h *serverIDHandler) Handle(b *Bundle) error {
	if b.Response == nil {
		return nil
	}
	b.Response.Options = append(b.Response.Options, &codec.ServerIDOption{DUID: h.ServerID})
	return nil
}

// clientIDCopyHandler copies the request's ClientIDOption into the
// response, as RFC 3315 requires on every reply.
type clientIDCopyHandler struct{ baseHandler }

func newClientIDCopyHandler() *clientIDCopyHandler {
	return &clientIDCopyHandler{baseHandler{id: "client-id-copy"}}
}

func (h *clientIDCopyHandler) Handle(b *Bundle) error {
	if b.Request == nil || b.Response == nil {
		return nil
	}
	if opt, ok := b.Request.GetOption(codec.ClassClientIDOption).(*codec.ClientIDOption); ok {
		b.MarkHandled(opt)
		b.Response.Options = append(b.Response.Options, &codec.ClientIDOption{DUID: opt.DUID})
	}
	return nil
}

// interfaceIDCopyHandler copies InterfaceIDOption from the nearest relay
// hop of the request into the matching reply hop, as RFC 3315 §22.18
// requires, and processes EchoRequestOption per relay hop per RFC 4994.
type interfaceIDCopyHandler struct{ baseHandler }

func newInterfaceIDCopyHandler() *interfaceIDCopyHandler {
	return &interfaceIDCopyHandler{baseHandler{id: "interface-id-copy-through-relay"}}
}

func (h *interfaceIDCopyHandler) Post(b *Bundle) error {
	if len(b.IncomingRelayMessages) == 0 {
		return nil
	}
	b.OutgoingMessage()
	for i, in := range b.IncomingRelayMessages {
		if i >= len(b.OutgoingRelayMessages) {
			break
		}
		out := b.OutgoingRelayMessages[i]
		if ifid, ok := in.GetOption(codec.ClassInterfaceIDOption).(*codec.InterfaceIDOption); ok {
			out.Options = append(out.Options, &codec.InterfaceIDOption{ID: append([]byte(nil), ifid.ID...)})
		}
		echoCopyThroughRelay(in, out)
	}
	return nil
}

// echoCopyThroughRelay implements RFC 4994's echo-request processing: for
// each option code listed in the incoming hop's EchoRequestOption, copy
// that option instance from the incoming hop to the outgoing hop, skipping
// codes already present on the outgoing hop or absent from the incoming hop.
func echoCopyThroughRelay(in *codec.RelayForwardMessage, out *codec.RelayReplyMessage) {
	echo, ok := in.GetOption(codec.ClassEchoRequestOption).(*codec.EchoRequestOption)
	if !ok {
		return
	}
	for _, code := range echo.Requested {
		if hasOptionCode(out.Options, code) {
			continue
		}
		for _, o := range in.Options {
			if o.Code() == code {
				out.Options = append(out.Options, o)
				break
			}
		}
	}
}

func hasOptionCode(opts []codec.Option, code uint16) bool {
	for _, o := range opts {
		if o.Code() == code {
			return true
		}
	}
	return false
}

// rejectUnwantedUnicastGate raises UseMulticastError when the server is
// configured to require multicast for the request's message type and the
// request did not arrive over multicast.
type rejectUnwantedUnicastGate struct {
	baseHandler
	RequireMulticast func(codec.MessageType) bool
}

func newRejectUnwantedUnicastGate(requireMulticast func(codec.MessageType) bool) *rejectUnwantedUnicastGate {
	return &rejectUnwantedUnicastGate{baseHandler{id: "reject-unwanted-unicast"}, requireMulticast}
}

func (h *rejectUnwantedUnicastGate) Pre(b *Bundle) error {
	if b.Request == nil || b.ReceivedOverMulticast || b.AllowUnicast {
		return nil
	}
	if h.RequireMulticast != nil && h.RequireMulticast(b.Request.MessageType) {
		return &UseMulticastError{}
	}
	return nil
}

// unansweredIAFiller inserts a NoAddrsAvail StatusCodeOption into any IA_NA
// or IA_PD in the response that was left with no addresses/prefixes and no
// status code of its own, so every IA in the reply carries an outcome.
type unansweredIAFiller struct{ baseHandler }

func newUnansweredIAFiller() *unansweredIAFiller {
	return &unansweredIAFiller{baseHandler{id: "unanswered-ia-filler"}}
}

func (h *unansweredIAFiller) Post(b *Bundle) error {
	if b.Response == nil {
		return nil
	}
	for _, opt := range b.Response.Options {
		switch ia := opt.(type) {
		case *codec.IANAOption:
			fillIfEmpty(&ia.Options, codec.ClassIAAddressOption)
		case *codec.IAPDOption:
			fillIfEmpty(&ia.Options, codec.ClassIAPrefixOption)
		}
	}
	return nil
}

func fillIfEmpty(opts *[]codec.Option, leaseClass codec.Class) {
	for _, o := range *opts {
		if o.Class() == leaseClass || o.Class() == codec.ClassStatusCodeOption {
			return
		}
	}
	*opts = append(*opts, &codec.StatusCodeOption{Code_: codec.StatusNoAddrsAvail})
}

// missingStatusCodeHandler adds a top-level StatusCodeOption(Success) to
// Confirm/Release/Decline replies that have none, since those message types
// otherwise carry no explicit success indication.
type missingStatusCodeHandler struct{ baseHandler }

func newMissingStatusCodeHandler() *missingStatusCodeHandler {
	return &missingStatusCodeHandler{baseHandler{id: "add-missing-status-code"}}
}

func (h *missingStatusCodeHandler) Post(b *Bundle) error {
	if b.Request == nil || b.Response == nil {
		return nil
	}
	switch b.Request.MessageType {
	case codec.MessageTypeConfirm, codec.MessageTypeRelease, codec.MessageTypeDecline:
	default:
		return nil
	}
	if b.Response.GetOption(codec.ClassStatusCodeOption) != nil {
		return nil
	}
	b.Response.Options = append(b.Response.Options, &codec.StatusCodeOption{Code_: codec.StatusSuccess})
	return nil
}

const markRapidCommit = "rapid-commit"

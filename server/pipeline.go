package server

import (
	"github.com/dhcp6kit/dhcp6d/codec"
)

// Dispatcher wires the mandatory handlers around a configured filter/handler
// graph and runs the three-phase pipeline for each Bundle.
type Dispatcher struct {
	ServerID      codec.DUID
	AllowRapidCommit bool

	// SetupHandlers and CleanupHandlers are extension-provided handlers
	// that run, respectively, before and after the filter-selected
	// handlers.
	SetupHandlers   []Handler
	Root            *MessageHandler
	CleanupHandlers []Handler

	RequireMulticast func(codec.MessageType) bool

	// BulkLeasequery answers RFC 5460 query types that may return more
	// than one ClientDataOption (relay-id, link-address, remote-id),
	// which the single-reply Dispatch path cannot frame: the result is
	// streamed as a LeasequeryReplyMessage, zero or more
	// LeasequeryDataMessages, then a LeasequeryDoneMessage, or as a single
	// LeasequeryReplyMessage when nothing matches. Only consulted from a
	// TCP connection.
	BulkLeasequery func(b *Bundle) ([]codec.Message, error)

	Stats *Stats
}

// NewDispatcher builds a Dispatcher with the fixed mandatory handlers
// installed around the caller-supplied extension/filter graph.
func NewDispatcher(serverID codec.DUID, allowRapidCommit bool, root *MessageHandler, requireMulticast func(codec.MessageType) bool) *Dispatcher {
	if root == nil {
		root = &MessageHandler{}
	}
	return &Dispatcher{
		ServerID:         serverID,
		AllowRapidCommit: allowRapidCommit,
		Root:             root,
		RequireMulticast: requireMulticast,
		Stats:            &Stats{},
	}
}

// orderedHandlers builds the full mandatory-plus-extension handler sequence
// for one bundle, in its fixed order.
func (d *Dispatcher) orderedHandlers(b *Bundle) []Handler {
	var out []Handler
	if d.AllowRapidCommit {
		out = append(out, newRapidCommitGate())
	}
	out = append(out,
		newServerIDHandler(d.ServerID),
		newClientIDCopyHandler(),
		newInterfaceIDCopyHandler(),
	)
	out = append(out, d.SetupHandlers...)
	out = append(out, d.Root.SelectHandlers(b)...)
	out = append(out, d.CleanupHandlers...)
	out = append(out,
		newRejectUnwantedUnicastGate(d.RequireMulticast),
		newUnansweredIAFiller(),
		newMissingStatusCodeHandler(),
	)
	return out
}

// Dispatch runs the full pipeline for one incoming message and returns the
// outgoing Message to serialize and send, or nil if the request must be
// dropped silently (CannotRespond/ForOtherServer).
func (d *Dispatcher) Dispatch(b *Bundle) (codec.Message, error) {
	b.AllowRapidCommit = d.AllowRapidCommit
	handlers := d.orderedHandlers(b)

	if reply, drop, err := d.runPre(b, handlers); err != nil {
		d.Stats.errored.Add(1)
		return nil, err
	} else if reply != nil {
		d.Stats.replied.Add(1)
		return reply, nil
	} else if drop {
		return nil, nil
	}

	if err := d.initResponse(b); err != nil {
		return d.handleShortCircuit(b, err)
	}

	for _, h := range handlers {
		if err := h.Handle(b); err != nil {
			return d.handleShortCircuit(b, err)
		}
	}
	for _, h := range handlers {
		if err := h.Post(b); err != nil {
			return d.handleShortCircuit(b, err)
		}
	}

	d.Stats.replied.Add(1)
	return b.OutgoingMessage(), nil
}

// runPre executes every handler's Pre phase in order, translating the first
// short-circuit error into either a reply to send (reply != nil), a silent
// drop (drop == true), or a propagated error.
func (d *Dispatcher) runPre(b *Bundle, handlers []Handler) (reply codec.Message, drop bool, err error) {
	for _, h := range handlers {
		if perr := h.Pre(b); perr != nil {
			reply, drop, err = d.handlePreError(b, perr)
			return
		}
	}
	return nil, false, nil
}

func (d *Dispatcher) handlePreError(b *Bundle, err error) (codec.Message, bool, error) {
	switch e := err.(type) {
	case *ForOtherServerError:
		d.Stats.forOtherServer.Add(1)
		return nil, true, nil
	case *CannotRespondError:
		d.Stats.doNotRespond.Add(1)
		return nil, true, nil
	case *UseMulticastError:
		if b.ReceivedOverMulticast {
			d.Stats.doNotRespond.Add(1)
			return nil, true, nil
		}
		d.Stats.useMulticast.Add(1)
		return d.minimalStatusReply(b, codec.StatusUseMulticast, ""), false, nil
	case *ReplyWithStatusError:
		d.countStatus(e.Status)
		return d.minimalStatusReply(b, e.Status, e.Message), false, nil
	case *ReplyWithLeasequeryError:
		d.countStatus(e.Status)
		return d.minimalLeasequeryReply(b, e.Status, e.Message), false, nil
	default:
		return nil, false, err
	}
}

// countStatus increments the global counter named for status, for the
// status codes that have a dedicated counter.
func (d *Dispatcher) countStatus(status codec.Status) {
	switch status {
	case codec.StatusUnknownQueryType:
		d.Stats.unknownQueryType.Add(1)
	case codec.StatusMalformedQuery:
		d.Stats.malformedQuery.Add(1)
	case codec.StatusNotAllowed:
		d.Stats.notAllowed.Add(1)
	}
}

// handleShortCircuit is the handle/post-phase counterpart of
// handlePreError, for errors raised after Pre has already succeeded.
func (d *Dispatcher) handleShortCircuit(b *Bundle, err error) (codec.Message, error) {
	reply, drop, rerr := d.handlePreError(b, err)
	if rerr != nil {
		d.Stats.errored.Add(1)
		return nil, rerr
	}
	if drop {
		return nil, nil
	}
	d.Stats.replied.Add(1)
	return reply, nil
}

func (d *Dispatcher) minimalStatusReply(b *Bundle, status codec.Status, message string) codec.Message {
	resp := &codec.ClientServerMessage{MessageType: codec.MessageTypeReply}
	if b.Request != nil {
		resp.TransactionID = b.Request.TransactionID
		if cid, ok := b.Request.GetOption(codec.ClassClientIDOption).(*codec.ClientIDOption); ok {
			resp.Options = append(resp.Options, &codec.ClientIDOption{DUID: cid.DUID})
		}
	}
	resp.Options = append(resp.Options, &codec.ServerIDOption{DUID: d.ServerID})
	resp.Options = append(resp.Options, &codec.StatusCodeOption{Code_: status, Message: message})
	b.Response = resp
	return b.OutgoingMessage()
}

func (d *Dispatcher) minimalLeasequeryReply(b *Bundle, status codec.Status, message string) codec.Message {
	resp := &codec.ClientServerMessage{MessageType: codec.MessageTypeLeasequeryReply}
	if b.Request != nil {
		resp.TransactionID = b.Request.TransactionID
	}
	resp.Options = append(resp.Options, &codec.ServerIDOption{DUID: d.ServerID})
	resp.Options = append(resp.Options, &codec.StatusCodeOption{Code_: status, Message: message})
	b.Response = resp
	return b.OutgoingMessage()
}

// IsBulkQuery reports whether req is a Leasequery carrying a query type
// that may return more than one lease (relay-id, link-address,
// remote-id), per RFC 5460's UDP-restriction rule.
func IsBulkQuery(req *codec.ClientServerMessage) bool {
	if req == nil || req.MessageType != codec.MessageTypeLeasequery {
		return false
	}
	q, ok := req.GetOption(codec.ClassLQQueryOption).(*codec.LQQueryOption)
	if !ok {
		return false
	}
	switch q.QueryType {
	case codec.QueryByRelayID, codec.QueryByLinkAddress, codec.QueryByRemoteID:
		return true
	default:
		return false
	}
}

// DispatchBulk serves a bulk leasequery connection's request by delegating
// to BulkLeasequery and returning the full LeasequeryReply/…Data/…Done
// message sequence to frame and send in order.
func (d *Dispatcher) DispatchBulk(b *Bundle) ([]codec.Message, error) {
	if d.BulkLeasequery == nil {
		return nil, &CannotRespondError{Reason: "bulk leasequery not configured"}
	}
	return d.BulkLeasequery(b)
}

// initResponse chooses the response message type from the request type.
func (d *Dispatcher) initResponse(b *Bundle) error {
	if b.Request == nil {
		return &CannotRespondError{Reason: "no request"}
	}
	resp := &codec.ClientServerMessage{TransactionID: b.Request.TransactionID}

	switch b.Request.MessageType {
	case codec.MessageTypeSolicit:
		if b.HasMark(markRapidCommit) {
			resp.MessageType = codec.MessageTypeReply
			resp.Options = append(resp.Options, &codec.RapidCommitOption{})
		} else {
			resp.MessageType = codec.MessageTypeAdvertise
		}
	case codec.MessageTypeRequest, codec.MessageTypeRenew, codec.MessageTypeRebind,
		codec.MessageTypeRelease, codec.MessageTypeDecline, codec.MessageTypeInformationRequest:
		resp.MessageType = codec.MessageTypeReply
	case codec.MessageTypeConfirm:
		if !hasAnyAddressOrPrefix(b.Request) {
			return &CannotRespondError{Reason: "confirm with no IAAddress/IAPrefix"}
		}
		resp.MessageType = codec.MessageTypeReply
	case codec.MessageTypeLeasequery:
		resp.MessageType = codec.MessageTypeLeasequeryReply
	default:
		return &CannotRespondError{Reason: "unanswerable message type"}
	}

	b.Response = resp
	return nil
}

func hasAnyAddressOrPrefix(req *codec.ClientServerMessage) bool {
	for _, opt := range req.Options {
		switch ia := opt.(type) {
		case *codec.IANAOption:
			if containsClass(ia.Options, codec.ClassIAAddressOption) {
				return true
			}
		case *codec.IATAOption:
			if containsClass(ia.Options, codec.ClassIAAddressOption) {
				return true
			}
		case *codec.IAPDOption:
			if containsClass(ia.Options, codec.ClassIAPrefixOption) {
				return true
			}
		}
	}
	return false
}

func containsClass(opts []codec.Option, cls codec.Class) bool {
	for _, o := range opts {
		if o.Class() == cls {
			return true
		}
	}
	return false
}

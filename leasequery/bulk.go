package leasequery

import (
	"time"

	"github.com/dhcp6kit/dhcp6d/codec"
	"github.com/dhcp6kit/dhcp6d/server"
)

// Service wires a Store into the pipeline: it observes completed
// transactions (as a "post" phase handler) and answers both single-reply
// and streamed bulk leasequery requests.
type Service struct {
	Store  Store
	Filter OptionFilter
	Now    func() time.Time
}

// NewService constructs a Service backed by store.
func NewService(store Store) *Service {
	return &Service{Store: store, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ObserveHandler returns a Handler that calls s.Store.RememberLease from
// its Post phase, so the store write happens exactly once, after the
// outgoing message has been built.
func (s *Service) ObserveHandler() server.Handler {
	return &observeHandler{service: s}
}

type observeHandler struct {
	service *Service
}

func (h *observeHandler) ID() string          { return "leasequery-observe" }
func (h *observeHandler) Pre(*server.Bundle) error    { return nil }
func (h *observeHandler) Handle(*server.Bundle) error { return nil }
func (h *observeHandler) Post(b *server.Bundle) error {
	rec := BuildRecord(b, h.service.Filter, h.service.now())
	if rec == nil {
		return nil
	}
	return h.service.Store.RememberLease(rec)
}

func firstOption(opts []codec.Option, cls codec.Class) codec.Option {
	for _, o := range opts {
		if o.Class() == cls {
			return o
		}
	}
	return nil
}

// buildQuery translates an incoming LEASEQUERY request's LQQueryOption into
// a Query, or reports !ok if the request is malformed.
func buildQuery(req *codec.ClientServerMessage) (Query, bool) {
	lq, ok := req.GetOption(codec.ClassLQQueryOption).(*codec.LQQueryOption)
	if !ok {
		return Query{}, false
	}
	q := Query{Type: lq.QueryType, LinkAddress: lq.LinkAddress}

	if addr, ok := firstOption(lq.Options, codec.ClassIAAddressOption).(*codec.IAAddressOption); ok {
		q.Address = addr.Address
	}
	if cid, ok := firstOption(lq.Options, codec.ClassClientIDOption).(*codec.ClientIDOption); ok {
		q.ClientDUID = cid.DUID
	}
	if oro, ok := firstOption(lq.Options, codec.ClassOROOption).(*codec.OptionRequestOption); ok {
		q.RequestedOptions = oro.Requested
		q.WantRelayData = oro.Contains(codec.OptionCodeLQRelayData)
	}
	if rid, ok := req.GetOption(codec.ClassRelayIDOption).(*codec.RelayIDOption); ok {
		q.RelayDUID = rid.DUID
	}
	if remoteID, ok := req.GetOption(codec.ClassRemoteIDOption).(*codec.RemoteIDOption); ok {
		q.RemoteEnterprise = remoteID.EnterpriseNumber
		q.RemoteOpaque = remoteID.RemoteID
	}
	return q, true
}

// DispatchBulk implements server.Dispatcher.BulkLeasequery: for a query with
// matches it streams a LeasequeryReplyMessage, zero or more
// LeasequeryDataMessages, and a final LeasequeryDoneMessage, per RFC 5460.
// A query with no matches gets a single bare LeasequeryReplyMessage and no
// LeasequeryDoneMessage.
func (s *Service) DispatchBulk(b *server.Bundle) ([]codec.Message, error) {
	txID := [3]byte{}
	if b.Request != nil {
		txID = b.Request.TransactionID
	}

	q, ok := buildQuery(b.Request)
	if !ok {
		return []codec.Message{replyWithStatus(txID, codec.StatusMalformedQuery, "")}, nil
	}

	count, rows, err := s.Store.FindLeases(q)
	if err != nil {
		return []codec.Message{doneWithStatus(txID, codec.StatusMalformedQuery, err.Error())}, nil
	}
	if count < 0 {
		return []codec.Message{replyWithStatus(txID, codec.StatusUnknownQueryType, "")}, nil
	}
	if count == 0 {
		return []codec.Message{&codec.ClientServerMessage{MessageType: codec.MessageTypeLeasequeryReply, TransactionID: txID}}, nil
	}

	first := &codec.ClientServerMessage{MessageType: codec.MessageTypeLeasequeryReply, TransactionID: txID}
	first.Options = append(first.Options, rows[0].ClientData)
	out := []codec.Message{first}

	for _, row := range rows[1:] {
		m := &codec.ClientServerMessage{MessageType: codec.MessageTypeLeasequeryData, TransactionID: txID}
		m.Options = append(m.Options, row.ClientData)
		out = append(out, m)
	}

	done := &codec.ClientServerMessage{MessageType: codec.MessageTypeLeasequeryDone, TransactionID: txID}
	done.Options = append(done.Options, &codec.StatusCodeOption{Code_: codec.StatusSuccess})
	out = append(out, done)
	return out, nil
}

// QueryHandler answers single-reply (UDP-eligible) leasequery requests as
// a normal pipeline Handler, populating the already-initialized
// LeasequeryReplyMessage in place rather than building its own; bulk query
// types are rejected with NotAllowed here and must arrive over TCP, where
// Service.DispatchBulk is invoked directly by the listener instead of
// going through the ordinary single-reply pipeline.
func (s *Service) QueryHandler() server.Handler {
	return &queryHandler{service: s}
}

type queryHandler struct {
	service *Service
}

func (h *queryHandler) ID() string         { return "leasequery-answer" }
func (h *queryHandler) Pre(*server.Bundle) error { return nil }
func (h *queryHandler) Post(*server.Bundle) error { return nil }

func (h *queryHandler) Handle(b *server.Bundle) error {
	if b.Request == nil || b.Request.MessageType != codec.MessageTypeLeasequery || b.Response == nil {
		return nil
	}
	q, ok := buildQuery(b.Request)
	if !ok {
		return &server.ReplyWithLeasequeryError{Status: codec.StatusMalformedQuery}
	}
	if q.Type == codec.QueryByRelayID || q.Type == codec.QueryByLinkAddress || q.Type == codec.QueryByRemoteID {
		if !b.ReceivedOverTCP {
			return &server.ReplyWithLeasequeryError{Status: codec.StatusNotAllowed}
		}
	}

	count, rows, err := h.service.Store.FindLeases(q)
	if err != nil {
		return err
	}
	if count < 0 {
		return &server.ReplyWithLeasequeryError{Status: codec.StatusUnknownQueryType}
	}
	if count > 0 {
		b.Response.Options = append(b.Response.Options, rows[0].ClientData)
	}
	return nil
}

func replyWithStatus(txID [3]byte, status codec.Status, message string) codec.Message {
	m := &codec.ClientServerMessage{MessageType: codec.MessageTypeLeasequeryReply, TransactionID: txID}
	m.Options = append(m.Options, &codec.StatusCodeOption{Code_: status, Message: message})
	return m
}

func doneWithStatus(txID [3]byte, status codec.Status, message string) codec.Message {
	m := &codec.ClientServerMessage{MessageType: codec.MessageTypeLeasequeryDone, TransactionID: txID}
	m.Options = append(m.Options, &codec.StatusCodeOption{Code_: status, Message: message})
	return m
}

package server

import "github.com/dhcp6kit/dhcp6d/codec"

// CannotRespondError causes the dispatcher to drop the reply silently,
// counting DoNotRespond.
type CannotRespondError struct{ Reason string }

func (e *CannotRespondError) Error() string { return "cannot respond: " + e.Reason }

// ForOtherServerError is a CannotRespondError for the specific case of a
// server-id mismatch; the dispatcher counts it separately.
type ForOtherServerError struct{ CannotRespondError }

func NewForOtherServerError(reason string) *ForOtherServerError {
	return &ForOtherServerError{CannotRespondError{Reason: reason}}
}

// UseMulticastError is raised when a client unicasts a request the server
// requires multicast for. The dispatcher builds a Reply containing only
// ClientIdOption, the server's ServerIdOption, and
// StatusCodeOption(UseMulticast), unless the request already arrived over
// multicast, in which case the error is suppressed entirely.
type UseMulticastError struct{}

func (e *UseMulticastError) Error() string { return "client must use multicast" }

// ReplyWithStatusError short-circuits handling with a minimal reply
// carrying the given status and message.
type ReplyWithStatusError struct {
	Status  codec.Status
	Message string
}

func (e *ReplyWithStatusError) Error() string { return "reply with status: " + e.Status.String() }

// ReplyWithLeasequeryError is the leasequery-message counterpart of
// ReplyWithStatusError: the dispatcher wraps the status in a
// LeasequeryReplyMessage instead of a Reply.
type ReplyWithLeasequeryError struct {
	Status  codec.Status
	Message string
}

func (e *ReplyWithLeasequeryError) Error() string {
	return "reply with leasequery status: " + e.Status.String()
}

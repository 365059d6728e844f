package codec

import "net"

// MessageType identifies the kind of a DHCPv6 message, as defined in RFC
// 3315/8415, Section 5.3, extended by RFC 5007 (leasequery) and RFC 5460
// (bulk leasequery). Kept numerically identical to their IANA assignments.
type MessageType uint8

const (
	MessageTypeSolicit            MessageType = 1
	MessageTypeAdvertise          MessageType = 2
	MessageTypeRequest            MessageType = 3
	MessageTypeConfirm            MessageType = 4
	MessageTypeRenew              MessageType = 5
	MessageTypeRebind             MessageType = 6
	MessageTypeReply              MessageType = 7
	MessageTypeRelease            MessageType = 8
	MessageTypeDecline            MessageType = 9
	MessageTypeReconfigure        MessageType = 10
	MessageTypeInformationRequest MessageType = 11
	MessageTypeRelayForward       MessageType = 12
	MessageTypeRelayReply         MessageType = 13
	MessageTypeLeasequery         MessageType = 14
	MessageTypeLeasequeryReply    MessageType = 15
	MessageTypeLeasequeryDone     MessageType = 16
	MessageTypeLeasequeryData     MessageType = 17
)

const (
	ClassClientServerMessage Class = "client-server-message"
	ClassRelayForwardMessage Class = "relay-forward-message"
	ClassRelayReplyMessage   Class = "relay-reply-message"
)

// Message is an Element narrowed to the message family: the outer wire
// element carried directly in a UDP datagram.
type Message interface {
	Element
}

// FromClientToServer reports whether typ is ever sent client/relay-to-server.
func (t MessageType) FromClientToServer() bool {
	switch t {
	case MessageTypeSolicit, MessageTypeRequest, MessageTypeConfirm, MessageTypeRenew,
		MessageTypeRebind, MessageTypeRelease, MessageTypeDecline, MessageTypeInformationRequest,
		MessageTypeRelayForward, MessageTypeLeasequery:
		return true
	default:
		return false
	}
}

// FromServerToClient reports whether typ is ever sent server-to-client/relay.
func (t MessageType) FromServerToClient() bool {
	switch t {
	case MessageTypeAdvertise, MessageTypeReply, MessageTypeReconfigure, MessageTypeRelayReply,
		MessageTypeLeasequeryReply, MessageTypeLeasequeryDone, MessageTypeLeasequeryData:
		return true
	default:
		return false
	}
}

// ClientServerMessage is the 1-byte-type + 3-byte-transaction-id + options
// message family used by all non-relay message types, as defined in RFC
// 3315, Section 6.
type ClientServerMessage struct {
	MessageType   MessageType
	TransactionID [3]byte
	Options       []Option
}

func (m *ClientServerMessage) Code() uint16   { return uint16(m.MessageType) }
func (m *ClientServerMessage) Class() Class   { return ClassClientServerMessage }
func (m *ClientServerMessage) Family() Family { return FamilyMessage }
func (m *ClientServerMessage) Children() []Element {
	out := make([]Element, len(m.Options))
	for i, o := range m.Options {
		out[i] = o
	}
	return out
}
func (m *ClientServerMessage) Validate() error { return ValidateContains(m.Class(), m.Children()) }

func (m *ClientServerMessage) Load(b []byte) (int, error) {
	if len(b) < 4 {
		return 0, ErrInvalidPacket
	}
	m.MessageType = MessageType(b[0])
	copy(m.TransactionID[:], b[1:4])
	opts, err := DecodeOptions(b[4:], lookupFactory())
	if err != nil {
		return 0, err
	}
	m.Options = opts
	return len(b), nil
}

func (m *ClientServerMessage) Save() ([]byte, error) {
	opts, err := EncodeOptions(m.Options)
	if err != nil {
		return nil, err
	}
	buf := newBuffer(make([]byte, 0, 4+len(opts)))
	buf.Write8(uint8(m.MessageType))
	buf.WriteBytes(m.TransactionID[:])
	buf.WriteBytes(opts)
	return buf.Data(), nil
}

// GetOption returns the first top-level option of the given class, or nil.
func (m *ClientServerMessage) GetOption(cls Class) Option {
	for _, o := range m.Options {
		if o.Class() == cls {
			return o
		}
	}
	return nil
}

// relayMessage is the shared 1-byte-type + 1-byte-hop-count + 16-byte
// link-address + 16-byte peer-address + options layout used by both
// RelayForwardMessage and RelayReplyMessage, as defined in RFC 3315,
// Section 7.
type relayMessage struct {
	MessageType MessageType
	HopCount    uint8
	LinkAddress net.IP
	PeerAddress net.IP
	Options     []Option
}

func (m *relayMessage) children() []Element {
	out := make([]Element, len(m.Options))
	for i, o := range m.Options {
		out[i] = o
	}
	return out
}

func (m *relayMessage) load(b []byte) error {
	if len(b) < 34 {
		return ErrInvalidPacket
	}
	m.MessageType = MessageType(b[0])
	m.HopCount = b[1]
	link := make(net.IP, 16)
	copy(link, b[2:18])
	m.LinkAddress = link
	peer := make(net.IP, 16)
	copy(peer, b[18:34])
	m.PeerAddress = peer
	opts, err := DecodeOptions(b[34:], lookupFactory())
	if err != nil {
		return err
	}
	m.Options = opts
	return nil
}

func (m *relayMessage) save() ([]byte, error) {
	opts, err := EncodeOptions(m.Options)
	if err != nil {
		return nil, err
	}
	buf := newBuffer(make([]byte, 0, 34+len(opts)))
	buf.Write8(uint8(m.MessageType))
	buf.Write8(m.HopCount)
	buf.WriteBytes(m.LinkAddress.To16())
	buf.WriteBytes(m.PeerAddress.To16())
	buf.WriteBytes(opts)
	return buf.Data(), nil
}

// RelayMessage carries the RelayMessageOption that wraps a deeper message,
// in addition to Message.
type RelayMessage interface {
	Message
	RelayedMessage() ([]byte, bool)
}

func relayedMessage(opts []Option) ([]byte, bool) {
	for _, o := range opts {
		if rm, ok := o.(*RelayMessageOption); ok {
			return rm.Payload, true
		}
		if u, ok := o.(*OptionUnknown); ok && u.TypeCode == OptionCodeRelayMsg {
			return u.Payload, true
		}
	}
	return nil, false
}

// RelayForwardMessage is sent by a relay agent toward the server,
// encapsulating exactly one RelayMessageOption whose payload is either
// another RelayForwardMessage (deeper relay) or the innermost
// ClientServerMessage, as defined in RFC 3315, Section 7.1.
type RelayForwardMessage struct{ relayMessage }

func (m *RelayForwardMessage) Code() uint16   { return uint16(MessageTypeRelayForward) }
func (m *RelayForwardMessage) Class() Class   { return ClassRelayForwardMessage }
func (m *RelayForwardMessage) Family() Family { return FamilyMessage }
func (m *RelayForwardMessage) Children() []Element { return m.children() }
func (m *RelayForwardMessage) Validate() error     { return ValidateContains(m.Class(), m.children()) }
func (m *RelayForwardMessage) Load(b []byte) (int, error) {
	if err := m.load(b); err != nil {
		return 0, err
	}
	return len(b), nil
}
func (m *RelayForwardMessage) Save() ([]byte, error) { return m.save() }
func (m *RelayForwardMessage) RelayedMessage() ([]byte, bool) {
	return relayedMessage(m.Options)
}

// RelayReplyMessage is the reply-side counterpart of RelayForwardMessage,
// mirroring hop-count/link-address/peer-address per hop, as defined in
// RFC 3315, Section 7.2.
type RelayReplyMessage struct{ relayMessage }

func (m *RelayReplyMessage) Code() uint16   { return uint16(MessageTypeRelayReply) }
func (m *RelayReplyMessage) Class() Class   { return ClassRelayReplyMessage }
func (m *RelayReplyMessage) Family() Family { return FamilyMessage }
func (m *RelayReplyMessage) Children() []Element { return m.children() }
func (m *RelayReplyMessage) Validate() error     { return ValidateContains(m.Class(), m.children()) }
func (m *RelayReplyMessage) Load(b []byte) (int, error) {
	if err := m.load(b); err != nil {
		return 0, err
	}
	return len(b), nil
}
func (m *RelayReplyMessage) Save() ([]byte, error) { return m.save() }
func (m *RelayReplyMessage) RelayedMessage() ([]byte, bool) {
	return relayedMessage(m.Options)
}

// DecodeMessage parses a single Message from its wire form. The message
// family is closed (RFC 3315/8415 assign codes 1-17 and no extension
// mechanism adds new ones), so, like DecodeDUID, dispatch lives directly
// in codec instead of going through the registry.
func DecodeMessage(b []byte) (Message, error) {
	if len(b) < 1 {
		return nil, ErrInvalidPacket
	}
	typ := MessageType(b[0])
	var m Message
	switch typ {
	case MessageTypeRelayForward:
		m = &RelayForwardMessage{}
	case MessageTypeRelayReply:
		m = &RelayReplyMessage{}
	default:
		m = &ClientServerMessage{}
	}
	if _, err := m.Load(b); err != nil {
		return nil, err
	}
	return m, nil
}

func init() {
	RegisterContainment(ClassRelayForwardMessage, map[Class]Occurrence{
		ClassRelayMessageOption:   {Min: 1, Max: 1},
		ClassInterfaceIDOption:    {Min: 0, Max: 1},
		ClassRemoteIDOption:       {Min: 0, Max: 1},
		ClassSubscriberIDOption:   {Min: 0, Max: 1},
		ClassEchoRequestOption:    {Min: 0, Max: 1},
	})
	RegisterContainment(ClassRelayReplyMessage, map[Class]Occurrence{
		ClassRelayMessageOption: {Min: 1, Max: 1},
		ClassInterfaceIDOption:  {Min: 0, Max: 1},
	})
}

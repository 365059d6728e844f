package codec

// Option type codes defined in RFC 4649 (Remote-ID), RFC 4580
// (Subscriber-ID), RFC 4994 (Echo-Request), RFC 6939 (Client Link-Layer
// Address), and RFC 7083 (SOL_MAX_RT / INF_MAX_RT).
const (
	OptionCodeRemoteID            uint16 = 37
	OptionCodeSubscriberID         uint16 = 38
	OptionCodeEchoRequest          uint16 = 43
	OptionCodeClientLinkLayerAddr  uint16 = 79
	OptionCodeSolMaxRT             uint16 = 82
	OptionCodeInfMaxRT             uint16 = 83
)

const (
	ClassRemoteIDOption           Class = "remote-id-option"
	ClassSubscriberIDOption       Class = "subscriber-id-option"
	ClassEchoRequestOption        Class = "echo-request-option"
	ClassClientLinkLayerAddrOption Class = "client-linklayer-address-option"
	ClassSolMaxRTOption           Class = "sol-max-rt-option"
	ClassInfMaxRTOption           Class = "inf-max-rt-option"
)

// RemoteIDOption identifies a client via a relay-agent-assigned opaque
// value scoped to an enterprise number, as defined in RFC 4649, Section 3.
// A relay that introduces one is the authority the leasequery store's
// QueryByRemoteId path keys on.
type RemoteIDOption struct {
	EnterpriseNumber uint32
	RemoteID         []byte
}

func (o *RemoteIDOption) Code() uint16   { return OptionCodeRemoteID }
func (o *RemoteIDOption) Class() Class   { return ClassRemoteIDOption }
func (o *RemoteIDOption) Family() Family { return FamilyOption }
func (o *RemoteIDOption) Load(b []byte) (int, error) {
	if len(b) < 4 {
		return 0, ErrInvalidPacket
	}
	buf := newBuffer(b)
	o.EnterpriseNumber = buf.Read32()
	o.RemoteID = append([]byte(nil), buf.Remaining()...)
	return len(b), nil
}
func (o *RemoteIDOption) Save() ([]byte, error) {
	buf := newBuffer(make([]byte, 0, 4+len(o.RemoteID)))
	buf.Write32(o.EnterpriseNumber)
	buf.WriteBytes(o.RemoteID)
	return buf.Data(), nil
}

// SubscriberIDOption identifies a subscriber, inserted by a relay agent
// acting as a DHCP Leasequery-enabled AAA client, as defined in RFC 4580,
// Section 3.
type SubscriberIDOption struct{ SubscriberID []byte }

func (o *SubscriberIDOption) Code() uint16   { return OptionCodeSubscriberID }
func (o *SubscriberIDOption) Class() Class   { return ClassSubscriberIDOption }
func (o *SubscriberIDOption) Family() Family { return FamilyOption }
func (o *SubscriberIDOption) Load(b []byte) (int, error) {
	o.SubscriberID = append([]byte(nil), b...)
	return len(b), nil
}
func (o *SubscriberIDOption) Save() ([]byte, error) {
	return append([]byte(nil), o.SubscriberID...), nil
}

// EchoRequestOption lists option codes a relay asks the server to echo
// back in the corresponding relay-reply hop, as defined in RFC 4994,
// Section 3.
type EchoRequestOption struct{ Requested []uint16 }

func (o *EchoRequestOption) Code() uint16   { return OptionCodeEchoRequest }
func (o *EchoRequestOption) Class() Class   { return ClassEchoRequestOption }
func (o *EchoRequestOption) Family() Family { return FamilyOption }
func (o *EchoRequestOption) Load(b []byte) (int, error) {
	if len(b)%2 != 0 {
		return 0, ErrInvalidPacket
	}
	buf := newBuffer(b)
	o.Requested = o.Requested[:0]
	for buf.Len() > 0 {
		o.Requested = append(o.Requested, buf.Read16())
	}
	return len(b), nil
}
func (o *EchoRequestOption) Save() ([]byte, error) {
	buf := newBuffer(make([]byte, 0, 2*len(o.Requested)))
	for _, c := range o.Requested {
		buf.Write16(c)
	}
	return buf.Data(), nil
}

// Contains reports whether code is among the requested option codes.
func (o *EchoRequestOption) Contains(code uint16) bool {
	for _, c := range o.Requested {
		if c == code {
			return true
		}
	}
	return false
}

// ClientLinkLayerAddressOption carries the client's link-layer address and
// ARP/NDP hardware type as observed by the relay, as defined in RFC 6939,
// Section 4.
type ClientLinkLayerAddressOption struct {
	LinkLayerType uint16
	LinkLayer     []byte
}

func (o *ClientLinkLayerAddressOption) Code() uint16   { return OptionCodeClientLinkLayerAddr }
func (o *ClientLinkLayerAddressOption) Class() Class   { return ClassClientLinkLayerAddrOption }
func (o *ClientLinkLayerAddressOption) Family() Family { return FamilyOption }
func (o *ClientLinkLayerAddressOption) Load(b []byte) (int, error) {
	if len(b) < 2 {
		return 0, ErrInvalidPacket
	}
	buf := newBuffer(b)
	o.LinkLayerType = buf.Read16()
	o.LinkLayer = append([]byte(nil), buf.Remaining()...)
	return len(b), nil
}
func (o *ClientLinkLayerAddressOption) Save() ([]byte, error) {
	buf := newBuffer(make([]byte, 0, 2+len(o.LinkLayer)))
	buf.Write16(o.LinkLayerType)
	buf.WriteBytes(o.LinkLayer)
	return buf.Data(), nil
}

// SolMaxRTOption overrides a client's SOL_MAX_RT retransmission timer, as
// defined in RFC 7083, Section 3. Value is seconds, 60..86400.
type SolMaxRTOption struct{ Seconds uint32 }

func (o *SolMaxRTOption) Code() uint16   { return OptionCodeSolMaxRT }
func (o *SolMaxRTOption) Class() Class   { return ClassSolMaxRTOption }
func (o *SolMaxRTOption) Family() Family { return FamilyOption }
func (o *SolMaxRTOption) Load(b []byte) (int, error) {
	if len(b) != 4 {
		return 0, ErrInvalidPacket
	}
	o.Seconds = newBuffer(b).Read32()
	return 4, nil
}
func (o *SolMaxRTOption) Save() ([]byte, error) {
	buf := newBuffer(nil)
	buf.Write32(o.Seconds)
	return buf.Data(), nil
}

// InfMaxRTOption overrides a client's INF_MAX_RT retransmission timer, as
// defined in RFC 7083, Section 4. Value is seconds, 60..86400.
type InfMaxRTOption struct{ Seconds uint32 }

func (o *InfMaxRTOption) Code() uint16   { return OptionCodeInfMaxRT }
func (o *InfMaxRTOption) Class() Class   { return ClassInfMaxRTOption }
func (o *InfMaxRTOption) Family() Family { return FamilyOption }
func (o *InfMaxRTOption) Load(b []byte) (int, error) {
	if len(b) != 4 {
		return 0, ErrInvalidPacket
	}
	o.Seconds = newBuffer(b).Read32()
	return 4, nil
}
func (o *InfMaxRTOption) Save() ([]byte, error) {
	buf := newBuffer(nil)
	buf.Write32(o.Seconds)
	return buf.Data(), nil
}

package codec

import "net"

// Option type codes defined in RFC 5007 (leasequery) and RFC 5460 (bulk
// leasequery), kept numerically identical to their IANA assignments.
const (
	OptionCodeLQQuery      uint16 = 44
	OptionCodeClientData   uint16 = 45
	OptionCodeCLTTime      uint16 = 46
	OptionCodeLQRelayData  uint16 = 47
	OptionCodeLQClientLink uint16 = 48
	OptionCodeRelayID      uint16 = 53
)

const (
	ClassLQQueryOption      Class = "lq-query-option"
	ClassClientDataOption   Class = "client-data-option"
	ClassCLTTimeOption      Class = "clt-time-option"
	ClassLQRelayDataOption  Class = "lq-relay-data-option"
	ClassLQClientLinkOption Class = "lq-client-link-option"
	ClassRelayIDOption      Class = "relay-id-option"
)

// QueryType is the query-type field of an LQQueryOption, as defined in
// RFC 5007, Section 4.1.2.1, and RFC 5460, Section 5.4.
type QueryType uint8

const (
	QueryByAddress     QueryType = 1
	QueryByClientID    QueryType = 2
	QueryByRelayID     QueryType = 3
	QueryByLinkAddress QueryType = 4
	QueryByRemoteID    QueryType = 5
)

// LQQueryOption identifies the query being performed by a LEASEQUERY
// message, as defined in RFC 5007, Section 4.1.2.1.
type LQQueryOption struct {
	QueryType   QueryType
	LinkAddress net.IP
	Options     []Option
}

func (o *LQQueryOption) Code() uint16   { return OptionCodeLQQuery }
func (o *LQQueryOption) Class() Class   { return ClassLQQueryOption }
func (o *LQQueryOption) Family() Family { return FamilyOption }
func (o *LQQueryOption) Children() []Element {
	out := make([]Element, len(o.Options))
	for i, c := range o.Options {
		out[i] = c
	}
	return out
}
func (o *LQQueryOption) Validate() error { return ValidateContains(o.Class(), o.Children()) }

func (o *LQQueryOption) Load(b []byte) (int, error) {
	if len(b) < 17 {
		return 0, ErrInvalidPacket
	}
	buf := newBuffer(b)
	o.QueryType = QueryType(buf.Read8())
	ip := make(net.IP, 16)
	buf.ReadBytes(ip)
	o.LinkAddress = ip
	opts, err := DecodeOptions(buf.Remaining(), lookupFactory())
	if err != nil {
		return 0, err
	}
	o.Options = opts
	return len(b), nil
}

func (o *LQQueryOption) Save() ([]byte, error) {
	opts, err := EncodeOptions(o.Options)
	if err != nil {
		return nil, err
	}
	buf := newBuffer(make([]byte, 0, 17+len(opts)))
	buf.Write8(uint8(o.QueryType))
	link := o.LinkAddress
	if link == nil {
		link = net.IPv6unspecified
	}
	buf.WriteBytes(link.To16())
	buf.WriteBytes(opts)
	return buf.Data(), nil
}

// ClientDataOption encapsulates one client's leasequery data in a
// LEASEQUERY-REPLY message, as defined in RFC 5007, Section 4.1.2.2.
type ClientDataOption struct{ Options []Option }

func (o *ClientDataOption) Code() uint16   { return OptionCodeClientData }
func (o *ClientDataOption) Class() Class   { return ClassClientDataOption }
func (o *ClientDataOption) Family() Family { return FamilyOption }
func (o *ClientDataOption) Children() []Element {
	out := make([]Element, len(o.Options))
	for i, c := range o.Options {
		out[i] = c
	}
	return out
}
func (o *ClientDataOption) Validate() error { return ValidateContains(o.Class(), o.Children()) }

func (o *ClientDataOption) Load(b []byte) (int, error) {
	opts, err := DecodeOptions(b, lookupFactory())
	if err != nil {
		return 0, err
	}
	o.Options = opts
	return len(b), nil
}
func (o *ClientDataOption) Save() ([]byte, error) { return EncodeOptions(o.Options) }

// CLTTimeOption carries the number of seconds since the server last
// communicated with the client, as defined in RFC 5007, Section 4.1.2.3.
type CLTTimeOption struct{ Seconds uint32 }

func (o *CLTTimeOption) Code() uint16   { return OptionCodeCLTTime }
func (o *CLTTimeOption) Class() Class   { return ClassCLTTimeOption }
func (o *CLTTimeOption) Family() Family { return FamilyOption }
func (o *CLTTimeOption) Load(b []byte) (int, error) {
	if len(b) != 4 {
		return 0, ErrInvalidPacket
	}
	o.Seconds = newBuffer(b).Read32()
	return 4, nil
}
func (o *CLTTimeOption) Save() ([]byte, error) {
	buf := newBuffer(nil)
	buf.Write32(o.Seconds)
	return buf.Data(), nil
}

// LQRelayDataOption carries the last relay-forward message the server
// received for a client, as defined in RFC 5007, Section 4.1.2.4. The
// relay message is kept in its raw encoded form, like RelayMessageOption,
// so that codec need not know how to walk a relay chain; the leasequery
// package decodes it on demand when building a query response.
type LQRelayDataOption struct {
	PeerAddress  net.IP
	RelayMessage []byte
}

func (o *LQRelayDataOption) Code() uint16   { return OptionCodeLQRelayData }
func (o *LQRelayDataOption) Class() Class   { return ClassLQRelayDataOption }
func (o *LQRelayDataOption) Family() Family { return FamilyOption }
func (o *LQRelayDataOption) Load(b []byte) (int, error) {
	if len(b) < 16 {
		return 0, ErrInvalidPacket
	}
	buf := newBuffer(b)
	ip := make(net.IP, 16)
	buf.ReadBytes(ip)
	o.PeerAddress = ip
	o.RelayMessage = append([]byte(nil), buf.Remaining()...)
	return len(b), nil
}
func (o *LQRelayDataOption) Save() ([]byte, error) {
	buf := newBuffer(make([]byte, 0, 16+len(o.RelayMessage)))
	buf.WriteBytes(o.PeerAddress.To16())
	buf.WriteBytes(o.RelayMessage)
	return buf.Data(), nil
}

// LQClientLinkOption lists the links on which a client has one or more
// bindings, as defined in RFC 5007, Section 4.1.2.5.
type LQClientLinkOption struct{ LinkAddresses []net.IP }

func (o *LQClientLinkOption) Code() uint16   { return OptionCodeLQClientLink }
func (o *LQClientLinkOption) Class() Class   { return ClassLQClientLinkOption }
func (o *LQClientLinkOption) Family() Family { return FamilyOption }
func (o *LQClientLinkOption) Load(b []byte) (int, error) {
	addrs, err := decodeAddressList(b)
	if err != nil {
		return 0, err
	}
	o.LinkAddresses = addrs
	return len(b), nil
}
func (o *LQClientLinkOption) Save() ([]byte, error) {
	return encodeAddressList(o.LinkAddresses), nil
}

// RelayIDOption carries a relay agent's DUID, allowing the server to
// answer QueryByRelayID leasequeries, as defined in RFC 5460, Section
// 5.4.1.
type RelayIDOption struct{ DUID DUID }

func (o *RelayIDOption) Code() uint16   { return OptionCodeRelayID }
func (o *RelayIDOption) Class() Class   { return ClassRelayIDOption }
func (o *RelayIDOption) Family() Family { return FamilyOption }
func (o *RelayIDOption) Load(b []byte) (int, error) {
	d, err := DecodeDUID(b)
	if err != nil {
		return 0, err
	}
	o.DUID = d
	return len(b), nil
}
func (o *RelayIDOption) Save() ([]byte, error) { return o.DUID.Save() }

func init() {
	RegisterContainment(ClassLQQueryOption, map[Class]Occurrence{
		ClassIAAddressOption: {Min: 0, Max: 1},
		ClassClientIDOption:  {Min: 0, Max: 1},
		ClassOROOption:       {Min: 0, Max: 1},
	})
	RegisterContainment(ClassClientDataOption, map[Class]Occurrence{
		ClassClientIDOption:    {Min: 0, Max: 1},
		ClassCLTTimeOption:     {Min: 0, Max: 1},
		ClassLQRelayDataOption: {Min: 0, Max: 1},
		ClassIAAddressOption:   {Min: 0, Max: -1},
		ClassIAPrefixOption:    {Min: 0, Max: -1},
	})
}

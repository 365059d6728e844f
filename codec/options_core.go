package codec

import (
	"net"
	"time"
)

// Option type codes defined in RFC 3315, Section 24.3, kept numerically
// identical to their IANA assignments.
const (
	OptionCodeClientID     uint16 = 1
	OptionCodeServerID     uint16 = 2
	OptionCodeIANA         uint16 = 3
	OptionCodeIATA         uint16 = 4
	OptionCodeIAAddr       uint16 = 5
	OptionCodeORO          uint16 = 6
	OptionCodePreference   uint16 = 7
	OptionCodeElapsedTime  uint16 = 8
	OptionCodeRelayMsg     uint16 = 9
	OptionCodeAuth         uint16 = 11
	OptionCodeUnicast      uint16 = 12
	OptionCodeStatusCode   uint16 = 13
	OptionCodeRapidCommit  uint16 = 14
	OptionCodeUserClass    uint16 = 15
	OptionCodeVendorClass  uint16 = 16
	OptionCodeVendorOpts   uint16 = 17
	OptionCodeInterfaceID  uint16 = 18
	OptionCodeReconfMsg    uint16 = 19
	OptionCodeReconfAccept uint16 = 20
)

const (
	ClassClientIDOption     Class = "client-id-option"
	ClassServerIDOption     Class = "server-id-option"
	ClassIANAOption         Class = "iana-option"
	ClassIATAOption         Class = "iata-option"
	ClassIAAddressOption    Class = "ia-address-option"
	ClassOROOption          Class = "oro-option"
	ClassPreferenceOption   Class = "preference-option"
	ClassElapsedTimeOption  Class = "elapsed-time-option"
	ClassRelayMessageOption Class = "relay-message-option"
	ClassAuthOption         Class = "auth-option"
	ClassUnicastOption      Class = "unicast-option"
	ClassStatusCodeOption   Class = "status-code-option"
	ClassRapidCommitOption  Class = "rapid-commit-option"
	ClassUserClassOption    Class = "user-class-option"
	ClassVendorClassOption  Class = "vendor-class-option"
	ClassVendorOptsOption   Class = "vendor-opts-option"
	ClassInterfaceIDOption  Class = "interface-id-option"
	ClassReconfMsgOption    Class = "reconf-msg-option"
	ClassReconfAcceptOption Class = "reconf-accept-option"
)

// ClientIDOption carries the client's DUID, as defined in RFC 3315,
// Section 22.2.
type ClientIDOption struct{ DUID DUID }

func (o *ClientIDOption) Code() uint16   { return OptionCodeClientID }
func (o *ClientIDOption) Class() Class   { return ClassClientIDOption }
func (o *ClientIDOption) Family() Family { return FamilyOption }
func (o *ClientIDOption) Load(b []byte) (int, error) {
	d, err := DecodeDUID(b)
	if err != nil {
		return 0, err
	}
	o.DUID = d
	return len(b), nil
}
func (o *ClientIDOption) Save() ([]byte, error) {
	return o.DUID.Save()
}

// ServerIDOption carries the server's DUID, as defined in RFC 3315,
// Section 22.3.
type ServerIDOption struct{ DUID DUID }

func (o *ServerIDOption) Code() uint16   { return OptionCodeServerID }
func (o *ServerIDOption) Class() Class   { return ClassServerIDOption }
func (o *ServerIDOption) Family() Family { return FamilyOption }
func (o *ServerIDOption) Load(b []byte) (int, error) {
	d, err := DecodeDUID(b)
	if err != nil {
		return 0, err
	}
	o.DUID = d
	return len(b), nil
}
func (o *ServerIDOption) Save() ([]byte, error) {
	return o.DUID.Save()
}

// IANAOption represents an Identity Association for Non-temporary
// Addresses, as defined in RFC 3315, Section 22.4.
type IANAOption struct {
	IAID    [4]byte
	T1, T2  time.Duration
	Options []Option
}

func (o *IANAOption) Code() uint16      { return OptionCodeIANA }
func (o *IANAOption) Class() Class      { return ClassIANAOption }
func (o *IANAOption) Family() Family    { return FamilyOption }
func (o *IANAOption) Children() []Element {
	out := make([]Element, len(o.Options))
	for i, c := range o.Options {
		out[i] = c
	}
	return out
}
func (o *IANAOption) Validate() error { return ValidateContains(o.Class(), o.Children()) }

func (o *IANAOption) Load(b []byte) (int, error) {
	if len(b) < 12 {
		return 0, ErrInvalidPacket
	}
	buf := newBuffer(b)
	copy(o.IAID[:], buf.Consume(4))
	o.T1 = time.Duration(buf.Read32()) * time.Second
	o.T2 = time.Duration(buf.Read32()) * time.Second
	opts, err := DecodeOptions(buf.Remaining(), lookupFactory())
	if err != nil {
		return 0, err
	}
	o.Options = opts
	return len(b), nil
}

func (o *IANAOption) Save() ([]byte, error) {
	opts, err := EncodeOptions(o.Options)
	if err != nil {
		return nil, err
	}
	buf := newBuffer(make([]byte, 0, 12+len(opts)))
	buf.WriteBytes(o.IAID[:])
	buf.Write32(uint32(o.T1 / time.Second))
	buf.Write32(uint32(o.T2 / time.Second))
	buf.WriteBytes(opts)
	return buf.Data(), nil
}

// IATAOption represents an Identity Association for Temporary Addresses,
// as defined in RFC 3315, Section 22.5.
type IATAOption struct {
	IAID    [4]byte
	Options []Option
}

func (o *IATAOption) Code() uint16   { return OptionCodeIATA }
func (o *IATAOption) Class() Class   { return ClassIATAOption }
func (o *IATAOption) Family() Family { return FamilyOption }
func (o *IATAOption) Children() []Element {
	out := make([]Element, len(o.Options))
	for i, c := range o.Options {
		out[i] = c
	}
	return out
}
func (o *IATAOption) Validate() error { return ValidateContains(o.Class(), o.Children()) }

func (o *IATAOption) Load(b []byte) (int, error) {
	if len(b) < 4 {
		return 0, ErrInvalidPacket
	}
	buf := newBuffer(b)
	copy(o.IAID[:], buf.Consume(4))
	opts, err := DecodeOptions(buf.Remaining(), lookupFactory())
	if err != nil {
		return 0, err
	}
	o.Options = opts
	return len(b), nil
}

func (o *IATAOption) Save() ([]byte, error) {
	opts, err := EncodeOptions(o.Options)
	if err != nil {
		return nil, err
	}
	buf := newBuffer(make([]byte, 0, 4+len(opts)))
	buf.WriteBytes(o.IAID[:])
	buf.WriteBytes(opts)
	return buf.Data(), nil
}

// IAAddressOption represents an Identity Association Address, as defined
// in RFC 3315, Section 22.6. It must always appear encapsulated in an
// IANAOption or IATAOption.
type IAAddressOption struct {
	Address                            net.IP
	PreferredLifetime, ValidLifetime   time.Duration
	Options                            []Option
}

func (o *IAAddressOption) Code() uint16   { return OptionCodeIAAddr }
func (o *IAAddressOption) Class() Class   { return ClassIAAddressOption }
func (o *IAAddressOption) Family() Family { return FamilyOption }

func (o *IAAddressOption) Load(b []byte) (int, error) {
	if len(b) < 24 {
		return 0, ErrInvalidPacket
	}
	buf := newBuffer(b)
	ip := make(net.IP, 16)
	buf.ReadBytes(ip)
	o.Address = ip
	o.PreferredLifetime = time.Duration(buf.Read32()) * time.Second
	o.ValidLifetime = time.Duration(buf.Read32()) * time.Second
	opts, err := DecodeOptions(buf.Remaining(), lookupFactory())
	if err != nil {
		return 0, err
	}
	o.Options = opts
	return len(b), nil
}

func (o *IAAddressOption) Save() ([]byte, error) {
	opts, err := EncodeOptions(o.Options)
	if err != nil {
		return nil, err
	}
	buf := newBuffer(make([]byte, 0, 24+len(opts)))
	ip := o.Address.To16()
	buf.WriteBytes(ip)
	buf.Write32(uint32(o.PreferredLifetime / time.Second))
	buf.Write32(uint32(o.ValidLifetime / time.Second))
	buf.WriteBytes(opts)
	return buf.Data(), nil
}

// OptionRequestOption (ORO) lists option codes a client requests the
// server include in its response, as defined in RFC 3315, Section 22.7.
type OptionRequestOption struct{ Requested []uint16 }

func (o *OptionRequestOption) Code() uint16   { return OptionCodeORO }
func (o *OptionRequestOption) Class() Class   { return ClassOROOption }
func (o *OptionRequestOption) Family() Family { return FamilyOption }

func (o *OptionRequestOption) Load(b []byte) (int, error) {
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

func (o *OptionRequestOption) Save() ([]byte, error) {
	buf := newBuffer(make([]byte, 0, 2*len(o.Requested)))
	for _, c := range o.Requested {
		buf.Write16(c)
	}
	return buf.Data(), nil
}

// Contains reports whether code is among the requested option codes.
func (o *OptionRequestOption) Contains(code uint16) bool {
	for _, c := range o.Requested {
		if c == code {
			return true
		}
	}
	return false
}

// PreferenceOption affects a client's server selection, as defined in
// RFC 3315, Section 22.8.
type PreferenceOption struct{ Value uint8 }

func (o *PreferenceOption) Code() uint16  { return OptionCodePreference }
func (o *PreferenceOption) Class() Class  { return ClassPreferenceOption }
func (o *PreferenceOption) Family() Family { return FamilyOption }
func (o *PreferenceOption) Load(b []byte) (int, error) {
	if len(b) != 1 {
		return 0, ErrInvalidPacket
	}
	o.Value = b[0]
	return 1, nil
}
func (o *PreferenceOption) Save() ([]byte, error) { return []byte{o.Value}, nil }

// ElapsedTimeOption carries the client's elapsed request time, in units of
// 1/100s, as defined in RFC 3315, Section 22.9.
type ElapsedTimeOption struct{ Hundredths uint16 }

func (o *ElapsedTimeOption) Code() uint16   { return OptionCodeElapsedTime }
func (o *ElapsedTimeOption) Class() Class   { return ClassElapsedTimeOption }
func (o *ElapsedTimeOption) Family() Family { return FamilyOption }
func (o *ElapsedTimeOption) Load(b []byte) (int, error) {
	if len(b) != 2 {
		return 0, ErrInvalidPacket
	}
	o.Hundredths = order.Uint16(b)
	return 2, nil
}
func (o *ElapsedTimeOption) Save() ([]byte, error) {
	buf := newBuffer(nil)
	buf.Write16(o.Hundredths)
	return buf.Data(), nil
}

// Duration returns the elapsed time as a time.Duration.
func (o *ElapsedTimeOption) Duration() time.Duration {
	return time.Duration(o.Hundredths) * 10 * time.Millisecond
}

// RelayMessageOption carries a single encapsulated Message: either a
// deeper RelayForwardMessage or the innermost ClientServerMessage, as
// defined in RFC 3315, Section 22.10. Payload is kept as the raw encoded
// message form rather than eagerly parsed to a typed Message, since a
// relay message's nested options may in turn contain option-family
// elements that must go through the registry's OptionFactory — callers
// decode Payload with DecodeMessage once that factory is installed.
type RelayMessageOption struct{ Payload []byte }

func (o *RelayMessageOption) Code() uint16   { return OptionCodeRelayMsg }
func (o *RelayMessageOption) Class() Class   { return ClassRelayMessageOption }
func (o *RelayMessageOption) Family() Family { return FamilyOption }
func (o *RelayMessageOption) Load(b []byte) (int, error) {
	o.Payload = append([]byte(nil), b...)
	return len(b), nil
}
func (o *RelayMessageOption) Save() ([]byte, error) {
	return append([]byte(nil), o.Payload...), nil
}

// AuthOption carries DHCP authentication data, as defined in RFC 3315,
// Section 22.11. Its fields are opaque to this server core (authentication
// is not implemented; Non-goals), so it round-trips its raw payload.
type AuthOption struct{ Payload []byte }

func (o *AuthOption) Code() uint16   { return OptionCodeAuth }
func (o *AuthOption) Class() Class   { return ClassAuthOption }
func (o *AuthOption) Family() Family { return FamilyOption }
func (o *AuthOption) Load(b []byte) (int, error) {
	o.Payload = append([]byte(nil), b...)
	return len(b), nil
}
func (o *AuthOption) Save() ([]byte, error) { return append([]byte(nil), o.Payload...), nil }

// ServerUnicastOption grants permission for a client to unicast to the
// server at Address, as defined in RFC 3315, Section 22.12.
type ServerUnicastOption struct{ Address net.IP }

func (o *ServerUnicastOption) Code() uint16   { return OptionCodeUnicast }
func (o *ServerUnicastOption) Class() Class   { return ClassUnicastOption }
func (o *ServerUnicastOption) Family() Family { return FamilyOption }
func (o *ServerUnicastOption) Load(b []byte) (int, error) {
	if len(b) != 16 {
		return 0, ErrInvalidPacket
	}
	ip := make(net.IP, 16)
	copy(ip, b)
	o.Address = ip
	return 16, nil
}
func (o *ServerUnicastOption) Save() ([]byte, error) {
	return append([]byte(nil), o.Address.To16()...), nil
}

// StatusCodeOption carries a status code and human-readable message, as
// defined in RFC 3315, Section 22.13.
type StatusCodeOption struct {
	Code_   Status
	Message string
}

func (o *StatusCodeOption) Code() uint16   { return OptionCodeStatusCode }
func (o *StatusCodeOption) Class() Class   { return ClassStatusCodeOption }
func (o *StatusCodeOption) Family() Family { return FamilyOption }
func (o *StatusCodeOption) Load(b []byte) (int, error) {
	if len(b) < 2 {
		return 0, ErrInvalidPacket
	}
	buf := newBuffer(b)
	o.Code_ = Status(buf.Read16())
	o.Message = string(buf.Remaining())
	return len(b), nil
}
func (o *StatusCodeOption) Save() ([]byte, error) {
	buf := newBuffer(make([]byte, 0, 2+len(o.Message)))
	buf.Write16(uint16(o.Code_))
	buf.WriteBytes([]byte(o.Message))
	return buf.Data(), nil
}

// RapidCommitOption has no content; its presence indicates rapid commit is
// requested/allowed, as defined in RFC 3315, Section 22.14.
type RapidCommitOption struct{}

func (o *RapidCommitOption) Code() uint16          { return OptionCodeRapidCommit }
func (o *RapidCommitOption) Class() Class          { return ClassRapidCommitOption }
func (o *RapidCommitOption) Family() Family         { return FamilyOption }
func (o *RapidCommitOption) Load(b []byte) (int, error) {
	if len(b) != 0 {
		return 0, ErrInvalidPacket
	}
	return 0, nil
}
func (o *RapidCommitOption) Save() ([]byte, error) { return nil, nil }

// classData models the repeated 2-byte-length-prefixed byte strings shared
// by UserClassOption and VendorClassOption, as defined in RFC 3315,
// Section 22.15.
type classData [][]byte

func decodeClassData(b []byte) (classData, error) {
	buf := newBuffer(b)
	var out classData
	for buf.Len() > 1 {
		n := int(buf.Read16())
		v, err := buf.ConsumeChecked(n)
		if err != nil {
			return nil, err
		}
		out = append(out, append([]byte(nil), v...))
	}
	if buf.Len() != 0 {
		return nil, ErrInvalidPacket
	}
	return out, nil
}

func (d classData) encode() []byte {
	var total int
	for _, v := range d {
		total += 2 + len(v)
	}
	buf := newBuffer(make([]byte, 0, total))
	for _, v := range d {
		buf.Write16(uint16(len(v)))
		buf.WriteBytes(v)
	}
	return buf.Data()
}

// UserClassOption carries user class data, as defined in RFC 3315,
// Section 22.15.
type UserClassOption struct{ Classes classData }

func (o *UserClassOption) Code() uint16   { return OptionCodeUserClass }
func (o *UserClassOption) Class() Class   { return ClassUserClassOption }
func (o *UserClassOption) Family() Family { return FamilyOption }
func (o *UserClassOption) Load(b []byte) (int, error) {
	c, err := decodeClassData(b)
	if err != nil {
		return 0, err
	}
	o.Classes = c
	return len(b), nil
}
func (o *UserClassOption) Save() ([]byte, error) { return o.Classes.encode(), nil }

// VendorClassOption carries vendor class data, as defined in RFC 3315,
// Section 22.16.
type VendorClassOption struct {
	EnterpriseNumber uint32
	Classes          classData
}

func (o *VendorClassOption) Code() uint16   { return OptionCodeVendorClass }
func (o *VendorClassOption) Class() Class   { return ClassVendorClassOption }
func (o *VendorClassOption) Family() Family { return FamilyOption }
func (o *VendorClassOption) Load(b []byte) (int, error) {
	if len(b) < 4 {
		return 0, ErrInvalidPacket
	}
	buf := newBuffer(b)
	o.EnterpriseNumber = buf.Read32()
	c, err := decodeClassData(buf.Remaining())
	if err != nil {
		return 0, err
	}
	o.Classes = c
	return len(b), nil
}
func (o *VendorClassOption) Save() ([]byte, error) {
	buf := newBuffer(make([]byte, 0, 4))
	buf.Write32(o.EnterpriseNumber)
	buf.WriteBytes(o.Classes.encode())
	return buf.Data(), nil
}

// VendorOptsOption carries vendor-specific option data, as defined in RFC
// 3315, Section 22.17. Its sub-options are opaque to the core registry, so
// they are decoded generically (TypeCode/Payload pairs) rather than
// dispatched through the option registry.
type VendorOptsOption struct {
	EnterpriseNumber uint32
	SubOptions       []Option
}

func (o *VendorOptsOption) Code() uint16   { return OptionCodeVendorOpts }
func (o *VendorOptsOption) Class() Class   { return ClassVendorOptsOption }
func (o *VendorOptsOption) Family() Family { return FamilyOption }
func (o *VendorOptsOption) Load(b []byte) (int, error) {
	if len(b) < 4 {
		return 0, ErrInvalidPacket
	}
	buf := newBuffer(b)
	o.EnterpriseNumber = buf.Read32()
	opts, err := DecodeOptions(buf.Remaining(), rawOptionFactory)
	if err != nil {
		return 0, err
	}
	o.SubOptions = opts
	return len(b), nil
}
func (o *VendorOptsOption) Save() ([]byte, error) {
	sub, err := EncodeOptions(o.SubOptions)
	if err != nil {
		return nil, err
	}
	buf := newBuffer(make([]byte, 0, 4+len(sub)))
	buf.Write32(o.EnterpriseNumber)
	buf.WriteBytes(sub)
	return buf.Data(), nil
}

// rawOptionFactory always returns an OptionUnknown, used by containers
// whose children are not dispatched through the global option registry.
func rawOptionFactory(code uint16) Option { return &OptionUnknown{TypeCode: code} }

// InterfaceIDOption identifies a client-facing interface on a relay agent,
// as defined in RFC 3315, Section 22.18. It also carries the LDRA-echoed
// identifier used for Echo-Request processing (RFC 6221).
type InterfaceIDOption struct{ ID []byte }

func (o *InterfaceIDOption) Code() uint16   { return OptionCodeInterfaceID }
func (o *InterfaceIDOption) Class() Class   { return ClassInterfaceIDOption }
func (o *InterfaceIDOption) Family() Family { return FamilyOption }
func (o *InterfaceIDOption) Load(b []byte) (int, error) {
	o.ID = append([]byte(nil), b...)
	return len(b), nil
}
func (o *InterfaceIDOption) Save() ([]byte, error) { return append([]byte(nil), o.ID...), nil }

// ReconfigureMessageOption carries the message type a client should expect
// in a Reconfigure message, as defined in RFC 3315, Section 22.19.
type ReconfigureMessageOption struct{ MessageType uint8 }

func (o *ReconfigureMessageOption) Code() uint16 { return OptionCodeReconfMsg }
func (o *ReconfigureMessageOption) Class() Class { return ClassReconfMsgOption }
func (o *ReconfigureMessageOption) Family() Family { return FamilyOption }
func (o *ReconfigureMessageOption) Load(b []byte) (int, error) {
	if len(b) != 1 {
		return 0, ErrInvalidPacket
	}
	o.MessageType = b[0]
	return 1, nil
}
func (o *ReconfigureMessageOption) Save() ([]byte, error) { return []byte{o.MessageType}, nil }

// ReconfigureAcceptOption has no content; its presence indicates a client
// will accept Reconfigure messages, as defined in RFC 3315, Section 22.20.
type ReconfigureAcceptOption struct{}

func (o *ReconfigureAcceptOption) Code() uint16   { return OptionCodeReconfAccept }
func (o *ReconfigureAcceptOption) Class() Class   { return ClassReconfAcceptOption }
func (o *ReconfigureAcceptOption) Family() Family { return FamilyOption }
func (o *ReconfigureAcceptOption) Load(b []byte) (int, error) {
	if len(b) != 0 {
		return 0, ErrInvalidPacket
	}
	return 0, nil
}
func (o *ReconfigureAcceptOption) Save() ([]byte, error) { return nil, nil }

func init() {
	RegisterContainment(ClassIANAOption, map[Class]Occurrence{
		ClassIAAddressOption:  {Min: 0, Max: -1},
		ClassStatusCodeOption: {Min: 0, Max: 1},
	})
	RegisterContainment(ClassIATAOption, map[Class]Occurrence{
		ClassIAAddressOption:  {Min: 0, Max: -1},
		ClassStatusCodeOption: {Min: 0, Max: 1},
	})
}

package codec

import (
	"net"
	"time"
)

// Option type codes defined in RFC 3633 (prefix delegation) and RFC 6603
// (PD-Exclude), kept numerically identical to their IANA assignments.
const (
	OptionCodeIAPD      uint16 = 25
	OptionCodeIAPrefix  uint16 = 26
	OptionCodePDExclude uint16 = 67
)

const (
	ClassIAPDOption      Class = "iapd-option"
	ClassIAPrefixOption  Class = "ia-prefix-option"
	ClassPDExcludeOption Class = "pd-exclude-option"
)

// IAPDOption represents an Identity Association for Prefix Delegation, as
// defined in RFC 3633, Section 9.
type IAPDOption struct {
	IAID    [4]byte
	T1, T2  time.Duration
	Options []Option
}

func (o *IAPDOption) Code() uint16   { return OptionCodeIAPD }
func (o *IAPDOption) Class() Class   { return ClassIAPDOption }
func (o *IAPDOption) Family() Family { return FamilyOption }
func (o *IAPDOption) Children() []Element {
	out := make([]Element, len(o.Options))
	for i, c := range o.Options {
		out[i] = c
	}
	return out
}
func (o *IAPDOption) Validate() error { return ValidateContains(o.Class(), o.Children()) }

func (o *IAPDOption) Load(b []byte) (int, error) {
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

func (o *IAPDOption) Save() ([]byte, error) {
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

// IAPrefixOption represents an Identity Association Prefix, as defined in
// RFC 3633, Section 10. Must always appear encapsulated in an IAPDOption.
type IAPrefixOption struct {
	PreferredLifetime, ValidLifetime time.Duration
	PrefixLength                     uint8
	Prefix                           net.IP
	Options                          []Option
}

func (o *IAPrefixOption) Code() uint16   { return OptionCodeIAPrefix }
func (o *IAPrefixOption) Class() Class   { return ClassIAPrefixOption }
func (o *IAPrefixOption) Family() Family { return FamilyOption }

func (o *IAPrefixOption) Load(b []byte) (int, error) {
	if len(b) < 25 {
		return 0, ErrInvalidPacket
	}
	buf := newBuffer(b)
	o.PreferredLifetime = time.Duration(buf.Read32()) * time.Second
	o.ValidLifetime = time.Duration(buf.Read32()) * time.Second
	o.PrefixLength = buf.Read8()
	ip := make(net.IP, 16)
	buf.ReadBytes(ip)
	o.Prefix = ip
	opts, err := DecodeOptions(buf.Remaining(), lookupFactory())
	if err != nil {
		return 0, err
	}
	o.Options = opts
	return len(b), nil
}

func (o *IAPrefixOption) Save() ([]byte, error) {
	opts, err := EncodeOptions(o.Options)
	if err != nil {
		return nil, err
	}
	buf := newBuffer(make([]byte, 0, 25+len(opts)))
	buf.Write32(uint32(o.PreferredLifetime / time.Second))
	buf.Write32(uint32(o.ValidLifetime / time.Second))
	buf.Write8(o.PrefixLength)
	buf.WriteBytes(o.Prefix.To16())
	buf.WriteBytes(opts)
	return buf.Data(), nil
}

// Network returns the net.IPNet described by Prefix/PrefixLength.
func (o *IAPrefixOption) Network() *net.IPNet {
	return &net.IPNet{IP: o.Prefix, Mask: net.CIDRMask(int(o.PrefixLength), 128)}
}

// PDExcludeOption excludes a sub-prefix from a delegated prefix so it can
// be used on the link between a requesting router and its delegating
// router, as defined in RFC 6603.
type PDExcludeOption struct {
	PrefixLength uint8
	SubnetID     []byte
}

func (o *PDExcludeOption) Code() uint16   { return OptionCodePDExclude }
func (o *PDExcludeOption) Class() Class   { return ClassPDExcludeOption }
func (o *PDExcludeOption) Family() Family { return FamilyOption }
func (o *PDExcludeOption) Load(b []byte) (int, error) {
	if len(b) < 1 {
		return 0, ErrInvalidPacket
	}
	o.PrefixLength = b[0]
	o.SubnetID = append([]byte(nil), b[1:]...)
	return len(b), nil
}
func (o *PDExcludeOption) Save() ([]byte, error) {
	buf := newBuffer(make([]byte, 0, 1+len(o.SubnetID)))
	buf.Write8(o.PrefixLength)
	buf.WriteBytes(o.SubnetID)
	return buf.Data(), nil
}

func init() {
	RegisterContainment(ClassIAPDOption, map[Class]Occurrence{
		ClassIAPrefixOption:   {Min: 0, Max: -1},
		ClassStatusCodeOption: {Min: 0, Max: 1},
	})
	RegisterContainment(ClassIAPrefixOption, map[Class]Occurrence{
		ClassPDExcludeOption: {Min: 0, Max: 1},
	})
}

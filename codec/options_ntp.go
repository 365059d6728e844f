package codec

import "net"

// OptionCodeNTPServer is the NTP Server option's type code, as defined in
// RFC 5908, Section 4.
const OptionCodeNTPServer uint16 = 56

const ClassNTPServerOption Class = "ntp-server-option"

// NTP sub-option type codes, as defined in RFC 5908, Section 4.
const (
	NTPSubOptionSrvAddr uint16 = 1
	NTPSubOptionMCAddr  uint16 = 2
	NTPSubOptionSrvFQDN uint16 = 3
)

const (
	ClassNTPSubOptionSrvAddr  Class = "ntp-sub-option-server-address"
	ClassNTPSubOptionMCAddr   Class = "ntp-sub-option-multicast-address"
	ClassNTPSubOptionSrvFQDN  Class = "ntp-sub-option-server-fqdn"
	ClassNTPSubOptionUnknown  Class = "ntp-sub-option-unknown"
)

// NTPSubOption is an Element narrowed to the NTP sub-option family (RFC
// 5908, kept distinct from Option since its type-code space is private to
// the containing NTPServerOption).
type NTPSubOption interface {
	Element
}

// NTPSubOptionFactory constructs a zero-value NTPSubOption for a wire code,
// mirroring codec.OptionFactory's role for the option family.
type NTPSubOptionFactory func(code uint16) NTPSubOption

var defaultNTPSubOptionFactory NTPSubOptionFactory = rawNTPSubOptionFactory

// SetNTPSubOptionFactory installs the dispatch function package registry
// uses to parse NTP sub-options through its own registration table. It
// exists for the same reason DefaultOptionFactory does: codec cannot import
// registry, so registry injects its constructor back in at bootstrap.
func SetNTPSubOptionFactory(f NTPSubOptionFactory) {
	if f == nil {
		f = rawNTPSubOptionFactory
	}
	defaultNTPSubOptionFactory = f
}

func rawNTPSubOptionFactory(code uint16) NTPSubOption {
	return &NTPSubOptionUnknown{TypeCode: code}
}

// NTPSubOptionUnknown preserves the raw payload of an NTP sub-option type
// the registry does not recognize.
type NTPSubOptionUnknown struct {
	TypeCode uint16
	Payload  []byte
}

func (o *NTPSubOptionUnknown) Code() uint16   { return o.TypeCode }
func (o *NTPSubOptionUnknown) Class() Class   { return ClassNTPSubOptionUnknown }
func (o *NTPSubOptionUnknown) Family() Family { return FamilyNTPSub }
func (o *NTPSubOptionUnknown) Raw() []byte    { return o.Payload }
func (o *NTPSubOptionUnknown) Load(b []byte) (int, error) {
	o.Payload = append([]byte(nil), b...)
	return len(b), nil
}
func (o *NTPSubOptionUnknown) Save() ([]byte, error) {
	return append([]byte(nil), o.Payload...), nil
}

// NTPSubOptionServerAddress carries a unicast NTP/SNTP server address, as
// defined in RFC 5908, Section 4.1.
type NTPSubOptionServerAddress struct{ Address net.IP }

func (o *NTPSubOptionServerAddress) Code() uint16   { return NTPSubOptionSrvAddr }
func (o *NTPSubOptionServerAddress) Class() Class   { return ClassNTPSubOptionSrvAddr }
func (o *NTPSubOptionServerAddress) Family() Family { return FamilyNTPSub }
func (o *NTPSubOptionServerAddress) Load(b []byte) (int, error) {
	if len(b) != 16 {
		return 0, ErrInvalidPacket
	}
	ip := make(net.IP, 16)
	copy(ip, b)
	o.Address = ip
	return 16, nil
}
func (o *NTPSubOptionServerAddress) Save() ([]byte, error) {
	return append([]byte(nil), o.Address.To16()...), nil
}

// NTPSubOptionMulticastAddress carries a multicast address to listen for
// NTP announcements on, as defined in RFC 5908, Section 4.2.
type NTPSubOptionMulticastAddress struct{ Address net.IP }

func (o *NTPSubOptionMulticastAddress) Code() uint16   { return NTPSubOptionMCAddr }
func (o *NTPSubOptionMulticastAddress) Class() Class   { return ClassNTPSubOptionMCAddr }
func (o *NTPSubOptionMulticastAddress) Family() Family { return FamilyNTPSub }
func (o *NTPSubOptionMulticastAddress) Load(b []byte) (int, error) {
	if len(b) != 16 {
		return 0, ErrInvalidPacket
	}
	ip := make(net.IP, 16)
	copy(ip, b)
	o.Address = ip
	return 16, nil
}
func (o *NTPSubOptionMulticastAddress) Save() ([]byte, error) {
	return append([]byte(nil), o.Address.To16()...), nil
}

// NTPSubOptionServerFQDN carries an NTP server's fully qualified domain
// name, as defined in RFC 5908, Section 4.3.
type NTPSubOptionServerFQDN struct{ FQDN string }

func (o *NTPSubOptionServerFQDN) Code() uint16   { return NTPSubOptionSrvFQDN }
func (o *NTPSubOptionServerFQDN) Class() Class   { return ClassNTPSubOptionSrvFQDN }
func (o *NTPSubOptionServerFQDN) Family() Family { return FamilyNTPSub }
func (o *NTPSubOptionServerFQDN) Load(b []byte) (int, error) {
	name, n, err := DecodeName(b)
	if err != nil {
		return 0, err
	}
	o.FQDN = name
	return n, nil
}
func (o *NTPSubOptionServerFQDN) Save() ([]byte, error) { return EncodeName(o.FQDN) }

// decodeNTPSubOptions parses a packed sequence of NTP sub-options filling
// exactly b, using the same type:u16,length:u16,payload framing as Option.
func decodeNTPSubOptions(b []byte, lookup NTPSubOptionFactory) ([]NTPSubOption, error) {
	buf := newBuffer(b)
	var out []NTPSubOption
	for buf.Len() > 0 {
		if buf.Len() < 4 {
			return nil, &LengthOverflowError{Declared: 4, Remaining: buf.Len()}
		}
		code := buf.Read16()
		length := int(buf.Read16())
		payload, err := buf.ConsumeChecked(length)
		if err != nil {
			return nil, err
		}
		elem := lookup(code)
		if elem == nil {
			elem = &NTPSubOptionUnknown{TypeCode: code}
		}
		if _, err := elem.Load(payload); err != nil {
			return nil, err
		}
		out = append(out, elem)
	}
	return out, nil
}

func encodeNTPSubOptions(opts []NTPSubOption) ([]byte, error) {
	var total int
	saved := make([][]byte, len(opts))
	for i, o := range opts {
		b, err := o.Save()
		if err != nil {
			return nil, err
		}
		saved[i] = b
		total += 4 + len(b)
	}
	buf := newBuffer(make([]byte, 0, total))
	for i, o := range opts {
		buf.Write16(o.Code())
		buf.Write16(uint16(len(saved[i])))
		buf.WriteBytes(saved[i])
	}
	return buf.Data(), nil
}

// NTPServerOption carries one or more NTP/SNTP configuration sub-options,
// as defined in RFC 5908, Section 4.
type NTPServerOption struct{ SubOptions []NTPSubOption }

func (o *NTPServerOption) Code() uint16   { return OptionCodeNTPServer }
func (o *NTPServerOption) Class() Class   { return ClassNTPServerOption }
func (o *NTPServerOption) Family() Family { return FamilyOption }
func (o *NTPServerOption) Load(b []byte) (int, error) {
	lookup := defaultNTPSubOptionFactory
	if lookup == nil {
		lookup = rawNTPSubOptionFactory
	}
	opts, err := decodeNTPSubOptions(b, lookup)
	if err != nil {
		return 0, err
	}
	o.SubOptions = opts
	return len(b), nil
}
func (o *NTPServerOption) Save() ([]byte, error) { return encodeNTPSubOptions(o.SubOptions) }

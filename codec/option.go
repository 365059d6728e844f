package codec

// Option is an Element narrowed to the option family: a 16-bit type code
// and 16-bit length-prefixed payload, per RFC 3315 §22.
type Option interface {
	Element
}

const ClassOptionUnknown Class = "option-unknown"

// OptionUnknown stores the raw payload of an option type code the registry
// does not recognize, so unknown options round-trip as opaque blobs instead
// of being dropped.
type OptionUnknown struct {
	TypeCode uint16
	Payload  []byte
}

func (o *OptionUnknown) Code() uint16    { return o.TypeCode }
func (o *OptionUnknown) Class() Class    { return ClassOptionUnknown }
func (o *OptionUnknown) Family() Family  { return FamilyOption }
func (o *OptionUnknown) Raw() []byte     { return o.Payload }
func (o *OptionUnknown) Load(b []byte) (int, error) {
	o.Payload = append([]byte(nil), b...)
	return len(b), nil
}
func (o *OptionUnknown) Save() ([]byte, error) {
	return append([]byte(nil), o.Payload...), nil
}

// OptionFactory constructs a zero-value Option of a concrete type for a
// given wire code; it is how the registry (component B) hands a concrete
// class to the codec's generic parsing loop without the codec package
// importing the registry.
type OptionFactory func(code uint16) Option

// DefaultOptionFactory is installed once by package registry at process
// bootstrap (registry.LoadAllExtensions), and used by container options
// (IANAOption, IATAOption, IAAddressOption, ...) to decode their nested
// option lists through the same registry every top-level Message uses.
// Before registry installs it, containers fall back to rawOptionFactory,
// which preserves every nested option as an opaque OptionUnknown — enough
// to round-trip bytes, but not to build typed option trees.
var DefaultOptionFactory OptionFactory = rawOptionFactory

func lookupFactory() OptionFactory {
	if DefaultOptionFactory != nil {
		return DefaultOptionFactory
	}
	return rawOptionFactory
}

// DecodeOptions parses a packed sequence of type:u16,length:u16,payload
// option records filling exactly b, delegating class selection to lookup.
// An element whose declared length exceeds the remaining buffer fails with
// LengthOverflowError.
func DecodeOptions(b []byte, lookup OptionFactory) ([]Option, error) {
	buf := newBuffer(b)
	var out []Option

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
			elem = &OptionUnknown{TypeCode: code}
		}
		if _, err := elem.Load(payload); err != nil {
			return nil, err
		}
		out = append(out, elem)
	}
	return out, nil
}

// EncodeOptions serializes opts back into packed type:u16,length:u16,payload
// records, in the order given. Ordering of sibling options is preserved
// as constructed; callers that need deterministic output (e.g. for
// round-trip tests against a canonical byte form) must order opts
// themselves — sorting by option code here would reorder payload-preserving
// unknown options relative to known ones.
func EncodeOptions(opts []Option) ([]byte, error) {
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

// FilterOptions returns the subset of opts whose Class matches cls.
func FilterOptions(opts []Option, cls Class) []Option {
	var out []Option
	for _, o := range opts {
		if o.Class() == cls {
			out = append(out, o)
		}
	}
	return out
}

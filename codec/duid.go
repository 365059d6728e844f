package codec

import (
	"encoding/binary"
	"encoding/hex"
)

// DUIDType is a type of DHCP Unique Identifier, as defined in RFC 3315,
// Section 9. DUIDs are used to uniquely identify a client to a server, or
// vice-versa.
type DUIDType uint16

const (
	DUIDTypeLLT DUIDType = 1
	DUIDTypeEN  DUIDType = 2
	DUIDTypeLL  DUIDType = 3
)

const (
	ClassDUIDLLT     Class = "duid-llt"
	ClassDUIDEN      Class = "duid-en"
	ClassDUIDLL      Class = "duid-ll"
	ClassDUIDUnknown Class = "duid-unknown"
)

// DUID is an Element narrowed to the DUID family. Hash returns a stable,
// comparable key for the DUID's wire form, used throughout the leasequery
// store to key client records.
type DUID interface {
	Element
	Hash() string
}

func (d *DUIDLLT) Family() Family     { return FamilyDUID }
func (d *DUIDEN) Family() Family      { return FamilyDUID }
func (d *DUIDLL) Family() Family      { return FamilyDUID }
func (d *DUIDUnknown) Family() Family { return FamilyDUID }

// DUIDLLT represents a DUID Based on Link-layer Address Plus Time
// [DUID-LLT], as defined in RFC 3315, Section 9.2. It is the recommended
// DUID type for devices with persistent storage.
type DUIDLLT struct {
	HardwareType uint16
	Time         uint32 // seconds since midnight (UTC), January 1, 2000, mod 2^32
	LinkLayer    []byte // up to 120 bytes
}

func (d *DUIDLLT) Code() uint16   { return uint16(DUIDTypeLLT) }
func (d *DUIDLLT) Class() Class   { return ClassDUIDLLT }
func (d *DUIDLLT) Hash() string   { b, _ := d.Save(); return string(b) }
func (d *DUIDLLT) Validate() error {
	if len(d.LinkLayer) > 120 {
		return &BadLabelError{Reason: "duid-llt link-layer address exceeds 120 bytes"}
	}
	return nil
}

func (d *DUIDLLT) Load(b []byte) (int, error) {
	if len(b) < 8 {
		return 0, ErrInvalidPacket
	}
	d.HardwareType = binary.BigEndian.Uint16(b[2:4])
	d.Time = binary.BigEndian.Uint32(b[4:8])
	d.LinkLayer = append([]byte(nil), b[8:]...)
	return len(b), nil
}

func (d *DUIDLLT) Save() ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	buf := newBuffer(make([]byte, 0, 8+len(d.LinkLayer)))
	buf.Write16(uint16(DUIDTypeLLT))
	buf.Write16(d.HardwareType)
	buf.Write32(d.Time)
	buf.WriteBytes(d.LinkLayer)
	return buf.Data(), nil
}

// DUIDEN represents a DUID Assigned by Vendor Based on Enterprise Number
// [DUID-EN], as defined in RFC 3315, Section 9.3.
type DUIDEN struct {
	EnterpriseNumber uint32
	Identifier       []byte // up to 122 bytes
}

func (d *DUIDEN) Code() uint16 { return uint16(DUIDTypeEN) }
func (d *DUIDEN) Class() Class { return ClassDUIDEN }
func (d *DUIDEN) Hash() string { b, _ := d.Save(); return string(b) }

func (d *DUIDEN) Validate() error {
	if len(d.Identifier) > 122 {
		return &BadLabelError{Reason: "duid-en identifier exceeds 122 bytes"}
	}
	return nil
}

func (d *DUIDEN) Load(b []byte) (int, error) {
	if len(b) < 6 {
		return 0, ErrInvalidPacket
	}
	d.EnterpriseNumber = binary.BigEndian.Uint32(b[2:6])
	d.Identifier = append([]byte(nil), b[6:]...)
	return len(b), nil
}

func (d *DUIDEN) Save() ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	buf := newBuffer(make([]byte, 0, 6+len(d.Identifier)))
	buf.Write16(uint16(DUIDTypeEN))
	buf.Write32(d.EnterpriseNumber)
	buf.WriteBytes(d.Identifier)
	return buf.Data(), nil
}

// DUIDLL represents a DUID Based on Link-layer Address [DUID-LL], as
// defined in RFC 3315, Section 9.4. This is the form the server's own DUID
// is auto-derived into when no configured DUID is present.
type DUIDLL struct {
	HardwareType uint16
	LinkLayer    []byte // up to 124 bytes
}

// NewDUIDLL generates a new DUIDLL from an IANA hardware type and a
// link-layer address.
func NewDUIDLL(hardwareType uint16, linkLayer []byte) *DUIDLL {
	return &DUIDLL{HardwareType: hardwareType, LinkLayer: linkLayer}
}

func (d *DUIDLL) Code() uint16 { return uint16(DUIDTypeLL) }
func (d *DUIDLL) Class() Class { return ClassDUIDLL }
func (d *DUIDLL) Hash() string { b, _ := d.Save(); return string(b) }

func (d *DUIDLL) Validate() error {
	if len(d.LinkLayer) > 124 {
		return &BadLabelError{Reason: "duid-ll link-layer address exceeds 124 bytes"}
	}
	return nil
}

func (d *DUIDLL) Load(b []byte) (int, error) {
	if len(b) < 4 {
		return 0, ErrInvalidPacket
	}
	d.HardwareType = binary.BigEndian.Uint16(b[2:4])
	d.LinkLayer = append([]byte(nil), b[4:]...)
	return len(b), nil
}

func (d *DUIDLL) Save() ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	buf := newBuffer(make([]byte, 0, 4+len(d.LinkLayer)))
	buf.Write16(uint16(DUIDTypeLL))
	buf.Write16(d.HardwareType)
	buf.WriteBytes(d.LinkLayer)
	return buf.Data(), nil
}

// DUIDUnknown preserves the raw payload of a DUID type the registry does
// not recognize, so round-trips stay bit-exact.
type DUIDUnknown struct {
	TypeCode uint16
	Payload  []byte
}

func (d *DUIDUnknown) Code() uint16 { return d.TypeCode }
func (d *DUIDUnknown) Class() Class { return ClassDUIDUnknown }
func (d *DUIDUnknown) Hash() string { b, _ := d.Save(); return string(b) }
func (d *DUIDUnknown) Raw() []byte  { return d.Payload }

func (d *DUIDUnknown) Load(b []byte) (int, error) {
	if len(b) < 2 {
		return 0, ErrInvalidPacket
	}
	d.TypeCode = binary.BigEndian.Uint16(b[0:2])
	d.Payload = append([]byte(nil), b[2:]...)
	return len(b), nil
}

func (d *DUIDUnknown) Save() ([]byte, error) {
	buf := newBuffer(make([]byte, 0, 2+len(d.Payload)))
	buf.Write16(d.TypeCode)
	buf.WriteBytes(d.Payload)
	return buf.Data(), nil
}

// HexString renders a DUID as lower-case hex, the form used to key rows in
// the leasequery store's SQLite schema.
func HexString(d DUID) string {
	b, _ := d.Save()
	return hex.EncodeToString(b)
}

// DecodeDUID parses a DUID from its wire form. The three DUID types
// enumerated in RFC 3315 (LLT, EN, LL) plus the opaque Unknown fallback
// are a closed set at the codec layer, the same way DecodeMessage closes
// over message types; no DUID extension is registered by this server
// core.
func DecodeDUID(b []byte) (DUID, error) {
	if len(b) < 2 {
		return nil, ErrInvalidPacket
	}
	typ := DUIDType(binary.BigEndian.Uint16(b[0:2]))
	var d DUID
	switch typ {
	case DUIDTypeLLT:
		d = &DUIDLLT{}
	case DUIDTypeEN:
		d = &DUIDEN{}
	case DUIDTypeLL:
		d = &DUIDLL{}
	default:
		d = &DUIDUnknown{}
	}
	if _, err := d.Load(b); err != nil {
		return nil, err
	}
	return d, nil
}

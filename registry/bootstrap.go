package registry

import (
	"sync"

	"github.com/dhcp6kit/dhcp6d/codec"
)

var loadOnce sync.Once

// LoadAllExtensions wires the process-wide registries into the codec
// package's dispatch seams (codec.DefaultOptionFactory,
// codec.SetNTPSubOptionFactory) and is idempotent: repeated calls are
// safe, and the first call must happen before the first packet is parsed.
// Process bootstrap (cmd/dhcp6d) is responsible for calling it once
// before binding any socket.
func LoadAllExtensions() {
	loadOnce.Do(func() {
		codec.DefaultOptionFactory = OptionFactory
		codec.SetNTPSubOptionFactory(NTPSubOptionFactory)
	})
}

// OptionFactory constructs a registered Option for code, or an
// OptionUnknown if code is not registered, satisfying codec.OptionFactory.
func OptionFactory(code uint16) codec.Option {
	if new, ok := Options.ByCode(code); ok {
		return new()
	}
	return &codec.OptionUnknown{TypeCode: code}
}

// NTPSubOptionFactory constructs a registered NTP sub-option for code, or
// an NTPSubOptionUnknown if code is not registered, satisfying
// codec.NTPSubOptionFactory.
func NTPSubOptionFactory(code uint16) codec.NTPSubOption {
	if new, ok := NTPSubOptions.ByCode(code); ok {
		return new()
	}
	return &codec.NTPSubOptionUnknown{TypeCode: code}
}

// ParseMessage constructs the registered Message for b's leading type code
// and loads b into it, delegating to codec.DecodeMessage for the
// recursive/relay-aware parsing codec alone knows how to do; Messages'
// registered constructors exist for name<->code lookup (logging,
// configuration) rather than as this function's dispatch path, since the
// message family is closed at the codec layer.
func ParseMessage(b []byte) (codec.Message, error) {
	return codec.DecodeMessage(b)
}

// ParseOption constructs and loads a single Option from a type:u16,
// length:u16, payload[length] record at the start of b, returning the
// element and the number of bytes consumed.
func ParseOption(b []byte) (codec.Option, int, error) {
	opts, err := codec.DecodeOptions(b, OptionFactory)
	if err != nil {
		return nil, 0, err
	}
	if len(opts) == 0 {
		return nil, 0, codec.ErrInvalidPacket
	}
	saved, err := opts[0].Save()
	if err != nil {
		return nil, 0, err
	}
	return opts[0], 4 + len(saved), nil
}

// ParseDUID parses a single DUID from its wire form, delegating to
// codec.DecodeDUID since the DUID family is closed at the codec layer; see
// the DUIDs table's doc comment.
func ParseDUID(b []byte) (codec.DUID, error) {
	return codec.DecodeDUID(b)
}

package leasequery

import "github.com/dhcp6kit/dhcp6d/codec"

// controlOptionCodes are the option families modeled explicitly rather
// than ever stored as opaque blobs, regardless of the configured filter.
var controlOptionCodes = map[uint16]bool{
	codec.OptionCodeClientID:   true,
	codec.OptionCodeServerID:   true,
	codec.OptionCodeRelayMsg:   true,
	codec.OptionCodeORO:        true,
	codec.OptionCodeIANA:       true,
	codec.OptionCodeIATA:       true,
	codec.OptionCodeIAPD:       true,
	codec.OptionCodeIAAddr:     true,
	codec.OptionCodeIAPrefix:   true,
	codec.OptionCodeStatusCode: true,
}

// OptionFilter is the configurable allow/deny set of option type-codes
// applied to every option stored or returned by the leasequery store. A
// nil Allow/Deny pair passes everything through.
type OptionFilter struct {
	Allow map[uint16]bool
	Deny  map[uint16]bool
}

// Permits reports whether code may be stored/returned under f. Control
// options are always permitted, since they are modeled explicitly rather
// than filtered as opaque blobs.
func (f OptionFilter) Permits(code uint16) bool {
	if controlOptionCodes[code] {
		return true
	}
	if f.Deny != nil && f.Deny[code] {
		return false
	}
	if f.Allow != nil {
		return f.Allow[code]
	}
	return true
}

// Apply filters opts down to those f.Permits.
func (f OptionFilter) Apply(opts []codec.Option) []codec.Option {
	out := make([]codec.Option, 0, len(opts))
	for _, o := range opts {
		if f.Permits(o.Code()) {
			out = append(out, o)
		}
	}
	return out
}

// DefaultCapturedOptionCodes lists the "interesting" option codes: Client-ID,
// Server-ID, Relay-Msg, ORO, IA_NA, IA_TA, IA_PD, IAAddress, IAPrefix,
// StatusCode, and the identifying extensions (Remote-ID, Subscriber-ID)
// leasequery itself depends on. The stores do not consult it: a stored
// client row keeps the request options that its OptionFilter permits.
var DefaultCapturedOptionCodes = map[uint16]bool{
	codec.OptionCodeClientID:     true,
	codec.OptionCodeServerID:     true,
	codec.OptionCodeRelayMsg:     true,
	codec.OptionCodeORO:         true,
	codec.OptionCodeIANA:        true,
	codec.OptionCodeIATA:        true,
	codec.OptionCodeIAPD:        true,
	codec.OptionCodeIAAddr:      true,
	codec.OptionCodeIAPrefix:    true,
	codec.OptionCodeStatusCode:  true,
	codec.OptionCodeRemoteID:    true,
	codec.OptionCodeSubscriberID: true,
}

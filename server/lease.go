package server

import (
	"net"
	"time"

	"github.com/dhcp6kit/dhcp6d/codec"
)

// LeaseAddress is one address the server is willing to extend to a client,
// as looked up from an external mapping; the core frames the response, it
// does not compute the assignment.
type LeaseAddress struct {
	Address                          net.IP
	PreferredLifetime, ValidLifetime time.Duration
}

// LeasePrefix is the IA_PD counterpart of LeaseAddress.
type LeasePrefix struct {
	Prefix                            net.IP
	PrefixLength                      uint8
	PreferredLifetime, ValidLifetime  time.Duration
}

// AddressSource is the external mapping a deployment wires in to answer
// "what is the server willing to extend for this IA": an address pool, a
// static reservation table, or any other lease authority. The pipeline
// never allocates addresses itself.
type AddressSource interface {
	Addresses(clientDUID codec.DUID, iaid [4]byte) ([]LeaseAddress, bool)
	Prefixes(clientDUID codec.DUID, iaid [4]byte) ([]LeasePrefix, bool)
}

// T1T2Clamp bounds the T1/T2 values computed for an IA.
type T1T2Clamp struct {
	MinT1, MaxT1 time.Duration
	MinT2, MaxT2 time.Duration
}

func clampDuration(d, min, max time.Duration) time.Duration {
	if min > 0 && d < min {
		d = min
	}
	if max > 0 && d > max {
		d = max
	}
	return d
}

// computeT1T2 computes T1/T2 per RFC 3315 Section 22.4's guidance: t1 =
// floor(shortest_preferred*0.5), t2 = floor(shortest_preferred*0.8), each
// clamped, with t1 <= t2 <= shortest_preferred maintained by construction.
func computeT1T2(shortestPreferred time.Duration, clamp T1T2Clamp) (t1, t2 time.Duration) {
	t1 = clampDuration(time.Duration(float64(shortestPreferred)*0.5), clamp.MinT1, clamp.MaxT1)
	t2 = clampDuration(time.Duration(float64(shortestPreferred)*0.8), clamp.MinT2, clamp.MaxT2)
	if t2 > shortestPreferred {
		t2 = shortestPreferred
	}
	if t1 > t2 {
		t1 = t2
	}
	return t1, t2
}

// iaNAHandler answers IA_NA requests from Solicit/Request/Renew/Rebind by
// consulting Source. It is registered as a config-instantiated "option"
// handler rather than a mandatory one.
type iaNAHandler struct {
	baseHandler
	Source AddressSource
	Clamp  T1T2Clamp
}

// NewIANAHandler constructs the IA_NA extension handler wired to source.
func NewIANAHandler(source AddressSource, clamp T1T2Clamp) Handler {
	return &iaNAHandler{baseHandler{id: "ia-na"}, source, clamp}
}

func (h *iaNAHandler) Handle(b *Bundle) error {
	if b.Request == nil || b.Response == nil {
		return nil
	}
	clientID, _ := b.Request.GetOption(codec.ClassClientIDOption).(*codec.ClientIDOption)
	if clientID == nil {
		return nil
	}
	isRenewal := b.Request.MessageType == codec.MessageTypeRenew || b.Request.MessageType == codec.MessageTypeRebind
	for _, opt := range b.Request.Options {
		ia, ok := opt.(*codec.IANAOption)
		if !ok {
			continue
		}
		b.MarkHandled(ia)
		reply := &codec.IANAOption{IAID: ia.IAID}
		willing, found := h.Source.Addresses(clientID.DUID, ia.IAID)
		if !found || len(willing) == 0 {
			reply.Options = append(reply.Options, &codec.StatusCodeOption{Code_: codec.StatusNoAddrsAvail})
			b.Response.Options = append(b.Response.Options, reply)
			continue
		}
		shortest := willing[0].PreferredLifetime
		for _, w := range willing[1:] {
			if w.PreferredLifetime < shortest {
				shortest = w.PreferredLifetime
			}
		}
		reply.T1, reply.T2 = computeT1T2(shortest, h.Clamp)
		for _, w := range willing {
			reply.Options = append(reply.Options, &codec.IAAddressOption{
				Address:           w.Address,
				PreferredLifetime: w.PreferredLifetime,
				ValidLifetime:     w.ValidLifetime,
			})
		}
		if isRenewal {
			appendDeclinedAddresses(reply, ia, willing)
		}
		b.Response.Options = append(b.Response.Options, reply)
	}
	return nil
}

// appendDeclinedAddresses echoes back, with zero lifetimes, any requested
// address not among willing, per RFC 3315 Section 18.2.4's renewal policy.
func appendDeclinedAddresses(reply *codec.IANAOption, requested *codec.IANAOption, willing []LeaseAddress) {
	for _, opt := range requested.Options {
		addr, ok := opt.(*codec.IAAddressOption)
		if !ok {
			continue
		}
		keep := false
		for _, w := range willing {
			if w.Address.Equal(addr.Address) {
				keep = true
				break
			}
		}
		if keep {
			continue
		}
		reply.Options = append(reply.Options, &codec.IAAddressOption{Address: addr.Address})
	}
}

// iaPDHandler is the IA_PD counterpart of iaNAHandler.
type iaPDHandler struct {
	baseHandler
	Source AddressSource
	Clamp  T1T2Clamp
}

// NewIAPDHandler constructs the IA_PD extension handler wired to source.
func NewIAPDHandler(source AddressSource, clamp T1T2Clamp) Handler {
	return &iaPDHandler{baseHandler{id: "ia-pd"}, source, clamp}
}

func (h *iaPDHandler) Handle(b *Bundle) error {
	if b.Request == nil || b.Response == nil {
		return nil
	}
	clientID, _ := b.Request.GetOption(codec.ClassClientIDOption).(*codec.ClientIDOption)
	if clientID == nil {
		return nil
	}
	isRenewal := b.Request.MessageType == codec.MessageTypeRenew || b.Request.MessageType == codec.MessageTypeRebind
	for _, opt := range b.Request.Options {
		ia, ok := opt.(*codec.IAPDOption)
		if !ok {
			continue
		}
		b.MarkHandled(ia)
		reply := &codec.IAPDOption{IAID: ia.IAID}
		willing, found := h.Source.Prefixes(clientID.DUID, ia.IAID)
		if !found || len(willing) == 0 {
			reply.Options = append(reply.Options, &codec.StatusCodeOption{Code_: codec.StatusNoAddrsAvail})
			b.Response.Options = append(b.Response.Options, reply)
			continue
		}
		shortest := willing[0].PreferredLifetime
		for _, w := range willing[1:] {
			if w.PreferredLifetime < shortest {
				shortest = w.PreferredLifetime
			}
		}
		reply.T1, reply.T2 = computeT1T2(shortest, h.Clamp)
		for _, w := range willing {
			reply.Options = append(reply.Options, &codec.IAPrefixOption{
				Prefix:            w.Prefix,
				PrefixLength:      w.PrefixLength,
				PreferredLifetime: w.PreferredLifetime,
				ValidLifetime:     w.ValidLifetime,
			})
		}
		if isRenewal {
			appendDeclinedPrefixes(reply, ia, willing)
		}
		b.Response.Options = append(b.Response.Options, reply)
	}
	return nil
}

func appendDeclinedPrefixes(reply *codec.IAPDOption, requested *codec.IAPDOption, willing []LeasePrefix) {
	for _, opt := range requested.Options {
		pfx, ok := opt.(*codec.IAPrefixOption)
		if !ok {
			continue
		}
		keep := false
		for _, w := range willing {
			if w.Prefix.Equal(pfx.Prefix) && w.PrefixLength == pfx.PrefixLength {
				keep = true
				break
			}
		}
		if keep {
			continue
		}
		reply.Options = append(reply.Options, &codec.IAPrefixOption{Prefix: pfx.Prefix, PrefixLength: pfx.PrefixLength})
	}
}

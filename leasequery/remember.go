package leasequery

import (
	"time"

	"github.com/dhcp6kit/dhcp6d/codec"
	"github.com/dhcp6kit/dhcp6d/server"
)

// BuildRecord extracts the ClientRecord a completed transaction should be
// remembered as, or nil if the transaction is not one RememberLease should
// observe: only Solicit/Request/Renew/Rebind responses, and only when the
// response is accepting (carries no failure status).
func BuildRecord(b *server.Bundle, filter OptionFilter, now time.Time) *ClientRecord {
	if b.Request == nil || b.Response == nil {
		return nil
	}
	switch b.Request.MessageType {
	case codec.MessageTypeSolicit, codec.MessageTypeRequest, codec.MessageTypeRenew, codec.MessageTypeRebind:
	default:
		return nil
	}
	if hasFailureStatus(b.Response.GetOption(codec.ClassStatusCodeOption)) {
		return nil
	}

	clientID, ok := b.Request.GetOption(codec.ClassClientIDOption).(*codec.ClientIDOption)
	if !ok {
		return nil
	}

	rec := &ClientRecord{
		ClientDUID:      clientID.DUID,
		LinkAddress:     b.LinkAddress(),
		Options:         filter.Apply(b.Request.Options),
		LastInteraction: now,
	}

	for _, opt := range b.Response.Options {
		switch ia := opt.(type) {
		case *codec.IANAOption:
			if hasFailureStatus(getIAOption(ia.Options, codec.ClassStatusCodeOption)) {
				continue
			}
			appendAddressLeases(rec, ia.Options, now)
		case *codec.IATAOption:
			if hasFailureStatus(getIAOption(ia.Options, codec.ClassStatusCodeOption)) {
				continue
			}
			appendAddressLeases(rec, ia.Options, now)
		case *codec.IAPDOption:
			if hasFailureStatus(getIAOption(ia.Options, codec.ClassStatusCodeOption)) {
				continue
			}
			appendPrefixLeases(rec, ia.Options, now)
		}
	}

	for _, relay := range b.IncomingRelayMessages {
		if rid, ok := relay.GetOption(codec.ClassRemoteIDOption).(*codec.RemoteIDOption); ok {
			rec.RemoteIDs = append(rec.RemoteIDs, RemoteID{Enterprise: rid.EnterpriseNumber, Opaque: rid.RemoteID})
		}
		if relayID, ok := relay.GetOption(codec.ClassRelayIDOption).(*codec.RelayIDOption); ok {
			if b, err := relayID.DUID.Save(); err == nil {
				rec.RelayIDs = append(rec.RelayIDs, b)
			}
		}
	}
	if len(b.IncomingRelayMessages) > 0 {
		outermost := b.IncomingRelayMessages[len(b.IncomingRelayMessages)-1]
		if raw, err := outermost.Save(); err == nil {
			rec.RelayData = raw
		}
	}

	return rec
}

func hasFailureStatus(opt codec.Option) bool {
	sc, ok := opt.(*codec.StatusCodeOption)
	if !ok {
		return false
	}
	return sc.Code_ != codec.StatusSuccess
}

func appendAddressLeases(rec *ClientRecord, opts []codec.Option, now time.Time) {
	for _, opt := range opts {
		addr, ok := opt.(*codec.IAAddressOption)
		if !ok || addr.ValidLifetime <= 0 {
			continue
		}
		rec.Addresses = append(rec.Addresses, AddressLease{
			Address:               addr.Address,
			PreferredLifetimeEnd:  now.Add(addr.PreferredLifetime),
			ValidLifetimeEnd:      now.Add(addr.ValidLifetime),
			Options:               addr.Options,
		})
	}
}

func appendPrefixLeases(rec *ClientRecord, opts []codec.Option, now time.Time) {
	for _, opt := range opts {
		pfx, ok := opt.(*codec.IAPrefixOption)
		if !ok || pfx.ValidLifetime <= 0 {
			continue
		}
		first, last := prefixRange(pfx.Prefix, pfx.PrefixLength)
		rec.Prefixes = append(rec.Prefixes, PrefixLease{
			First:                first,
			Last:                 last,
			PrefixLength:         pfx.PrefixLength,
			PreferredLifetimeEnd: now.Add(pfx.PreferredLifetime),
			ValidLifetimeEnd:     now.Add(pfx.ValidLifetime),
			Options:              pfx.Options,
		})
	}
}

// getIAOption mirrors ClientServerMessage.GetOption for the IA option types,
// letting BuildRecord check an IA's own StatusCodeOption the same way.
func getIAOption(opts []codec.Option, cls codec.Class) codec.Option {
	for _, o := range opts {
		if o.Class() == cls {
			return o
		}
	}
	return nil
}

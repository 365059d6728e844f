package leasequery

import (
	"time"

	"github.com/dhcp6kit/dhcp6d/codec"
)

// BuildClientData builds the ClientDataOption for one matched row of a
// LEASEQUERY-REPLY, per RFC 5007 Section 5.2.
func BuildClientData(rec *ClientRecord, q Query, filter OptionFilter, now time.Time) *codec.ClientDataOption {
	data := &codec.ClientDataOption{}
	data.Options = append(data.Options, &codec.ClientIDOption{DUID: rec.ClientDUID})
	data.Options = append(data.Options, &codec.CLTTimeOption{Seconds: uint32(now.Sub(rec.LastInteraction).Seconds())})

	if oro := requestedOptions(q.RequestedOptions); oro != nil {
		for _, opt := range filter.Apply(rec.Options) {
			if oro[opt.Code()] {
				data.Options = append(data.Options, opt)
			}
		}
	}

	if q.WantRelayData && len(rec.RelayData) > 0 {
		data.Options = append(data.Options, &codec.LQRelayDataOption{RelayMessage: rec.RelayData})
	}

	for _, a := range rec.Addresses {
		preferred := durationUntil(a.PreferredLifetimeEnd, now)
		valid := durationUntil(a.ValidLifetimeEnd, now)
		if valid <= 0 {
			continue
		}
		data.Options = append(data.Options, &codec.IAAddressOption{
			Address:           a.Address,
			PreferredLifetime: preferred,
			ValidLifetime:     valid,
			Options:           filter.Apply(a.Options),
		})
	}

	for _, p := range rec.Prefixes {
		preferred := durationUntil(p.PreferredLifetimeEnd, now)
		valid := durationUntil(p.ValidLifetimeEnd, now)
		if valid <= 0 {
			continue
		}
		data.Options = append(data.Options, &codec.IAPrefixOption{
			Prefix:            p.First,
			PrefixLength:      p.PrefixLength,
			PreferredLifetime: preferred,
			ValidLifetime:     valid,
			Options:           filter.Apply(p.Options),
		})
	}

	return data
}

func durationUntil(end, now time.Time) time.Duration {
	d := end.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

func requestedOptions(codes []uint16) map[uint16]bool {
	if len(codes) == 0 {
		return nil
	}
	m := make(map[uint16]bool, len(codes))
	for _, c := range codes {
		m[c] = true
	}
	return m
}

// Package leasequery implements the durable lease-observation store and
// the five RFC 5007/5460 query modes.
package leasequery

import (
	"encoding/hex"
	"net"
	"time"

	"github.com/dhcp6kit/dhcp6d/codec"
)

// AddressLease is one observed address binding.
type AddressLease struct {
	Address           net.IP
	PreferredLifetimeEnd, ValidLifetimeEnd time.Time
	Options           []codec.Option
}

// PrefixLease is one observed prefix binding, stored as a [First, Last]
// address range so range queries are a pure textual BETWEEN.
type PrefixLease struct {
	First, Last       net.IP
	PrefixLength      uint8
	PreferredLifetimeEnd, ValidLifetimeEnd time.Time
	Options           []codec.Option
}

// ClientRecord is one observed client's complete leasequery row.
type ClientRecord struct {
	ClientDUID      codec.DUID
	LinkAddress     net.IP
	Options         []codec.Option
	LastInteraction time.Time
	RelayData       []byte
	Addresses       []AddressLease
	Prefixes        []PrefixLease
	RemoteIDs       []RemoteID
	RelayIDs        [][]byte
}

// RemoteID is the (enterprise, opaque) pairing from RFC 4649's
// RemoteIDOption.
type RemoteID struct {
	Enterprise uint32
	Opaque     []byte
}

// Query is one of the five closed query modes a leasequery request can
// request.
type Query struct {
	Type             codec.QueryType
	Address          net.IP
	ClientDUID       codec.DUID
	RelayDUID        codec.DUID
	LinkAddress      net.IP
	RemoteEnterprise uint32
	RemoteOpaque     []byte
	RequestedOptions []uint16
	WantRelayData    bool
}

// Row is one matched client row, paired with the link-address the match
// was found on (a client may have rows on more than one link).
type Row struct {
	LinkAddress net.IP
	ClientData  *codec.ClientDataOption
}

// Store is the durable lease-observation contract: RememberLease records a
// completed transaction's bindings, FindLeases answers one of the five
// query modes. count < 0 means the query mode is unsupported by this
// Store, count == 0 means no bindings matched, count > 0 means rows holds
// that many matches.
type Store interface {
	RememberLease(rec *ClientRecord) error
	FindLeases(q Query) (count int, rows []Row, err error)
}

// duidHex renders a DUID's wire form as lower-case hex, the canonical key
// used throughout the store's persistence schema.
func duidHex(d codec.DUID) (string, error) {
	b, err := d.Save()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// canonicalIP renders ip in uncompressed, lower-case canonical form so
// textual BETWEEN range queries against prefix bounds are correct.
func canonicalIP(ip net.IP) string {
	ip16 := ip.To16()
	return hex.EncodeToString(ip16)
}

func prefixRange(prefix net.IP, length uint8) (first, last net.IP) {
	base := prefix.To16()
	mask := net.CIDRMask(int(length), 128)
	first = base.Mask(mask)
	last = make(net.IP, 16)
	for i := range last {
		last[i] = first[i] | ^mask[i]
	}
	return first, last
}

package server

import (
	"encoding/hex"
	"net"
	"time"

	"github.com/dhcp6kit/dhcp6d/codec"
)

// StaticAddressSource is the reservation-table AddressSource a deployment
// gets for free from configuration: a fixed client-DUID+IAID -> lease-set
// map, read once at config-build time. It is one concrete implementation of
// the AddressSource seam, not the only one a deployment may wire in.
type StaticAddressSource struct {
	addresses map[string][]LeaseAddress
	prefixes  map[string][]LeasePrefix
}

// NewStaticAddressSource constructs an empty StaticAddressSource; callers
// populate it with AddAddresses/AddPrefixes while parsing configuration.
func NewStaticAddressSource() *StaticAddressSource {
	return &StaticAddressSource{
		addresses: make(map[string][]LeaseAddress),
		prefixes:  make(map[string][]LeasePrefix),
	}
}

func sourceKey(clientDUID codec.DUID, iaid [4]byte) string {
	raw, _ := clientDUID.Save()
	return hex.EncodeToString(raw) + "/" + hex.EncodeToString(iaid[:])
}

// AddAddresses registers the address leases the server offers for
// (duidHex, iaidHex); both are lower-case hex strings matching HexString's
// output and the 4-byte IAID's hex encoding, respectively.
func (s *StaticAddressSource) AddAddresses(duidHex, iaidHex string, leases []LeaseAddress) {
	s.addresses[duidHex+"/"+iaidHex] = leases
}

// AddPrefixes is the IA_PD counterpart of AddAddresses.
func (s *StaticAddressSource) AddPrefixes(duidHex, iaidHex string, leases []LeasePrefix) {
	s.prefixes[duidHex+"/"+iaidHex] = leases
}

func (s *StaticAddressSource) Addresses(clientDUID codec.DUID, iaid [4]byte) ([]LeaseAddress, bool) {
	leases, ok := s.addresses[sourceKey(clientDUID, iaid)]
	return leases, ok
}

func (s *StaticAddressSource) Prefixes(clientDUID codec.DUID, iaid [4]byte) ([]LeasePrefix, bool) {
	leases, ok := s.prefixes[sourceKey(clientDUID, iaid)]
	return leases, ok
}

func durationConfig(cfg map[string]interface{}, key string) time.Duration {
	s, _ := cfg[key].(string)
	if s == "" {
		return 0
	}
	d, _ := time.ParseDuration(s)
	return d
}

func clampFromConfig(cfg map[string]interface{}) T1T2Clamp {
	return T1T2Clamp{
		MinT1: durationConfig(cfg, "t1-min"),
		MaxT1: durationConfig(cfg, "t1-max"),
		MinT2: durationConfig(cfg, "t2-min"),
		MaxT2: durationConfig(cfg, "t2-max"),
	}
}

func clientEntries(cfg map[string]interface{}) []map[string]interface{} {
	raw, _ := cfg["clients"].([]interface{})
	out := make([]map[string]interface{}, 0, len(raw))
	for _, r := range raw {
		if m, ok := r.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

func buildStaticAddressSource(cfg map[string]interface{}) *StaticAddressSource {
	source := NewStaticAddressSource()
	for _, client := range clientEntries(cfg) {
		duidHex, _ := client["duid"].(string)
		iaidHex, _ := client["iaid"].(string)
		if duidHex == "" || iaidHex == "" {
			continue
		}
		if addrs, ok := client["addresses"].([]interface{}); ok {
			leases := make([]LeaseAddress, 0, len(addrs))
			for _, a := range addrs {
				entry, ok := a.(map[string]interface{})
				if !ok {
					continue
				}
				addrStr, _ := entry["address"].(string)
				leases = append(leases, LeaseAddress{
					Address:           net.ParseIP(addrStr),
					PreferredLifetime: durationConfig(entry, "preferred"),
					ValidLifetime:     durationConfig(entry, "valid"),
				})
			}
			source.AddAddresses(duidHex, iaidHex, leases)
		}
		if prefixes, ok := client["prefixes"].([]interface{}); ok {
			leases := make([]LeasePrefix, 0, len(prefixes))
			for _, p := range prefixes {
				entry, ok := p.(map[string]interface{})
				if !ok {
					continue
				}
				prefixStr, _ := entry["prefix"].(string)
				length, _ := entry["length"].(float64)
				leases = append(leases, LeasePrefix{
					Prefix:            net.ParseIP(prefixStr),
					PrefixLength:      uint8(length),
					PreferredLifetime: durationConfig(entry, "preferred"),
					ValidLifetime:     durationConfig(entry, "valid"),
				})
			}
			source.AddPrefixes(duidHex, iaidHex, leases)
		}
	}
	return source
}

func init() {
	registerHandlerFactory("ia-na", func(cfg map[string]interface{}) (Handler, error) {
		return NewIANAHandler(buildStaticAddressSource(cfg), clampFromConfig(cfg)), nil
	})
	registerHandlerFactory("ia-pd", func(cfg map[string]interface{}) (Handler, error) {
		return NewIAPDHandler(buildStaticAddressSource(cfg), clampFromConfig(cfg)), nil
	})
}

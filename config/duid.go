package config

import (
	"encoding/hex"
	"fmt"
	"net"

	"github.com/dhcp6kit/dhcp6d/codec"
)

// vendorMagic prefixes an auto-derived server DUID's link-layer payload: a
// vendor-chosen 4-byte magic distinguishing auto-derived DUIDs from ones
// an operator configured explicitly.
var vendorMagic = []byte{0x53, 0x4a, 0x4d, 0x53}

// ResolveServerID returns the configured hex DUID if non-empty, or derives
// one from the first interface with a hardware address, cached by the
// caller for the process lifetime.
func ResolveServerID(configuredHex string) (codec.DUID, error) {
	if configuredHex != "" {
		raw, err := hex.DecodeString(configuredHex)
		if err != nil {
			return nil, fmt.Errorf("config: invalid server duid hex: %w", err)
		}
		return codec.DecodeDUID(raw)
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	for _, iface := range ifaces {
		if len(iface.HardwareAddr) == 0 {
			continue
		}
		linkLayer := append(append([]byte(nil), vendorMagic...), iface.HardwareAddr...)
		return codec.NewDUIDLL(1, linkLayer), nil
	}
	return nil, fmt.Errorf("config: no interface with a hardware address to derive a server duid from")
}

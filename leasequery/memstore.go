package leasequery

import (
	"encoding/hex"
	"sync"
	"time"

	"github.com/dhcp6kit/dhcp6d/codec"
)

// MemStore is an in-memory Store, useful for tests and small deployments
// that do not need durability across restarts.
type MemStore struct {
	mu      sync.RWMutex
	clients map[string]*ClientRecord // keyed by duidHex + "|" + link-address

	Filter OptionFilter
	Now    func() time.Time
}

// NewMemStore constructs an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{clients: make(map[string]*ClientRecord), Now: time.Now}
}

func memKey(duid, link string) string { return duid + "|" + link }

// RememberLease implements Store, applying replacement semantics: when a
// new observation claims an address/prefix range also held by a different
// client's row, that range is removed from the older row first; when the
// observed remote-id/relay-id set differs from what is stored, the stored
// set is replaced wholesale.
func (s *MemStore) RememberLease(rec *ClientRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	duid, err := duidHex(rec.ClientDUID)
	if err != nil {
		return err
	}
	key := memKey(duid, canonicalIP(rec.LinkAddress))

	for _, addr := range rec.Addresses {
		s.evictAddress(key, addr.Address)
	}
	for _, pfx := range rec.Prefixes {
		s.evictPrefix(key, pfx.First, pfx.Last)
	}

	s.clients[key] = rec
	return nil
}

func (s *MemStore) evictAddress(exceptKey string, addr []byte) {
	want := canonicalIP(addr)
	for key, other := range s.clients {
		if key == exceptKey {
			continue
		}
		kept := other.Addresses[:0]
		for _, a := range other.Addresses {
			if canonicalIP(a.Address) != want {
				kept = append(kept, a)
			}
		}
		other.Addresses = kept
	}
}

func (s *MemStore) evictPrefix(exceptKey string, first, last []byte) {
	wantFirst, wantLast := canonicalIP(first), canonicalIP(last)
	for key, other := range s.clients {
		if key == exceptKey {
			continue
		}
		kept := other.Prefixes[:0]
		for _, p := range other.Prefixes {
			if canonicalIP(p.First) != wantFirst || canonicalIP(p.Last) != wantLast {
				kept = append(kept, p)
			}
		}
		other.Prefixes = kept
	}
}

// FindLeases implements Store's five query modes over the in-memory index.
func (s *MemStore) FindLeases(q Query) (int, []Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*ClientRecord
	switch q.Type {
	case codec.QueryByAddress:
		matches = s.findByAddress(q.Address, q.LinkAddress)
	case codec.QueryByClientID:
		matches = s.findByClientID(q.ClientDUID, q.LinkAddress)
	case codec.QueryByRelayID:
		matches = s.findByRelayID(q.RelayDUID, q.LinkAddress)
	case codec.QueryByLinkAddress:
		matches = s.findByLink(q.LinkAddress)
	case codec.QueryByRemoteID:
		matches = s.findByRemoteID(q.RemoteEnterprise, q.RemoteOpaque, q.LinkAddress)
	default:
		return -1, nil, nil
	}

	if len(matches) == 0 {
		return 0, nil, nil
	}
	rows := make([]Row, 0, len(matches))
	for _, rec := range matches {
		rows = append(rows, Row{
			LinkAddress: rec.LinkAddress,
			ClientData:  BuildClientData(rec, q, s.Filter, s.Now()),
		})
	}
	return len(rows), rows, nil
}

func linkMatches(link []byte, rec *ClientRecord) bool {
	return link == nil || isUnspecified(link) || canonicalIP(rec.LinkAddress) == canonicalIP(link)
}

func (s *MemStore) findByLink(link []byte) []*ClientRecord {
	var out []*ClientRecord
	for _, rec := range s.clients {
		if linkMatches(link, rec) {
			out = append(out, rec)
		}
	}
	return out
}

func (s *MemStore) findByClientID(duid codec.DUID, link []byte) []*ClientRecord {
	if duid == nil {
		return nil
	}
	want, err := duidHex(duid)
	if err != nil {
		return nil
	}
	var out []*ClientRecord
	for _, rec := range s.clients {
		if !linkMatches(link, rec) {
			continue
		}
		if got, err := duidHex(rec.ClientDUID); err == nil && got == want {
			out = append(out, rec)
		}
	}
	return out
}

func (s *MemStore) findByAddress(addr []byte, link []byte) []*ClientRecord {
	var out []*ClientRecord
	target := canonicalIP(addr)
	for _, rec := range s.clients {
		if !linkMatches(link, rec) {
			continue
		}
		matched := false
		for _, a := range rec.Addresses {
			if canonicalIP(a.Address) == target {
				matched = true
				break
			}
		}
		if !matched {
			matched = containsInPrefixes(rec.Prefixes, target)
		}
		if matched {
			out = append(out, rec)
		}
	}
	return out
}

func containsInPrefixes(prefixes []PrefixLease, target string) bool {
	for _, p := range prefixes {
		if canonicalIP(p.First) <= target && target <= canonicalIP(p.Last) {
			return true
		}
	}
	return false
}

func (s *MemStore) findByRelayID(duid codec.DUID, link []byte) []*ClientRecord {
	if duid == nil {
		return nil
	}
	raw, err := duid.Save()
	if err != nil {
		return nil
	}
	want := hex.EncodeToString(raw)
	var out []*ClientRecord
	for _, rec := range s.clients {
		if !linkMatches(link, rec) {
			continue
		}
		for _, rid := range rec.RelayIDs {
			if hex.EncodeToString(rid) == want {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}

func (s *MemStore) findByRemoteID(enterprise uint32, opaque []byte, link []byte) []*ClientRecord {
	var out []*ClientRecord
	for _, rec := range s.clients {
		if !linkMatches(link, rec) {
			continue
		}
		for _, rid := range rec.RemoteIDs {
			if rid.Enterprise == enterprise && string(rid.Opaque) == string(opaque) {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}

func isUnspecified(ip []byte) bool {
	for _, b := range ip {
		if b != 0 {
			return false
		}
	}
	return true
}

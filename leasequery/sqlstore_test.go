package leasequery

import (
	"net"
	"testing"
	"time"

	"github.com/dhcp6kit/dhcp6d/codec"
)

func TestSQLStoreRememberAndFindByClientID(t *testing.T) {
	store, err := OpenSQLStore(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLStore: %v", err)
	}
	defer store.Close()

	duid := codec.NewDUIDLL(1, []byte{1, 2, 3, 4, 5, 6})
	now := time.Now()
	rec := &ClientRecord{
		ClientDUID:      duid,
		LinkAddress:     net.ParseIP("2001:db8::1"),
		LastInteraction: now,
		Addresses: []AddressLease{{
			Address:              net.ParseIP("2001:db8::100"),
			PreferredLifetimeEnd: now.Add(time.Hour),
			ValidLifetimeEnd:     now.Add(2 * time.Hour),
		}},
	}
	if err := store.RememberLease(rec); err != nil {
		t.Fatalf("RememberLease: %v", err)
	}

	count, rows, err := store.FindLeases(Query{Type: codec.QueryByClientID, ClientDUID: duid})
	if err != nil {
		t.Fatalf("FindLeases: %v", err)
	}
	if count != 1 || len(rows) != 1 {
		t.Fatalf("got count=%d rows=%d, want 1/1", count, len(rows))
	}
}

func TestSQLStoreUpsertReplacesOptions(t *testing.T) {
	store, err := OpenSQLStore(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLStore: %v", err)
	}
	defer store.Close()

	duid := codec.NewDUIDLL(1, []byte{9, 9, 9, 9, 9, 9})
	link := net.ParseIP("2001:db8::1")
	now := time.Now()

	first := &ClientRecord{ClientDUID: duid, LinkAddress: link, LastInteraction: now}
	if err := store.RememberLease(first); err != nil {
		t.Fatalf("RememberLease (first): %v", err)
	}
	second := &ClientRecord{ClientDUID: duid, LinkAddress: link, LastInteraction: now.Add(time.Minute)}
	if err := store.RememberLease(second); err != nil {
		t.Fatalf("RememberLease (second): %v", err)
	}

	count, _, err := store.FindLeases(Query{Type: codec.QueryByClientID, ClientDUID: duid})
	if err != nil {
		t.Fatalf("FindLeases: %v", err)
	}
	if count != 1 {
		t.Fatalf("got count=%d, want 1 (re-remembering the same client/link must upsert, not duplicate)", count)
	}
}

func TestSQLStoreFindByAddressNoMatch(t *testing.T) {
	store, err := OpenSQLStore(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLStore: %v", err)
	}
	defer store.Close()

	count, rows, err := store.FindLeases(Query{Type: codec.QueryByAddress, Address: net.ParseIP("2001:db8::999")})
	if err != nil {
		t.Fatalf("FindLeases: %v", err)
	}
	if count != 0 || rows != nil {
		t.Fatalf("got count=%d rows=%v, want 0/nil", count, rows)
	}
}

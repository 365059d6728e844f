package leasequery

import (
	"net"
	"testing"
	"time"

	"github.com/dhcp6kit/dhcp6d/codec"
)

func TestBuildClientDataIncludesClientIDAndCLTTime(t *testing.T) {
	duid := codec.NewDUIDLL(1, []byte{1, 2, 3, 4, 5, 6})
	now := time.Now()
	rec := &ClientRecord{
		ClientDUID:      duid,
		LastInteraction: now.Add(-30 * time.Second),
	}
	data := BuildClientData(rec, Query{}, OptionFilter{}, now)

	cid, ok := firstOption(data.Options, codec.ClassClientIDOption).(*codec.ClientIDOption)
	if !ok {
		t.Fatal("expected a ClientIDOption in the built ClientData")
	}
	if cid.DUID.Hash() != duid.Hash() {
		t.Fatal("expected the ClientIDOption to carry the record's DUID")
	}

	clt, ok := firstOption(data.Options, codec.ClassCLTTimeOption).(*codec.CLTTimeOption)
	if !ok {
		t.Fatal("expected a CLTTimeOption in the built ClientData")
	}
	if clt.Seconds < 29 || clt.Seconds > 31 {
		t.Fatalf("got CLTTime %d seconds, want ~30", clt.Seconds)
	}
}

func TestBuildClientDataSkipsExpiredAddressesAndPrefixes(t *testing.T) {
	now := time.Now()
	rec := &ClientRecord{
		ClientDUID: codec.NewDUIDLL(1, []byte{1, 2, 3, 4, 5, 6}),
		Addresses: []AddressLease{
			{Address: net.ParseIP("2001:db8::1"), ValidLifetimeEnd: now.Add(time.Hour)},
			{Address: net.ParseIP("2001:db8::2"), ValidLifetimeEnd: now.Add(-time.Hour)},
		},
	}
	data := BuildClientData(rec, Query{}, OptionFilter{}, now)

	var addrCount int
	for _, o := range data.Options {
		if _, ok := o.(*codec.IAAddressOption); ok {
			addrCount++
		}
	}
	if addrCount != 1 {
		t.Fatalf("got %d addresses, want 1 (the expired one must be dropped)", addrCount)
	}
}

func TestBuildClientDataIncludesRelayDataWhenRequested(t *testing.T) {
	now := time.Now()
	rec := &ClientRecord{
		ClientDUID: codec.NewDUIDLL(1, []byte{1, 2, 3, 4, 5, 6}),
		RelayData:  []byte{1, 2, 3, 4},
	}
	data := BuildClientData(rec, Query{WantRelayData: true}, OptionFilter{}, now)
	if firstOption(data.Options, codec.ClassLQRelayDataOption) == nil {
		t.Fatal("expected LQRelayDataOption to be included when WantRelayData is set")
	}

	dataNoRelay := BuildClientData(rec, Query{WantRelayData: false}, OptionFilter{}, now)
	if firstOption(dataNoRelay.Options, codec.ClassLQRelayDataOption) != nil {
		t.Fatal("did not expect LQRelayDataOption when WantRelayData is unset")
	}
}

func TestBuildClientDataFiltersRequestedOptions(t *testing.T) {
	now := time.Now()
	rec := &ClientRecord{
		ClientDUID: codec.NewDUIDLL(1, []byte{1, 2, 3, 4, 5, 6}),
		Options: []codec.Option{
			&codec.SubscriberIDOption{SubscriberID: []byte("sub")},
		},
	}
	data := BuildClientData(rec, Query{RequestedOptions: []uint16{codec.OptionCodeSubscriberID}}, OptionFilter{}, now)
	if firstOption(data.Options, codec.ClassSubscriberIDOption) == nil {
		t.Fatal("expected the explicitly requested SubscriberIDOption to be included")
	}

	dataNoRequest := BuildClientData(rec, Query{}, OptionFilter{}, now)
	if firstOption(dataNoRequest.Options, codec.ClassSubscriberIDOption) != nil {
		t.Fatal("did not expect stored options to be included absent a requested-options list")
	}
}

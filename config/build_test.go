package config

import (
	"testing"

	"github.com/dhcp6kit/dhcp6d/codec"
)

func TestBuildMinimalDocument(t *testing.T) {
	doc := &Document{
		Server:     ServerSection{DUID: "00030001010203040506", AllowRapidCommit: true},
		Leasequery: LeasequerySection{Store: "memory"},
		Interfaces: []InterfaceSection{{Name: "eth0", Multicast: true}},
	}
	built, err := Build(doc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if built.Dispatcher == nil {
		t.Fatal("expected a non-nil Dispatcher")
	}
	if len(built.Servers) != 1 {
		t.Fatalf("got %d servers, want 1", len(built.Servers))
	}
	if built.Store == nil {
		t.Fatal("expected a non-nil leasequery Store")
	}
}

func TestBuildWiresOptionHandler(t *testing.T) {
	doc := &Document{
		Server:     ServerSection{DUID: "00030001010203040506"},
		Leasequery: LeasequerySection{Store: "memory"},
		Options:    []OptionSection{{Name: "ia-na", Config: map[string]interface{}{}}},
	}
	built, err := Build(doc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if built.Dispatcher.Root == nil || len(built.Dispatcher.Root.Handlers) != 1 {
		t.Fatalf("expected the configured ia-na handler to be wired into the dispatcher's root")
	}
}

func TestBuildWiresNestedFilter(t *testing.T) {
	doc := &Document{
		Server:     ServerSection{DUID: "00030001010203040506"},
		Leasequery: LeasequerySection{Store: "memory"},
		Filters: []FilterSection{{
			Condition: "marked-with",
			Config:    map[string]interface{}{"tag": "vip"},
			Options:   []OptionSection{{Name: "ia-na"}},
		}},
	}
	built, err := Build(doc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(built.Dispatcher.Root.Filters) != 1 {
		t.Fatalf("got %d filters, want 1", len(built.Dispatcher.Root.Filters))
	}
	if len(built.Dispatcher.Root.Filters[0].Handlers) != 1 {
		t.Fatal("expected the nested option handler to be wired into the filter")
	}
}

func TestBuildRejectsUnknownFilterCondition(t *testing.T) {
	doc := &Document{
		Server:     ServerSection{DUID: "00030001010203040506"},
		Leasequery: LeasequerySection{Store: "memory"},
		Filters:    []FilterSection{{Condition: "no-such-condition"}},
	}
	if _, err := Build(doc); err == nil {
		t.Fatal("expected an error for an unrecognized filter condition")
	}
}

func TestBuildRejectsUnknownOptionHandler(t *testing.T) {
	doc := &Document{
		Server:     ServerSection{DUID: "00030001010203040506"},
		Leasequery: LeasequerySection{Store: "memory"},
		Options:    []OptionSection{{Name: "no-such-handler"}},
	}
	if _, err := Build(doc); err == nil {
		t.Fatal("expected an error for an unrecognized option handler")
	}
}

func TestBuildRejectsInvalidAllowFromCIDR(t *testing.T) {
	doc := &Document{
		Server:     ServerSection{DUID: "00030001010203040506"},
		Leasequery: LeasequerySection{Store: "memory", AllowFrom: []string{"not-a-cidr"}},
	}
	if _, err := Build(doc); err == nil {
		t.Fatal("expected an error for a malformed allow_from CIDR")
	}
}

func TestRequireMulticastFuncHonorsListenToSelf(t *testing.T) {
	doc := &Document{Interfaces: []InterfaceSection{{Name: "eth0", ListenToSelf: true}}}
	f := requireMulticastFunc(doc)
	if f(codec.MessageTypeSolicit) {
		t.Fatal("expected requireMulticastFunc to always return false when any interface sets listen_to_self")
	}
}

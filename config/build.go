package config

import (
	"fmt"
	"net"
	"strconv"

	"github.com/dhcp6kit/dhcp6d/codec"
	"github.com/dhcp6kit/dhcp6d/leasequery"
	"github.com/dhcp6kit/dhcp6d/registry"
	"github.com/dhcp6kit/dhcp6d/server"
)

// Built is everything Build assembled from a Document: the dispatcher
// shared by every listener, the per-interface listeners themselves, and
// the leasequery store they all observe through, kept open so the caller
// can Close it on shutdown.
type Built struct {
	Dispatcher *server.Dispatcher
	Servers    []*server.Server
	Store      leasequery.Store
	AllowFrom  []*net.IPNet
}

// Build resolves a Document into a running configuration: the server DUID,
// the leasequery store and its observe/answer handlers, the filter/handler
// graph, and one server.Server per configured interface.
func Build(doc *Document) (*Built, error) {
	serverID, err := ResolveServerID(doc.Server.DUID)
	if err != nil {
		return nil, err
	}

	store, err := openStore(doc.Leasequery.Store)
	if err != nil {
		return nil, err
	}
	filter := buildOptionFilter(doc.Leasequery.SensitiveOptions)
	service := leasequery.NewService(store)
	service.Filter = filter

	root, err := buildRoot(doc)
	if err != nil {
		return nil, err
	}

	dispatcher := server.NewDispatcher(serverID, doc.Server.AllowRapidCommit, root, requireMulticastFunc(doc))
	dispatcher.CleanupHandlers = append(dispatcher.CleanupHandlers, service.QueryHandler(), service.ObserveHandler())
	dispatcher.BulkLeasequery = service.DispatchBulk

	allowFrom, err := parseCIDRList(doc.Leasequery.AllowFrom)
	if err != nil {
		return nil, err
	}

	servers := make([]*server.Server, 0, len(doc.Interfaces))
	for _, ifc := range doc.Interfaces {
		groups := []*net.IPAddr{}
		if ifc.Multicast {
			groups = append(groups, server.AllRelayAgentsAndServersAddr)
		}
		addr := ifc.Addr
		if addr == "" {
			addr = "[::]:547"
		}
		srv := server.NewServer(ifc.Name, addr, dispatcher)
		srv.ListenTCPAddr = doc.ListenTCP
		srv.MulticastGroups = groups
		srv.AllowedLeasequeryPeers = allowFrom
		servers = append(servers, srv)
	}

	return &Built{Dispatcher: dispatcher, Servers: servers, Store: store, AllowFrom: allowFrom}, nil
}

func openStore(spec string) (leasequery.Store, error) {
	if spec == "" || spec == "memory" || spec == ":memory:" {
		return leasequery.NewMemStore(), nil
	}
	return leasequery.OpenSQLStore(spec)
}

func buildOptionFilter(deny []string) leasequery.OptionFilter {
	if len(deny) == 0 {
		return leasequery.OptionFilter{}
	}
	set := make(map[uint16]bool, len(deny))
	for _, name := range deny {
		if code, ok := optionCodeByName(name); ok {
			set[code] = true
		}
	}
	return leasequery.OptionFilter{Deny: set}
}

func optionCodeByName(name string) (uint16, bool) {
	if n, err := strconv.ParseUint(name, 10, 16); err == nil {
		return uint16(n), true
	}
	new, ok := registry.Options.ByName(name)
	if !ok {
		return 0, false
	}
	return new().Code(), true
}

func requireMulticastFunc(doc *Document) func(codec.MessageType) bool {
	anyListenToSelf := false
	for _, ifc := range doc.Interfaces {
		if ifc.ListenToSelf {
			anyListenToSelf = true
		}
	}
	return func(mt codec.MessageType) bool {
		if anyListenToSelf {
			return false
		}
		switch mt {
		case codec.MessageTypeSolicit, codec.MessageTypeConfirm, codec.MessageTypeRebind:
			return true
		default:
			return false
		}
	}
}

func parseCIDRList(cidrs []string) ([]*net.IPNet, error) {
	out := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			return nil, fmt.Errorf("config: invalid leasequery allow_from entry %q: %w", c, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// buildRoot walks doc.Filters and doc.Options into a server.MessageHandler
// tree, resolving each FilterSection/OptionSection through the process-wide
// server.FilterFactories/server.HandlerFactories tables.
func buildRoot(doc *Document) (*server.MessageHandler, error) {
	root := &server.MessageHandler{}
	for _, opt := range doc.Options {
		h, err := buildHandler(opt)
		if err != nil {
			return nil, err
		}
		root.Handlers = append(root.Handlers, h)
	}
	for _, f := range doc.Filters {
		built, err := buildFilter(f)
		if err != nil {
			return nil, err
		}
		root.Filters = append(root.Filters, built)
	}
	return root, nil
}

func buildFilter(sec FilterSection) (*server.Filter, error) {
	factory, ok := server.FilterFactories.ByName(sec.Condition)
	if !ok {
		return nil, fmt.Errorf("config: unknown filter condition %q", sec.Condition)
	}
	condition, err := factory()(sec.Config)
	if err != nil {
		return nil, fmt.Errorf("config: building filter %q: %w", sec.Condition, err)
	}

	f := &server.Filter{Condition: condition}
	for _, opt := range sec.Options {
		h, err := buildHandler(opt)
		if err != nil {
			return nil, err
		}
		f.Handlers = append(f.Handlers, h)
	}
	for _, nested := range sec.Filters {
		built, err := buildFilter(nested)
		if err != nil {
			return nil, err
		}
		f.Filters = append(f.Filters, built)
	}
	return f, nil
}

func buildHandler(sec OptionSection) (server.Handler, error) {
	factory, ok := server.HandlerFactories.ByName(sec.Name)
	if !ok {
		return nil, fmt.Errorf("config: unknown option handler %q", sec.Name)
	}
	h, err := factory()(sec.Config)
	if err != nil {
		return nil, fmt.Errorf("config: building option %q: %w", sec.Name, err)
	}
	return h, nil
}

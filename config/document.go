// Package config loads the hierarchical declarative configuration document
// and builds the running server's Dispatcher, per-interface listeners, and
// leasequery service from it. The document is JSON, reloaded on SIGHUP or
// inotify change via fsnotify.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Document is the top-level configuration document.
type Document struct {
	Server     ServerSection      `json:"server"`
	Logging    LoggingSection     `json:"logging"`
	Interfaces []InterfaceSection `json:"interfaces"`
	Options    []OptionSection    `json:"options"`
	Filters    []FilterSection    `json:"filters"`
	ListenTCP  string             `json:"listen_tcp"`
	Leasequery LeasequerySection  `json:"leasequery"`
	Statistics StatisticsSection  `json:"statistics"`
}

// ServerSection is `server { duid, user, group, threads, exception-window,
// max-exceptions, allow-rapid-commit }`.
type ServerSection struct {
	DUID             string `json:"duid"`
	User             string `json:"user"`
	Group            string `json:"group"`
	Threads          int    `json:"threads"`
	ExceptionWindow  string `json:"exception_window"`
	MaxExceptions    int    `json:"max_exceptions"`
	AllowRapidCommit bool   `json:"allow_rapid_commit"`
}

// LoggingSection is `logging { facility, handlers[] }`.
type LoggingSection struct {
	Facility string   `json:"facility"`
	Handlers []string `json:"handlers"`
}

// InterfaceSection is one `interface <name> { ... }` block.
type InterfaceSection struct {
	Name               string `json:"name"`
	Addr               string `json:"addr"`
	Multicast          bool   `json:"multicast"`
	ListenToSelf       bool   `json:"listen_to_self"`
	LinkLocalAddresses string `json:"link_local_addresses"` // auto|all|list
	GlobalAddresses    string `json:"global_addresses"`     // auto|all|list
}

// OptionSection is one `option <name> { ... }` block; Name selects the
// registered server.HandlerFactory and Config is passed through verbatim.
type OptionSection struct {
	Name   string                 `json:"name"`
	Config map[string]interface{} `json:"config"`
}

// FilterSection is one `filter <condition> { nested }` block: Condition
// selects the registered server.FilterFactory, Config configures it,
// Filters nests sub-filters, and Options lists the option handlers gated
// by this filter, each built from its own Name and Config exactly like a
// top-level OptionSection.
type FilterSection struct {
	Condition string                 `json:"condition"`
	Config    map[string]interface{} `json:"config"`
	Filters   []FilterSection        `json:"filters"`
	Options   []OptionSection        `json:"options"`
}

// LeasequerySection is `leasequery { store, allow-from, sensitive-options }`.
type LeasequerySection struct {
	Store            string   `json:"store"` // sqlite file path, or "memory"
	AllowFrom        []string `json:"allow_from"`
	SensitiveOptions []string `json:"sensitive_options"` // deny-listed option names/codes
}

// StatisticsSection is `statistics { interfaces, subnets, relays }`.
type StatisticsSection struct {
	Interfaces bool `json:"interfaces"`
	Subnets    bool `json:"subnets"`
	Relays     bool `json:"relays"`
}

// Load reads and parses the configuration document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &doc, nil
}

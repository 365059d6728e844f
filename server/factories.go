package server

import (
	"net"
	"time"

	"github.com/dhcp6kit/dhcp6d/registry"
)

// HandlerFactory constructs a Handler from an `option <name> { ... }`
// configuration section.
type HandlerFactory func(config map[string]interface{}) (Handler, error)

// FilterFactory constructs a FilterCondition from a `filter <condition>
// { nested }` configuration section.
type FilterFactory func(config map[string]interface{}) (FilterCondition, error)

// HandlerFactories is the process-wide registry of handler factories,
// keyed by the configuration section name. Handler and filter factories
// have no meaningful numeric wire code, so registration assigns one from
// an internal sequence purely to satisfy Table's two-way mapping; only
// ByName lookups are used for these two tables.
var HandlerFactories = registry.NewTable[HandlerFactory]()

// FilterFactories is the process-wide registry of filter-condition
// factories, keyed by the filter condition's configuration keyword.
var FilterFactories = registry.NewTable[FilterFactory]()

var nextFactoryCode uint16

func registerHandlerFactory(name string, f HandlerFactory) {
	nextFactoryCode++
	HandlerFactories.Register(nextFactoryCode, name, func() HandlerFactory { return f })
}

func registerFilterFactory(name string, f FilterFactory) {
	nextFactoryCode++
	FilterFactories.Register(nextFactoryCode, name, func() FilterFactory { return f })
}

func init() {
	registerFilterFactory("marked-with", func(cfg map[string]interface{}) (FilterCondition, error) {
		tag, _ := cfg["tag"].(string)
		return MarkedWith{Tag: tag}, nil
	})
	registerFilterFactory("subnet", func(cfg map[string]interface{}) (FilterCondition, error) {
		raw, _ := cfg["prefixes"].([]interface{})
		nets := make([]*net.IPNet, 0, len(raw))
		for _, r := range raw {
			s, _ := r.(string)
			_, n, err := net.ParseCIDR(s)
			if err != nil {
				return nil, err
			}
			nets = append(nets, n)
		}
		return Subnet{Prefixes: nets}, nil
	})
	registerFilterFactory("elapsed-time", func(cfg map[string]interface{}) (FilterCondition, error) {
		et := ElapsedTime{}
		if s, ok := cfg["more-than"].(string); ok && s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return nil, err
			}
			et.MoreThan = &d
		}
		if s, ok := cfg["less-than"].(string); ok && s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return nil, err
			}
			et.LessThan = &d
		}
		return et, nil
	})
}

package server

import (
	"net"
	"time"

	"github.com/dhcp6kit/dhcp6d/codec"
)

// FilterCondition is one of the closed set of conditions a Filter may test
// against a Bundle.
type FilterCondition interface {
	Match(b *Bundle) bool
}

// MarkedWith matches bundles carrying the given mark, set by an earlier
// handler's AddMark.
type MarkedWith struct{ Tag string }

func (c MarkedWith) Match(b *Bundle) bool { return b.HasMark(c.Tag) }

// Subnet matches bundles whose LinkAddress falls within any of Prefixes.
type Subnet struct{ Prefixes []*net.IPNet }

func (c Subnet) Match(b *Bundle) bool {
	addr := b.LinkAddress()
	for _, p := range c.Prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// ElapsedTime matches bundles whose client ElapsedTimeOption duration falls
// within [MoreThan, LessThan]; either bound may be nil to leave it open. A
// request with no ElapsedTimeOption never matches.
type ElapsedTime struct {
	MoreThan *time.Duration
	LessThan *time.Duration
}

func (c ElapsedTime) Match(b *Bundle) bool {
	if b.Request == nil {
		return false
	}
	opt := b.Request.GetOption(codec.ClassElapsedTimeOption)
	et, ok := opt.(*codec.ElapsedTimeOption)
	if !ok {
		return false
	}
	d := et.Duration()
	if c.MoreThan != nil && d < *c.MoreThan {
		return false
	}
	if c.LessThan != nil && d > *c.LessThan {
		return false
	}
	return true
}

// Filter holds a condition plus the sub-filters and handlers it gates,
// forming the handler-selection graph.
type Filter struct {
	Condition FilterCondition
	Filters   []*Filter
	Handlers  []Handler
}

func (f *Filter) selectHandlers(b *Bundle) []Handler {
	if f.Condition != nil && !f.Condition.Match(b) {
		return nil
	}
	var out []Handler
	for _, sub := range f.Filters {
		out = append(out, sub.selectHandlers(b)...)
	}
	out = append(out, f.Handlers...)
	return out
}

// MessageHandler is the root of the filter/handler graph: a bare list of
// sub-filters and a list of unconditional handlers.
type MessageHandler struct {
	Filters  []*Filter
	Handlers []Handler
}

// SelectHandlers evaluates each root sub-filter in order; for each matching
// sub-filter it recursively collects that sub-filter's handlers
// (depth-first, most-specific-filter-first), then appends the root's own
// handlers, so more-specific filters contribute earlier-running handlers
// and generic defaults run last.
func (m *MessageHandler) SelectHandlers(b *Bundle) []Handler {
	var out []Handler
	for _, f := range m.Filters {
		out = append(out, f.selectHandlers(b)...)
	}
	out = append(out, m.Handlers...)
	return out
}

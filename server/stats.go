package server

import "sync/atomic"

// Stats holds the process-wide dispatcher counters, including the
// short-circuit error counts, exported via Export for the statistics
// configuration section.
type Stats struct {
	incoming         atomic.Uint64
	outgoing         atomic.Uint64
	unparsable       atomic.Uint64
	doNotRespond     atomic.Uint64
	forOtherServer   atomic.Uint64
	useMulticast     atomic.Uint64
	unknownQueryType atomic.Uint64
	malformedQuery   atomic.Uint64
	notAllowed       atomic.Uint64
	replied          atomic.Uint64
	errored          atomic.Uint64
}

// StatsSnapshot is the point-in-time view returned by Stats.Export.
type StatsSnapshot struct {
	Incoming         uint64
	Outgoing         uint64
	Unparsable       uint64
	DoNotRespond     uint64
	ForOtherServer   uint64
	UseMulticast     uint64
	UnknownQueryType uint64
	MalformedQuery   uint64
	NotAllowed       uint64
	Replied          uint64
	Errored          uint64
}

// Export takes an atomic snapshot of every counter.
func (s *Stats) Export() StatsSnapshot {
	return StatsSnapshot{
		Incoming:         s.incoming.Load(),
		Outgoing:         s.outgoing.Load(),
		Unparsable:       s.unparsable.Load(),
		DoNotRespond:     s.doNotRespond.Load(),
		ForOtherServer:   s.forOtherServer.Load(),
		UseMulticast:     s.useMulticast.Load(),
		UnknownQueryType: s.unknownQueryType.Load(),
		MalformedQuery:   s.malformedQuery.Load(),
		NotAllowed:       s.notAllowed.Load(),
		Replied:          s.replied.Load(),
		Errored:          s.errored.Load(),
	}
}

package server

import (
	"net"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/ipv6"

	"github.com/dhcp6kit/dhcp6d/codec"
)

var (
	// AllRelayAgentsAndServersAddr is the multicast group used to reach
	// neighboring on-link servers and relay agents, per RFC 3315 §5.1.
	AllRelayAgentsAndServersAddr = &net.IPAddr{IP: net.ParseIP("ff02::1:2")}

	// AllServersAddr is the multicast group a relay agent uses to reach
	// every server when it does not know a server's unicast address.
	AllServersAddr = &net.IPAddr{IP: net.ParseIP("ff05::1:3")}
)

// Server binds a UDP6 socket (and, when configured, a TCP6 listener for
// bulk leasequery) on one interface and drives every datagram through a
// Dispatcher.
type Server struct {
	Iface           string
	Addr            string
	ListenTCPAddr   string
	MulticastGroups []*net.IPAddr

	// AllowedLeasequeryPeers restricts which source addresses may issue
	// Leasequery requests, configured by the `leasequery { allow-from }`
	// block. A nil/empty list allows any peer.
	AllowedLeasequeryPeers []*net.IPNet

	mu         sync.RWMutex
	dispatcher *Dispatcher

	ifIndex int
}

// NewServer constructs a Server dispatching through the given Dispatcher.
func NewServer(iface, addr string, dispatcher *Dispatcher) *Server {
	return &Server{Iface: iface, Addr: addr, dispatcher: dispatcher}
}

// Dispatcher returns the Dispatcher currently in effect.
func (s *Server) Dispatcher() *Dispatcher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dispatcher
}

// SetDispatcher atomically swaps in a newly built filter/handler graph,
// letting a SIGHUP reload configuration under a write-lock without
// interrupting in-flight dispatch.
func (s *Server) SetDispatcher(d *Dispatcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatcher = d
}

func (s *Server) leasequeryPeerAllowed(addr net.IP) bool {
	if len(s.AllowedLeasequeryPeers) == 0 {
		return true
	}
	for _, n := range s.AllowedLeasequeryPeers {
		if n.Contains(addr) {
			return true
		}
	}
	return false
}

// ListenAndServe resolves Iface, binds the UDP6 socket, joins the
// configured multicast groups, and serves until Serve returns an error.
func (s *Server) ListenAndServe() error {
	iface, err := net.InterfaceByName(s.Iface)
	if err != nil {
		return err
	}

	conn, err := net.ListenPacket("udp6", s.Addr)
	if err != nil {
		return err
	}

	p := ipv6.NewPacketConn(conn)
	defer func() {
		for _, g := range s.MulticastGroups {
			_ = p.LeaveGroup(iface, g)
		}
		_ = conn.Close()
	}()

	if err := p.SetControlMessage(ipv6.FlagInterface, true); err != nil {
		return err
	}
	for _, g := range s.MulticastGroups {
		if err := p.JoinGroup(iface, g); err != nil {
			return err
		}
	}

	s.ifIndex = iface.Index

	if s.ListenTCPAddr != "" {
		go s.serveTCP()
	}

	return s.Serve(p)
}

// Serve reads datagrams from p until it errors, spawning a goroutine per
// request so a slow handler (e.g. a leasequery DB round-trip) never blocks
// the read loop.
func (s *Server) Serve(p *ipv6.PacketConn) error {
	defer p.Close()

	buf := make([]byte, 1500)
	for {
		n, cm, addr, err := p.ReadFrom(buf)
		if err != nil {
			return err
		}
		if cm != nil && cm.IfIndex != s.ifIndex {
			continue
		}

		req := make([]byte, n)
		copy(req, buf[:n])
		udpAddr := addr.(*net.UDPAddr)
		multicast := udpAddr.IP.IsMulticast()

		go s.handleDatagram(p, udpAddr, req, multicast, false)
	}
}

func (s *Server) handleDatagram(w udpWriter, addr *net.UDPAddr, data []byte, multicast, tcp bool) {
	d := s.Dispatcher()
	d.Stats.incoming.Add(1)

	msg, err := codec.DecodeMessage(data)
	if err != nil {
		d.Stats.unparsable.Add(1)
		glog.V(2).Infof("dhcp6d: discarding malformed datagram from %s: %v", addr, err)
		return
	}

	bundle := NewBundle(msg, multicast, tcp)
	if bundle.Request != nil && bundle.Request.MessageType == codec.MessageTypeLeasequery && !s.leasequeryPeerAllowed(addr.IP) {
		d.Stats.notAllowed.Add(1)
		glog.V(2).Infof("dhcp6d: rejecting leasequery from disallowed peer %s", addr)
		return
	}

	reply, err := d.Dispatch(bundle)
	if err != nil {
		glog.Warningf("dhcp6d: dispatch error for %s: %v", addr, err)
		return
	}
	if reply == nil {
		return
	}

	out, err := reply.Save()
	if err != nil {
		glog.Warningf("dhcp6d: failed to encode reply for %s: %v", addr, err)
		return
	}
	if _, err := w.WriteTo(out, nil, addr); err != nil {
		glog.Warningf("dhcp6d: failed to send reply to %s: %v", addr, err)
		return
	}
	d.Stats.outgoing.Add(1)
}

// udpWriter is the subset of ipv6.PacketConn handleDatagram needs, so tests
// can substitute an in-memory fake without opening a real socket.
type udpWriter interface {
	WriteTo([]byte, *ipv6.ControlMessage, net.Addr) (int, error)
}

// serveTCP accepts bulk-leasequery connections on ListenTCPAddr. Each
// connection is framed with a 2-byte big-endian length prefix, per RFC
// 5460 Section 5.3.
func (s *Server) serveTCP() {
	ln, err := net.Listen("tcp6", s.ListenTCPAddr)
	if err != nil {
		glog.Errorf("dhcp6d: bulk leasequery listener failed: %v", err)
		return
	}
	defer ln.Close()

	for {
		conn, err := ln.Accept()
		if err != nil {
			glog.Warningf("dhcp6d: bulk leasequery accept error: %v", err)
			return
		}
		go s.serveTCPConn(conn)
	}
}

func (s *Server) serveTCPConn(conn net.Conn) {
	defer conn.Close()

	peer, _, _ := net.SplitHostPort(conn.RemoteAddr().String())
	peerIP := net.ParseIP(peer)

	frames := newFrameReader(conn)
	for {
		data, err := frames.Next()
		if err != nil {
			return
		}
		d := s.Dispatcher()
		d.Stats.incoming.Add(1)
		msg, err := codec.DecodeMessage(data)
		if err != nil {
			d.Stats.unparsable.Add(1)
			glog.V(2).Infof("dhcp6d: discarding malformed bulk leasequery frame: %v", err)
			return
		}
		bundle := NewBundle(msg, false, true)
		if bundle.Request != nil && bundle.Request.MessageType == codec.MessageTypeLeasequery && !s.leasequeryPeerAllowed(peerIP) {
			d.Stats.notAllowed.Add(1)
			glog.V(2).Infof("dhcp6d: rejecting leasequery from disallowed peer %s", peer)
			return
		}

		var replies []codec.Message
		if IsBulkQuery(bundle.Request) {
			replies, err = d.DispatchBulk(bundle)
		} else {
			var single codec.Message
			single, err = d.Dispatch(bundle)
			if single != nil {
				replies = []codec.Message{single}
			}
		}
		if err != nil {
			glog.Warningf("dhcp6d: bulk leasequery dispatch error: %v", err)
			return
		}
		for _, reply := range replies {
			out, err := reply.Save()
			if err != nil {
				return
			}
			if err := writeFrame(conn, out); err != nil {
				return
			}
			d.Stats.outgoing.Add(1)
		}
	}
}

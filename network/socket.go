package network

import (
	"github.com/flowpace/flowpace/sim/hooking"
	"github.com/flowpace/flowpace/transport"
)

// SocketKind selects the protocol of a socket.
type SocketKind int

// Socket kinds.
const (
	Stream SocketKind = iota
	Datagram
)

// Protocol returns the protocol number that the kind puts on the wire.
func (k SocketKind) Protocol() transport.Protocol {
	if k == Stream {
		return transport.ProtocolTCP
	}

	return transport.ProtocolUDP
}

// HookPosCwndChange is triggered when the congestion window of a stream
// socket changes. The detail is a CwndChange.
var HookPosCwndChange = &hooking.HookPos{Name: "CongestionWindow"}

// CwndChange carries the old and new congestion window in bytes.
type CwndChange struct {
	Old uint32
	New uint32
}

const initialSSThresh = 65535

// A Socket is a transport endpoint on a node. Stream sockets keep a
// congestion window trace that grows with every delivered packet and halves
// on every lost one. The window is only traced; it never holds packets back.
type Socket struct {
	hooking.HookableBase

	node  *Node
	kind  SocketKind
	local transport.Address
	peer  transport.Address

	bound     bool
	connected bool
	closed    bool

	segmentSize uint32
	cwnd        uint32
	ssthresh    uint32
	inFlight    map[string]bool
}

// CreateSocket creates an unbound socket on node n.
func CreateSocket(n *Node, kind SocketKind) *Socket {
	return &Socket{
		node:     n,
		kind:     kind,
		ssthresh: initialSSThresh,
		inFlight: make(map[string]bool),
	}
}

// Kind returns the kind of the socket.
func (s *Socket) Kind() SocketKind {
	return s.kind
}

// LocalAddress returns the bound address.
func (s *Socket) LocalAddress() transport.Address {
	return s.local
}

// Cwnd returns the congestion window in bytes.
func (s *Socket) Cwnd() uint32 {
	return s.cwnd
}

// Bind assigns an ephemeral local port.
func (s *Socket) Bind() error {
	if s.closed {
		return transport.ErrClosed
	}

	if s.bound {
		return nil
	}

	port := s.node.allocatePort(s.kind.Protocol())
	s.local = transport.Address{IP: s.node.ip, Port: port}
	s.bound = true

	return nil
}

// Connect sets the peer. It binds the socket first if needed.
func (s *Socket) Connect(peer transport.Address) error {
	if err := s.Bind(); err != nil {
		return err
	}

	s.peer = peer
	s.connected = true

	return nil
}

// Send hands the packet to the device of the node.
func (s *Socket) Send(pkt *transport.Packet) error {
	if s.closed {
		return transport.ErrClosed
	}

	if !s.connected {
		return transport.ErrNotConnected
	}

	pkt.Src = s.local
	pkt.Dst = s.peer
	pkt.Proto = s.kind.Protocol()

	if s.kind == Stream {
		s.track(pkt)
	}

	s.node.device.Send(pkt)

	return nil
}

// Close shuts the socket. Closing twice does nothing.
func (s *Socket) Close() error {
	s.closed = true
	s.connected = false

	return nil
}

func (s *Socket) track(pkt *transport.Packet) {
	if s.segmentSize == 0 {
		s.segmentSize = uint32(pkt.Size)
		s.setCwnd(s.segmentSize)
	}

	s.inFlight[pkt.ID] = true
}

// Observe registers the socket on a device so that it learns about the fate
// of its own packets.
func (s *Socket) Observe(d *Device) {
	d.AcceptHook(s)
}

// Func reacts to deliveries and drops of the socket's packets.
func (s *Socket) Func(ctx hooking.HookCtx) {
	pkt, ok := ctx.Item.(*transport.Packet)
	if !ok || !s.inFlight[pkt.ID] {
		return
	}

	switch ctx.Pos {
	case HookPosDeviceRx:
		delete(s.inFlight, pkt.ID)
		s.onDelivered()
	case HookPosPhyRxDrop, HookPosQueueDrop:
		delete(s.inFlight, pkt.ID)
		s.onLost()
	}
}

func (s *Socket) onDelivered() {
	if s.cwnd < s.ssthresh {
		s.setCwnd(s.cwnd + s.segmentSize)
		return
	}

	inc := s.segmentSize * s.segmentSize / s.cwnd
	if inc == 0 {
		inc = 1
	}

	s.setCwnd(s.cwnd + inc)
}

func (s *Socket) onLost() {
	half := s.cwnd / 2
	if half < s.segmentSize {
		half = s.segmentSize
	}

	s.ssthresh = half
	s.setCwnd(half)
}

func (s *Socket) setCwnd(cwnd uint32) {
	old := s.cwnd
	if old == cwnd {
		return
	}

	s.cwnd = cwnd
	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    HookPosCwndChange,
		Detail: CwndChange{Old: old, New: cwnd},
	})
}

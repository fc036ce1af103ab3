package network

import (
	"github.com/flowpace/flowpace/transport"
)

// A PacketSink is a receiving application that counts what arrives on one
// port.
type PacketSink struct {
	name  string
	local transport.Address
	proto transport.Protocol

	RxBytes   uint64
	RxPackets uint64
}

// InstallSink creates a sink on node n listening on port.
func InstallSink(
	name string,
	n *Node,
	proto transport.Protocol,
	port uint16,
) (*PacketSink, error) {
	s := &PacketSink{
		name:  name,
		local: transport.Address{IP: n.ip, Port: port},
		proto: proto,
	}

	if err := n.Listen(proto, port, s); err != nil {
		return nil, err
	}

	return s, nil
}

// Name returns the name of the sink.
func (s *PacketSink) Name() string {
	return s.name
}

// Address returns the address the sink listens on.
func (s *PacketSink) Address() transport.Address {
	return s.local
}

// Receive counts the packet.
func (s *PacketSink) Receive(pkt *transport.Packet) {
	s.RxPackets++
	s.RxBytes += uint64(pkt.Size)
}

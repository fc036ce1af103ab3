package network

import (
	"fmt"
	"net/netip"

	"github.com/flowpace/flowpace/transport"
)

const firstEphemeralPort = 49153

type demuxKey struct {
	proto transport.Protocol
	port  uint16
}

// A Receiver consumes packets addressed to a local port.
type Receiver interface {
	Receive(pkt *transport.Packet)
}

// A Node owns one address and one device and demultiplexes arriving packets
// to local receivers by protocol and port.
type Node struct {
	name      string
	ip        netip.Addr
	device    *Device
	receivers map[demuxKey]Receiver
	nextPort  uint16

	// Unclaimed counts packets that arrived for a port nobody listens on.
	Unclaimed uint64
}

// NewNode creates a node with the given address.
func NewNode(name string, ip netip.Addr) *Node {
	return &Node{
		name:      name,
		ip:        ip,
		receivers: make(map[demuxKey]Receiver),
		nextPort:  firstEphemeralPort,
	}
}

// Name returns the name of the node.
func (n *Node) Name() string {
	return n.name
}

// IP returns the address of the node.
func (n *Node) IP() netip.Addr {
	return n.ip
}

// Device returns the device attached to the node, if any.
func (n *Node) Device() *Device {
	return n.device
}

// Listen registers r for packets of proto addressed to port.
func (n *Node) Listen(proto transport.Protocol, port uint16, r Receiver) error {
	key := demuxKey{proto: proto, port: port}
	if _, taken := n.receivers[key]; taken {
		return fmt.Errorf("%s port %d on %s is in use", proto, port, n.name)
	}

	n.receivers[key] = r

	return nil
}

func (n *Node) unlisten(proto transport.Protocol, port uint16) {
	delete(n.receivers, demuxKey{proto: proto, port: port})
}

func (n *Node) allocatePort(proto transport.Protocol) uint16 {
	for {
		port := n.nextPort
		n.nextPort++

		if _, taken := n.receivers[demuxKey{proto: proto, port: port}]; !taken {
			return port
		}
	}
}

func (n *Node) deliver(pkt *transport.Packet) {
	r, found := n.receivers[demuxKey{proto: pkt.Proto, port: pkt.Dst.Port}]
	if !found {
		n.Unclaimed++
		return
	}

	r.Receive(pkt)
}

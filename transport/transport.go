// Package transport defines what a traffic source needs from the endpoint it
// sends through.
package transport

import (
	"errors"
	"fmt"
	"net/netip"

	"github.com/flowpace/flowpace/sim/id"
)

var (
	// ErrNotConnected is returned when sending through an endpoint that has
	// no peer.
	ErrNotConnected = errors.New("endpoint is not connected")

	// ErrClosed is returned when using an endpoint after Close.
	ErrClosed = errors.New("endpoint is closed")
)

// Protocol numbers as carried in the IPv4 header.
type Protocol uint8

// Supported protocols.
const (
	ProtocolTCP Protocol = 6
	ProtocolUDP Protocol = 17
)

func (p Protocol) String() string {
	switch p {
	case ProtocolTCP:
		return "TCP"
	case ProtocolUDP:
		return "UDP"
	default:
		return fmt.Sprintf("proto(%d)", uint8(p))
	}
}

// Address is an IP address and a port.
type Address struct {
	IP   netip.Addr
	Port uint16
}

// MustParseAddress parses "ip:port" and panics on failure.
func MustParseAddress(s string) Address {
	ap := netip.MustParseAddrPort(s)

	return Address{IP: ap.Addr(), Port: ap.Port()}
}

func (a Address) String() string {
	return netip.AddrPortFrom(a.IP, a.Port).String()
}

// A Packet is an application payload of a fixed size on its way from Src to
// Dst.
type Packet struct {
	ID    string
	Size  int
	Src   Address
	Dst   Address
	Proto Protocol
}

// Header sizes, in bytes, added on top of the payload.
const (
	IPv4HeaderSize = 20
	UDPHeaderSize  = 8
	TCPHeaderSize  = 20
)

// NewPacket creates a packet of size bytes.
func NewPacket(size int) *Packet {
	return &Packet{
		ID:   id.Generate(),
		Size: size,
	}
}

// Endpoint is a transport socket. Send is fire-and-forget: a nil error only
// means the endpoint accepted the packet.
type Endpoint interface {
	Bind() error
	Connect(peer Address) error
	Send(pkt *Packet) error
	Close() error
}

// IPSize returns the size of the packet at the IP layer, headers included.
func (p *Packet) IPSize() int {
	size := p.Size + IPv4HeaderSize

	switch p.Proto {
	case ProtocolTCP:
		size += TCPHeaderSize
	case ProtocolUDP:
		size += UDPHeaderSize
	}

	return size
}

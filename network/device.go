// Package network simulates a point-to-point link between two nodes. It is
// the collaborator that carries generated traffic, drops packets and feeds
// the flow monitor and the recorders through hooks.
package network

import (
	"fmt"
	"log"

	"github.com/flowpace/flowpace/sim/hooking"
	"github.com/flowpace/flowpace/sim/timing"
	"github.com/flowpace/flowpace/transport"
)

// PPPHeaderSize is the framing added by the link to every IP packet.
const PPPHeaderSize = 2

var (
	// HookPosDeviceSend is triggered when a packet is handed to a device,
	// before the queue decides whether to keep it. The item is the
	// *transport.Packet.
	HookPosDeviceSend = &hooking.HookPos{Name: "DeviceSend"}

	// HookPosDeviceTx is triggered when a device starts transmitting a
	// packet.
	HookPosDeviceTx = &hooking.HookPos{Name: "DeviceTx"}

	// HookPosDeviceRx is triggered when a device accepts a packet from the
	// wire.
	HookPosDeviceRx = &hooking.HookPos{Name: "DeviceRx"}

	// HookPosPhyRxDrop is triggered when the receive error model corrupts a
	// packet.
	HookPosPhyRxDrop = &hooking.HookPos{Name: "PhyRxDrop"}

	// HookPosQueueDrop is triggered when the transmit queue is full.
	HookPosQueueDrop = &hooking.HookPos{Name: "QueueDrop"}
)

// A Device is one end of a point-to-point link. It serialises packets onto
// the wire at its data rate and hands them to its peer after the propagation
// delay.
type Device struct {
	hooking.HookableBase

	name       string
	engine     timing.EventScheduler
	dataRate   float64
	delay      timing.VTimeInSec
	queueSize  int
	errorModel ErrorModel

	node  *Node
	peer  *Device
	queue []*transport.Packet
	busy  bool

	TxPackets   uint64
	RxPackets   uint64
	DropPackets uint64
}

type txDoneEvent struct {
	*timing.EventBase
	pkt *transport.Packet
}

type rxEvent struct {
	*timing.EventBase
	pkt *transport.Packet
}

// Name returns the name of the device.
func (d *Device) Name() string {
	return d.name
}

// Node returns the node the device is attached to.
func (d *Device) Node() *Node {
	return d.node
}

// SetReceiveErrorModel installs the model that decides which received
// packets are corrupted.
func (d *Device) SetReceiveErrorModel(m ErrorModel) {
	d.errorModel = m
}

// QueueLen returns the number of packets waiting for the wire.
func (d *Device) QueueLen() int {
	return len(d.queue)
}

// Send puts the packet in the drop-tail queue. A full queue drops the packet
// silently.
func (d *Device) Send(pkt *transport.Packet) {
	if d.peer == nil {
		log.Panicf("device %s is not connected", d.name)
	}

	d.InvokeHook(hooking.HookCtx{
		Domain: d,
		Pos:    HookPosDeviceSend,
		Item:   pkt,
	})

	if !d.busy {
		d.transmit(pkt)
		return
	}

	if len(d.queue) >= d.queueSize {
		d.DropPackets++
		d.InvokeHook(hooking.HookCtx{
			Domain: d,
			Pos:    HookPosQueueDrop,
			Item:   pkt,
		})

		return
	}

	d.queue = append(d.queue, pkt)
}

func (d *Device) transmit(pkt *transport.Packet) {
	d.busy = true
	d.TxPackets++

	d.InvokeHook(hooking.HookCtx{
		Domain: d,
		Pos:    HookPosDeviceTx,
		Item:   pkt,
	})

	txTime := d.TransmissionTime(pkt)
	done := txDoneEvent{
		EventBase: timing.NewEventBase(d.engine.Now()+txTime, d),
		pkt:       pkt,
	}
	d.engine.Schedule(done)
}

// TransmissionTime returns how long the packet occupies the wire.
func (d *Device) TransmissionTime(pkt *transport.Packet) timing.VTimeInSec {
	bits := float64(8 * (pkt.IPSize() + PPPHeaderSize))

	return timing.VTimeInSec(bits / d.dataRate)
}

// Handle processes the events of the device.
func (d *Device) Handle(e timing.Event) error {
	switch e := e.(type) {
	case txDoneEvent:
		d.finishTransmission(e)
	case rxEvent:
		d.receive(e.pkt)
	default:
		return fmt.Errorf("device %s cannot handle %T", d.name, e)
	}

	return nil
}

func (d *Device) finishTransmission(e txDoneEvent) {
	arrival := rxEvent{
		EventBase: timing.NewEventBase(e.Time()+d.delay, d.peer),
		pkt:       e.pkt,
	}
	d.engine.Schedule(arrival)

	d.busy = false

	if len(d.queue) == 0 {
		return
	}

	next := d.queue[0]
	d.queue = d.queue[1:]
	d.transmit(next)
}

func (d *Device) receive(pkt *transport.Packet) {
	if d.errorModel != nil && d.errorModel.IsCorrupt(pkt) {
		d.DropPackets++
		d.InvokeHook(hooking.HookCtx{
			Domain: d,
			Pos:    HookPosPhyRxDrop,
			Item:   pkt,
		})

		return
	}

	d.RxPackets++
	d.InvokeHook(hooking.HookCtx{
		Domain: d,
		Pos:    HookPosDeviceRx,
		Item:   pkt,
	})

	d.node.deliver(pkt)
}

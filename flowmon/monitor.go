// Package flowmon classifies the packets seen on devices into flows and keeps
// per-flow counters.
package flowmon

import (
	"net/netip"
	"sync"

	"golang.org/x/exp/slices"

	"github.com/flowpace/flowpace/network"
	"github.com/flowpace/flowpace/sim/hooking"
	"github.com/flowpace/flowpace/sim/timing"
	"github.com/flowpace/flowpace/transport"
)

// FlowID identifies a flow. IDs start at 1 in the order flows are first seen.
type FlowID uint32

// FiveTuple is what makes two packets belong to the same flow.
type FiveTuple struct {
	SrcIP   netip.Addr
	DstIP   netip.Addr
	Proto   transport.Protocol
	SrcPort uint16
	DstPort uint16
}

// FlowStats holds the counters of one flow.
type FlowStats struct {
	TimeFirstTx timing.VTimeInSec
	TimeLastTx  timing.VTimeInSec
	TimeFirstRx timing.VTimeInSec
	TimeLastRx  timing.VTimeInSec
	DelaySum    timing.VTimeInSec

	TxBytes        uint64
	TxPackets      uint64
	RxBytes        uint64
	RxPackets      uint64
	LostPackets    uint64
	DroppedPackets uint64
}

type trackedPacket struct {
	flow   FlowID
	txTime timing.VTimeInSec
}

// Monitor is a hook that watches devices. Reads are safe from other
// goroutines; writes happen from the simulation goroutine.
type Monitor struct {
	lock sync.RWMutex

	timeTeller timing.TimeTeller
	maxDelay   timing.VTimeInSec

	ids      map[FiveTuple]FlowID
	tuples   map[FlowID]FiveTuple
	stats    map[FlowID]*FlowStats
	inFlight map[string]trackedPacket
}

// NewMonitor creates a Monitor that reads time from timeTeller.
func NewMonitor(timeTeller timing.TimeTeller) *Monitor {
	return &Monitor{
		timeTeller: timeTeller,
		maxDelay:   10,
		ids:        make(map[FiveTuple]FlowID),
		tuples:     make(map[FlowID]FiveTuple),
		stats:      make(map[FlowID]*FlowStats),
		inFlight:   make(map[string]trackedPacket),
	}
}

// WithMaxPerHopDelay sets how long a packet can be in flight before
// CheckForLostPackets counts it as lost.
func (m *Monitor) WithMaxPerHopDelay(d timing.VTimeInSec) *Monitor {
	m.maxDelay = d
	return m
}

// Install attaches the monitor to devices.
func (m *Monitor) Install(devices ...*network.Device) {
	for _, d := range devices {
		d.AcceptHook(m)
	}
}

// Func records the packet events of the devices.
func (m *Monitor) Func(ctx hooking.HookCtx) {
	pkt, ok := ctx.Item.(*transport.Packet)
	if !ok {
		return
	}

	switch ctx.Pos {
	case network.HookPosDeviceSend:
		m.recordTx(pkt)
	case network.HookPosDeviceRx:
		m.recordRx(pkt)
	case network.HookPosPhyRxDrop, network.HookPosQueueDrop:
		m.recordDrop(pkt)
	}
}

func (m *Monitor) recordTx(pkt *transport.Packet) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if _, seen := m.inFlight[pkt.ID]; seen {
		return
	}

	now := m.timeTeller.Now()
	flow := m.classify(pkt)
	st := m.stats[flow]

	if st.TxPackets == 0 {
		st.TimeFirstTx = now
	}

	st.TimeLastTx = now
	st.TxPackets++
	st.TxBytes += uint64(pkt.IPSize())

	m.inFlight[pkt.ID] = trackedPacket{flow: flow, txTime: now}
}

func (m *Monitor) recordRx(pkt *transport.Packet) {
	m.lock.Lock()
	defer m.lock.Unlock()

	tracked, found := m.inFlight[pkt.ID]
	if !found {
		return
	}

	delete(m.inFlight, pkt.ID)

	now := m.timeTeller.Now()
	st := m.stats[tracked.flow]

	if st.RxPackets == 0 {
		st.TimeFirstRx = now
	}

	st.TimeLastRx = now
	st.RxPackets++
	st.RxBytes += uint64(pkt.IPSize())
	st.DelaySum += now - tracked.txTime
}

func (m *Monitor) recordDrop(pkt *transport.Packet) {
	m.lock.Lock()
	defer m.lock.Unlock()

	tracked, found := m.inFlight[pkt.ID]
	if !found {
		return
	}

	delete(m.inFlight, pkt.ID)
	m.stats[tracked.flow].DroppedPackets++
	m.stats[tracked.flow].LostPackets++
}

func (m *Monitor) classify(pkt *transport.Packet) FlowID {
	tuple := FiveTuple{
		SrcIP:   pkt.Src.IP,
		DstIP:   pkt.Dst.IP,
		Proto:   pkt.Proto,
		SrcPort: pkt.Src.Port,
		DstPort: pkt.Dst.Port,
	}

	flow, found := m.ids[tuple]
	if found {
		return flow
	}

	flow = FlowID(len(m.ids) + 1)
	m.ids[tuple] = flow
	m.tuples[flow] = tuple
	m.stats[flow] = &FlowStats{}

	return flow
}

// CheckForLostPackets counts packets that have been in flight for longer
// than the maximum delay as lost.
func (m *Monitor) CheckForLostPackets() {
	m.lock.Lock()
	defer m.lock.Unlock()

	now := m.timeTeller.Now()
	for pktID, tracked := range m.inFlight {
		if now-tracked.txTime <= m.maxDelay {
			continue
		}

		m.stats[tracked.flow].LostPackets++
		delete(m.inFlight, pktID)
	}
}

// FlowStats returns a copy of the counters of every flow. Calling it does not
// change the monitor.
func (m *Monitor) FlowStats() map[FlowID]FlowStats {
	m.lock.RLock()
	defer m.lock.RUnlock()

	out := make(map[FlowID]FlowStats, len(m.stats))
	for id, st := range m.stats {
		out[id] = *st
	}

	return out
}

// FindFlow returns the five tuple of a flow.
func (m *Monitor) FindFlow(id FlowID) (FiveTuple, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	t, found := m.tuples[id]

	return t, found
}

// FlowIDs returns the IDs of all known flows in ascending order.
func (m *Monitor) FlowIDs() []FlowID {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return m.sortedIDs()
}

func (m *Monitor) sortedIDs() []FlowID {
	ids := make([]FlowID, 0, len(m.stats))
	for id := range m.stats {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}

// Package trafficgen provides a constant-bit-rate traffic source. A Generator
// writes packets of a fixed size to a transport endpoint, spacing them so
// that the long-run rate matches a target data rate.
package trafficgen

import (
	"errors"
	"log"

	"github.com/flowpace/flowpace/sim/timing"
	"github.com/flowpace/flowpace/transport"
)

var (
	// ErrInvalidConfig is returned when a generator is configured with
	// values it cannot pace with.
	ErrInvalidConfig = errors.New("invalid traffic generator configuration")

	// ErrNotBuilt is returned when starting a generator that did not come
	// from a Builder.
	ErrNotBuilt = errors.New("traffic generator is not built")
)

// sendEvent asks a generator to send its next packet.
type sendEvent struct {
	*timing.EventBase
}

// lifecycleEvent starts or stops a generator at an absolute time.
type lifecycleEvent struct {
	*timing.EventBase
	start bool
}

// A Generator sends packets at a constant bit rate. Each send schedules the
// next one relative to the time it happens, so the chain is self-clocked.
type Generator struct {
	name     string
	engine   timing.EventScheduler
	endpoint transport.Endpoint
	peer     transport.Address
	logger   *log.Logger

	packetSize int
	numPackets uint64
	dataRate   float64

	running      bool
	packetsSent  uint64
	sendFailures uint64
	pending      timing.Event
}

// Name returns the name of the generator.
func (g *Generator) Name() string {
	return g.name
}

// Interval returns the time between two consecutive sends.
func (g *Generator) Interval() timing.VTimeInSec {
	return Interval(g.packetSize, g.dataRate)
}

// Interval returns the time needed to put packetSize bytes on the wire at
// dataRate bits per second.
func Interval(packetSize int, dataRate float64) timing.VTimeInSec {
	return timing.VTimeInSec(8*float64(packetSize)) / dataRate
}

// PacketsSent returns the number of packets written to the endpoint since
// the last Start.
func (g *Generator) PacketsSent() uint64 {
	return g.packetsSent
}

// NumPackets returns the packet budget.
func (g *Generator) NumPackets() uint64 {
	return g.numPackets
}

// SendFailures returns the number of sends that the endpoint rejected.
func (g *Generator) SendFailures() uint64 {
	return g.sendFailures
}

// IsRunning tells whether the generator has been started and not stopped.
func (g *Generator) IsRunning() bool {
	return g.running
}

// HasPendingSend tells whether a follow-up send is scheduled.
func (g *Generator) HasPendingSend() bool {
	return g.pending != nil && g.engine.IsPending(g.pending)
}

// Start binds and connects the endpoint and sends the first packet
// immediately. Starting a running generator restarts its budget; the send
// that was scheduled is withdrawn.
func (g *Generator) Start() error {
	if g.engine == nil || g.endpoint == nil {
		return ErrNotBuilt
	}

	g.cancelPending()

	if err := g.endpoint.Bind(); err != nil {
		g.running = false
		return err
	}

	if err := g.endpoint.Connect(g.peer); err != nil {
		g.running = false
		return err
	}

	g.running = true
	g.packetsSent = 0

	g.logf("start, %d packets of %d bytes every %.6fs",
		g.numPackets, g.packetSize, g.Interval())

	g.sendPacket()

	return nil
}

// Stop cancels the pending send and closes the endpoint. Stopping twice, or
// stopping a generator that never started, does nothing harmful.
func (g *Generator) Stop() {
	wasRunning := g.running
	g.running = false

	g.cancelPending()

	if g.endpoint != nil {
		_ = g.endpoint.Close()
	}

	if wasRunning {
		g.logf("stop, %d packets sent", g.packetsSent)
	}
}

// Handle processes the events scheduled for the generator.
func (g *Generator) Handle(e timing.Event) error {
	switch e := e.(type) {
	case sendEvent:
		g.pending = nil

		if g.running {
			g.sendPacket()
		}
	case lifecycleEvent:
		if e.start {
			return g.Start()
		}

		g.Stop()
	default:
		log.Panicf("generator %s cannot handle %T", g.name, e)
	}

	return nil
}

// ScheduleLifecycle arranges for the generator to start at start and stop
// at stop, both absolute times.
func (g *Generator) ScheduleLifecycle(start, stop timing.VTimeInSec) {
	g.engine.Schedule(lifecycleEvent{
		EventBase: timing.NewEventBase(start, g),
		start:     true,
	})
	g.engine.Schedule(lifecycleEvent{
		EventBase: timing.NewEventBase(stop, g),
		start:     false,
	})
}

func (g *Generator) cancelPending() {
	if g.pending != nil && g.engine != nil && g.engine.IsPending(g.pending) {
		g.engine.Cancel(g.pending)
	}

	g.pending = nil
}

func (g *Generator) sendPacket() {
	pkt := transport.NewPacket(g.packetSize)

	if err := g.endpoint.Send(pkt); err != nil {
		g.sendFailures++
		g.logf("send failed: %v", err)
	}

	g.packetsSent++

	if g.packetsSent < g.numPackets {
		g.scheduleNext()
		return
	}

	g.logf("budget of %d packets used up", g.numPackets)
}

func (g *Generator) scheduleNext() {
	if !g.running {
		return
	}

	evt := sendEvent{
		EventBase: timing.NewEventBase(g.engine.Now()+g.Interval(), g),
	}
	g.engine.Schedule(evt)
	g.pending = evt
}

func (g *Generator) logf(format string, args ...interface{}) {
	if g.logger == nil {
		return
	}

	g.logger.Printf("%.10f, %s: "+format,
		append([]interface{}{g.engine.Now(), g.name}, args...)...)
}

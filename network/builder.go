package network

import (
	"errors"

	"github.com/flowpace/flowpace/sim/timing"
)

// A Link is a pair of connected devices.
type Link struct {
	A *Device
	B *Device
}

// Builder can build point-to-point links.
type Builder struct {
	engine    timing.EventScheduler
	dataRate  float64
	delay     timing.VTimeInSec
	queueSize int
}

// MakeBuilder returns a Builder with the defaults of the classic dumbbell
// lab setup: 1Mbps, 10ms, 100 packets of queue.
func MakeBuilder() Builder {
	return Builder{
		dataRate:  1e6,
		delay:     0.01,
		queueSize: 100,
	}
}

// WithEngine sets the engine that the devices schedule events on.
func (b Builder) WithEngine(engine timing.EventScheduler) Builder {
	b.engine = engine
	return b
}

// WithDataRate sets the rate of the link in bits per second.
func (b Builder) WithDataRate(bps float64) Builder {
	b.dataRate = bps
	return b
}

// WithDelay sets the propagation delay.
func (b Builder) WithDelay(delay timing.VTimeInSec) Builder {
	b.delay = delay
	return b
}

// WithQueueSize sets the number of packets each device can hold.
func (b Builder) WithQueueSize(n int) Builder {
	b.queueSize = n
	return b
}

// Build connects node a and node b.
func (b Builder) Build(name string, a, c *Node) (*Link, error) {
	if b.engine == nil {
		return nil, errors.New("link needs an engine")
	}

	if b.dataRate <= 0 {
		return nil, errors.New("link data rate must be positive")
	}

	if b.delay < 0 {
		return nil, errors.New("link delay cannot be negative")
	}

	devA := b.buildDevice(name+".A", a)
	devB := b.buildDevice(name+".B", c)
	devA.peer = devB
	devB.peer = devA

	return &Link{A: devA, B: devB}, nil
}

func (b Builder) buildDevice(name string, node *Node) *Device {
	d := &Device{
		name:      name,
		engine:    b.engine,
		dataRate:  b.dataRate,
		delay:     b.delay,
		queueSize: b.queueSize,
		node:      node,
	}
	node.device = d

	return d
}

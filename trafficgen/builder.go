package trafficgen

import (
	"fmt"
	"log"

	"github.com/flowpace/flowpace/sim/timing"
	"github.com/flowpace/flowpace/transport"
)

// A Builder can build traffic generators.
type Builder struct {
	engine     timing.EventScheduler
	endpoint   transport.Endpoint
	peer       transport.Address
	logger     *log.Logger
	packetSize int
	numPackets uint64
	dataRate   float64
}

// MakeBuilder returns a Builder with 512 byte packets at 500 kbps. The
// default budget is zero, which still sends one packet.
func MakeBuilder() Builder {
	return Builder{
		packetSize: 512,
		dataRate:   500e3,
	}
}

// WithEngine sets the scheduler that paces the generator.
func (b Builder) WithEngine(engine timing.EventScheduler) Builder {
	b.engine = engine
	return b
}

// WithEndpoint sets the endpoint that packets are written to. The generator
// owns the endpoint and closes it on Stop.
func (b Builder) WithEndpoint(endpoint transport.Endpoint) Builder {
	b.endpoint = endpoint
	return b
}

// WithPeer sets the destination address.
func (b Builder) WithPeer(peer transport.Address) Builder {
	b.peer = peer
	return b
}

// WithPacketSize sets the payload size in bytes.
func (b Builder) WithPacketSize(size int) Builder {
	b.packetSize = size
	return b
}

// WithNumPackets sets the packet budget.
func (b Builder) WithNumPackets(n uint64) Builder {
	b.numPackets = n
	return b
}

// WithDataRate sets the target rate in bits per second.
func (b Builder) WithDataRate(bps float64) Builder {
	b.dataRate = bps
	return b
}

// WithLogger makes the generator report its lifecycle.
func (b Builder) WithLogger(logger *log.Logger) Builder {
	b.logger = logger
	return b
}

// Build creates a generator.
func (b Builder) Build(name string) (*Generator, error) {
	if err := b.validate(); err != nil {
		return nil, fmt.Errorf("building %s: %w", name, err)
	}

	g := &Generator{
		name:       name,
		engine:     b.engine,
		endpoint:   b.endpoint,
		peer:       b.peer,
		logger:     b.logger,
		packetSize: b.packetSize,
		numPackets: b.numPackets,
		dataRate:   b.dataRate,
	}

	return g, nil
}

func (b Builder) validate() error {
	if b.engine == nil {
		return fmt.Errorf("%w: engine is not set", ErrInvalidConfig)
	}

	if b.endpoint == nil {
		return fmt.Errorf("%w: endpoint is not set", ErrInvalidConfig)
	}

	if b.packetSize <= 0 {
		return fmt.Errorf("%w: packet size %d", ErrInvalidConfig, b.packetSize)
	}

	if !(b.dataRate > 0) {
		return fmt.Errorf("%w: data rate %g", ErrInvalidConfig, b.dataRate)
	}

	return nil
}

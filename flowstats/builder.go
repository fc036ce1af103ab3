package flowstats

import (
	"errors"
	"fmt"

	"github.com/flowpace/flowpace/recording"
	"github.com/flowpace/flowpace/sim/timing"
)

// ErrInvalidConfig is returned when the sampler cannot be built from the
// given parameters.
var ErrInvalidConfig = errors.New("invalid sampler configuration")

// A Builder can build samplers.
type Builder struct {
	engine      timing.EventScheduler
	source      FlowStatsSource
	sink        recording.Sink
	cadence     timing.VTimeInSec
	snapshotter Snapshotter
	snapshot    string
	everyTick   bool
}

// MakeBuilder returns a Builder that samples every 100ms and snapshots on
// every tick once a snapshotter is given.
func MakeBuilder() Builder {
	return Builder{
		cadence:   0.1,
		snapshot:  "ThroughputMonitor.xml",
		everyTick: true,
	}
}

// WithEngine sets the engine that the sampler schedules its ticks on.
func (b Builder) WithEngine(engine timing.EventScheduler) Builder {
	b.engine = engine
	return b
}

// WithSource sets where the per-flow counters come from.
func (b Builder) WithSource(source FlowStatsSource) Builder {
	b.source = source
	return b
}

// WithSink sets where the samples go.
func (b Builder) WithSink(sink recording.Sink) Builder {
	b.sink = sink
	return b
}

// WithCadence sets the time between two ticks.
func (b Builder) WithCadence(cadence timing.VTimeInSec) Builder {
	b.cadence = cadence
	return b
}

// WithSnapshotter sets what is persisted on every tick.
func (b Builder) WithSnapshotter(s Snapshotter) Builder {
	b.snapshotter = s
	return b
}

// WithSnapshotPath sets the file that the per-tick snapshot overwrites.
func (b Builder) WithSnapshotPath(path string) Builder {
	b.snapshot = path
	return b
}

// WithSnapshotEveryTick turns the per-tick snapshot on or off. Samples are
// the same either way.
func (b Builder) WithSnapshotEveryTick(enabled bool) Builder {
	b.everyTick = enabled
	return b
}

// Build creates a sampler.
func (b Builder) Build(name string) (*Sampler, error) {
	switch {
	case b.engine == nil:
		return nil, fmt.Errorf("%w: %s has no engine", ErrInvalidConfig, name)
	case b.source == nil:
		return nil, fmt.Errorf("%w: %s has no source", ErrInvalidConfig, name)
	case b.sink == nil:
		return nil, fmt.Errorf("%w: %s has no sink", ErrInvalidConfig, name)
	case !(b.cadence > 0):
		return nil, fmt.Errorf("%w: %s has cadence %g",
			ErrInvalidConfig, name, b.cadence)
	}

	s := &Sampler{
		name:        name,
		engine:      b.engine,
		source:      b.source,
		sink:        b.sink,
		cadence:     b.cadence,
		snapshotter: b.snapshotter,
		snapshot:    b.snapshot,
		everyTick:   b.everyTick,
	}

	return s, nil
}

// Package flowstats periodically samples the total number of bytes received
// across all flows.
package flowstats

import (
	"fmt"
	"log"

	"github.com/flowpace/flowpace/flowmon"
	"github.com/flowpace/flowpace/recording"
	"github.com/flowpace/flowpace/sim/timing"
)

// FlowStatsSource provides the per-flow counters. Reading must not change
// them.
type FlowStatsSource interface {
	FlowStats() map[flowmon.FlowID]flowmon.FlowStats
}

// A Snapshotter can persist its full state to a file.
type Snapshotter interface {
	SerializeToXMLFile(path string) error
}

// Sample is one point of the sampled series.
type Sample struct {
	Time       timing.VTimeInSec
	TotalBytes uint64
}

// A Sampler fires at a fixed cadence. Every tick it sums the received bytes
// of all flows and appends (elapsed, total) to its sink. The elapsed time is
// kept by the sampler itself and starts at zero regardless of when the
// sampler starts.
type Sampler struct {
	name        string
	engine      timing.EventScheduler
	source      FlowStatsSource
	sink        recording.Sink
	cadence     timing.VTimeInSec
	snapshotter Snapshotter
	snapshot    string
	everyTick   bool

	elapsed timing.VTimeInSec
	total   uint64
	samples []Sample
	pending timing.Event
}

// Name returns the name of the sampler.
func (s *Sampler) Name() string {
	return s.name
}

// Cadence returns the time between two ticks.
func (s *Sampler) Cadence() timing.VTimeInSec {
	return s.cadence
}

// Samples returns the samples taken so far.
func (s *Sampler) Samples() []Sample {
	return s.samples
}

// TotalBytes returns the total of the last tick.
func (s *Sampler) TotalBytes() uint64 {
	return s.total
}

// Start fires the first tick at the current time.
func (s *Sampler) Start() error {
	return s.tick()
}

// Stop withdraws the pending tick.
func (s *Sampler) Stop() {
	if s.pending != nil && s.engine.IsPending(s.pending) {
		s.engine.Cancel(s.pending)
	}

	s.pending = nil
}

// Handle fires a tick.
func (s *Sampler) Handle(e timing.Event) error {
	switch e.(type) {
	case timing.TickEvent:
		s.pending = nil
		return s.tick()
	default:
		log.Panicf("sampler %s cannot handle %T", s.name, e)
	}

	return nil
}

func (s *Sampler) tick() error {
	stats := s.source.FlowStats()

	s.total = 0
	for _, st := range stats {
		s.total += st.RxBytes
	}

	if err := s.sink.Append(s.elapsed, float64(s.total)); err != nil {
		return fmt.Errorf("%s: recording sample: %w", s.name, err)
	}

	s.samples = append(s.samples, Sample{Time: s.elapsed, TotalBytes: s.total})
	s.elapsed += s.cadence

	evt := timing.MakeTickEvent(s, s.engine.Now()+s.cadence)
	s.engine.Schedule(evt)
	s.pending = evt

	if s.everyTick && s.snapshotter != nil {
		if err := s.snapshotter.SerializeToXMLFile(s.snapshot); err != nil {
			return fmt.Errorf("%s: writing snapshot: %w", s.name, err)
		}
	}

	return nil
}

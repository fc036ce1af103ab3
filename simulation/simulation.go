// Package simulation assembles a scenario into a runnable simulation and
// reports what happened.
package simulation

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/flowpace/flowpace/config"
	"github.com/flowpace/flowpace/datarecording"
	"github.com/flowpace/flowpace/flowmon"
	"github.com/flowpace/flowpace/flowstats"
	"github.com/flowpace/flowpace/monitoring"
	"github.com/flowpace/flowpace/network"
	"github.com/flowpace/flowpace/recording"
	"github.com/flowpace/flowpace/sim/timing"
	"github.com/flowpace/flowpace/trafficgen"
)

// Names of the flow statistics snapshots written into the output directory.
const (
	InitialSnapshotFile    = "FlowMonitor-Throughput.xml"
	ThroughputSnapshotFile = "ThroughputMonitor.xml"
	FinalSnapshotFile      = "lab-4.xml"
)

// A Component is anything in the simulation that can be looked up by name.
type Component interface {
	Name() string
}

// A Simulation owns every entity of one run.
type Simulation struct {
	id        string
	scenario  config.Scenario
	outputDir string

	engine      *timing.SerialEngine
	source      *network.Node
	sink        *network.Node
	link        *network.Link
	flows       *flowmon.Monitor
	generators  []*trafficgen.Generator
	packetSinks []*network.PacketSink
	sampler     *flowstats.Sampler

	bytesSink    recording.Sink
	dropSink     recording.Sink
	cwndSink     recording.Sink
	dropRecorder *recording.DropRecorder
	cwndRecorder *recording.CwndRecorder
	closers      []io.Closer
	files        []string

	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor

	components    []Component
	compNameIndex map[string]int

	terminated bool
}

// GeneratorReport summarizes one traffic generator.
type GeneratorReport struct {
	Name         string
	PacketsSent  uint64
	SendFailures uint64
	Received     uint64
}

// A RunReport summarizes a finished run.
type RunReport struct {
	ID         string
	Variant    string
	EndTime    timing.VTimeInSec
	Generators []GeneratorReport
	Samples    []flowstats.Sample
	Throughput flowstats.Summary
	Drops      uint64
	Flows      map[flowmon.FlowID]flowmon.FlowStats
	Files      []string
}

// ID returns the unique ID of the run.
func (s *Simulation) ID() string {
	return s.id
}

// Scenario returns the scenario being simulated.
func (s *Simulation) Scenario() config.Scenario {
	return s.scenario
}

// Engine returns the engine used in the simulation.
func (s *Simulation) Engine() timing.Engine {
	return s.engine
}

// FlowMonitor returns the flow monitor installed on the link.
func (s *Simulation) FlowMonitor() *flowmon.Monitor {
	return s.flows
}

// Generators returns the traffic generators in scenario order.
func (s *Simulation) Generators() []*trafficgen.Generator {
	return s.generators
}

// Sampler returns the throughput sampler.
func (s *Simulation) Sampler() *flowstats.Sampler {
	return s.sampler
}

// DataRecorder returns the SQLite recorder, or nil if not enabled.
func (s *Simulation) DataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// Monitor returns the monitor, or nil if not enabled.
func (s *Simulation) Monitor() *monitoring.Monitor {
	return s.monitor
}

// RegisterComponent registers a component with the simulation.
func (s *Simulation) RegisterComponent(c Component) {
	compName := c.Name()
	if _, found := s.compNameIndex[compName]; found {
		panic("component " + compName + " already registered")
	}

	s.components = append(s.components, c)
	s.compNameIndex[compName] = len(s.components) - 1
}

// Components returns all the components registered with the simulation.
func (s *Simulation) Components() []Component {
	return s.components
}

// GetComponentByName returns the component with the given name, or nil.
func (s *Simulation) GetComponentByName(name string) Component {
	index, found := s.compNameIndex[name]
	if !found {
		return nil
	}

	return s.components[index]
}

// Run runs the simulation until the stop time and writes the final flow
// statistics.
func (s *Simulation) Run() (RunReport, error) {
	if s.terminated {
		return RunReport{}, errors.New("simulation already terminated")
	}

	if err := s.sampler.Start(); err != nil {
		return RunReport{}, err
	}

	if err := s.snapshot(InitialSnapshotFile); err != nil {
		return RunReport{}, err
	}

	if err := s.engine.Run(); err != nil {
		return RunReport{}, err
	}

	s.flows.CheckForLostPackets()

	if err := s.snapshot(FinalSnapshotFile); err != nil {
		return RunReport{}, err
	}

	s.engine.Finished()

	if err := errors.Join(s.dropRecorder.Err(), s.cwndRecorder.Err()); err != nil {
		return RunReport{}, err
	}

	return s.report(), nil
}

func (s *Simulation) snapshot(file string) error {
	path := filepath.Join(s.outputDir, file)
	if err := s.flows.SerializeToXMLFile(path); err != nil {
		return fmt.Errorf("writing %s: %w", file, err)
	}

	s.files = append(s.files, path)

	return nil
}

func (s *Simulation) report() RunReport {
	r := RunReport{
		ID:         s.id,
		Variant:    s.scenario.Variant,
		EndTime:    s.engine.Now(),
		Samples:    s.sampler.Samples(),
		Throughput: flowstats.Summarize(s.sampler.Samples()),
		Drops:      s.dropRecorder.Drops(),
		Flows:      s.flows.FlowStats(),
		Files:      s.files,
	}

	for i, g := range s.generators {
		r.Generators = append(r.Generators, GeneratorReport{
			Name:         g.Name(),
			PacketsSent:  g.PacketsSent(),
			SendFailures: g.SendFailures(),
			Received:     s.packetSinks[i].RxPackets,
		})
	}

	return r
}

// Terminate flushes and closes every output and stops the monitoring server.
// It is safe to call more than once.
func (s *Simulation) Terminate() error {
	if s.terminated {
		return nil
	}

	s.terminated = true

	var errs []error

	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}

	if s.dataRecorder != nil {
		errs = append(errs, s.dataRecorder.Close())
	}

	if s.monitor != nil {
		errs = append(errs, s.monitor.StopServer())
	}

	return errors.Join(errs...)
}

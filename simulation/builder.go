package simulation

import (
	"fmt"
	"log"
	"net/netip"
	"os"
	"path/filepath"

	"github.com/flowpace/flowpace/config"
	"github.com/flowpace/flowpace/datarecording"
	"github.com/flowpace/flowpace/flowmon"
	"github.com/flowpace/flowpace/flowstats"
	"github.com/flowpace/flowpace/monitoring"
	"github.com/flowpace/flowpace/network"
	"github.com/flowpace/flowpace/recording"
	"github.com/flowpace/flowpace/sim/id"
	"github.com/flowpace/flowpace/sim/timing"
	"github.com/flowpace/flowpace/trafficgen"
	"github.com/flowpace/flowpace/transport"
)

// Builder can be used to build a simulation.
type Builder struct {
	scenario    config.Scenario
	outputDir   string
	sqliteOn    bool
	sqlitePath  string
	monitorOn   bool
	monitorPort int
	eventLogger *log.Logger
	verboseLog  *log.Logger
	runIDs      id.IDGenerator
}

// MakeBuilder creates a new builder that runs the default scenario and writes
// into the working directory.
func MakeBuilder() Builder {
	return Builder{
		scenario:  config.DefaultScenario(),
		outputDir: ".",
		runIDs:    id.NewParallelIDGenerator(),
	}
}

// WithRunIDGenerator sets where run IDs come from. Run IDs name the default
// database file, so the default generator keeps them unique across
// processes.
func (b Builder) WithRunIDGenerator(g id.IDGenerator) Builder {
	b.runIDs = g
	return b
}

// WithScenario sets what to simulate.
func (b Builder) WithScenario(s config.Scenario) Builder {
	b.scenario = s
	return b
}

// WithOutputDir sets the directory of the output files.
func (b Builder) WithOutputDir(dir string) Builder {
	b.outputDir = dir
	return b
}

// WithSQLite also records every series into a SQLite database. An empty path
// picks a name from the simulation ID.
func (b Builder) WithSQLite(path string) Builder {
	b.sqliteOn = true
	b.sqlitePath = path

	return b
}

// WithMonitoring serves the monitoring page while the simulation runs. Port 0
// picks a random port.
func (b Builder) WithMonitoring(port int) Builder {
	b.monitorOn = true
	b.monitorPort = port

	return b
}

// WithEventLogger prints every event before it is handled.
func (b Builder) WithEventLogger(logger *log.Logger) Builder {
	b.eventLogger = logger
	return b
}

// WithVerboseLogger makes the traffic generators report their lifecycle.
func (b Builder) WithVerboseLogger(logger *log.Logger) Builder {
	b.verboseLog = logger
	return b
}

// Build builds the simulation.
func (b Builder) Build() (*Simulation, error) {
	if err := b.scenario.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(b.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	s := &Simulation{
		id:            b.runIDs.Generate(),
		scenario:      b.scenario,
		outputDir:     b.outputDir,
		compNameIndex: make(map[string]int),
	}

	s.engine = timing.NewSerialEngine()
	s.engine.StopAt(b.scenario.StopTime)

	if b.eventLogger != nil {
		s.engine.AcceptHook(timing.NewEventLogger(b.eventLogger))
	}

	steps := []func(*Simulation) error{
		b.buildLink,
		b.buildSinks,
		b.buildApplications,
		b.buildSampler,
		b.buildMonitor,
	}

	for _, step := range steps {
		if err := step(s); err != nil {
			_ = s.Terminate()
			return nil, err
		}
	}

	return s, nil
}

func (b Builder) buildLink(s *Simulation) error {
	link := b.scenario.Link

	rate, err := trafficgen.ParseDataRate(link.DataRate)
	if err != nil {
		return err
	}

	s.source = network.NewNode("n0", netip.MustParseAddr(link.SourceIP))
	s.sink = network.NewNode("n1", netip.MustParseAddr(link.SinkIP))

	s.link, err = network.MakeBuilder().
		WithEngine(s.engine).
		WithDataRate(rate).
		WithDelay(link.Delay).
		WithQueueSize(link.QueueSize).
		Build("PointToPoint", s.source, s.sink)
	if err != nil {
		return err
	}

	if link.ErrorRate > 0 {
		s.link.B.SetReceiveErrorModel(
			network.NewRateErrorModel(link.Seed, link.ErrorRate))
	}

	s.flows = flowmon.NewMonitor(s.engine)
	s.flows.Install(s.link.A, s.link.B)

	s.RegisterComponent(s.source)
	s.RegisterComponent(s.sink)
	s.RegisterComponent(s.link.A)
	s.RegisterComponent(s.link.B)

	return nil
}

func (b Builder) buildSinks(s *Simulation) error {
	if b.sqliteOn {
		path := b.sqlitePath
		if path == "" {
			path = filepath.Join(b.outputDir, "flowpace_"+s.id)
		}

		recorder, err := datarecording.New(path)
		if err != nil {
			return err
		}

		s.dataRecorder = recorder
	}

	variant := b.scenario.Variant

	var err error

	s.bytesSink, err = b.openSink(s, "bytes", variant)
	if err != nil {
		return err
	}

	s.dropSink, err = b.openSink(s, "dropped", variant)
	if err != nil {
		return err
	}

	s.cwndSink, err = b.openSink(s, "cwnd", variant)
	if err != nil {
		return err
	}

	s.dropRecorder = recording.NewDropRecorder(s.engine, s.dropSink,
		network.HookPosPhyRxDrop)
	s.link.B.AcceptHook(s.dropRecorder)

	s.cwndRecorder = recording.NewCwndRecorder(s.engine, s.cwndSink)

	return nil
}

func (b Builder) openSink(
	s *Simulation,
	series, variant string,
) (recording.Sink, error) {
	path := filepath.Join(b.outputDir, series+"_"+variant+".txt")

	text, err := recording.NewTextSink(path)
	if err != nil {
		return nil, err
	}

	s.files = append(s.files, path)

	if s.dataRecorder == nil {
		s.closers = append(s.closers, text)
		return text, nil
	}

	table, err := recording.NewTableSink(s.dataRecorder, series)
	if err != nil {
		_ = text.Close()
		return nil, err
	}

	sink := recording.MultiSink{text, table}
	s.closers = append(s.closers, sink)

	return sink, nil
}

func (b Builder) buildApplications(s *Simulation) error {
	for _, app := range b.scenario.Applications {
		kind := network.Datagram
		if app.Kind == config.KindStream {
			kind = network.Stream
		}

		packetSink, err := network.InstallSink(
			app.Name+".Sink", s.sink, kind.Protocol(), app.Port)
		if err != nil {
			return err
		}

		socket := network.CreateSocket(s.source, kind)
		if kind == network.Stream {
			socket.Observe(s.link.A)
			socket.Observe(s.link.B)
			socket.AcceptHook(s.cwndRecorder)
		}

		rate, err := trafficgen.ParseDataRate(app.DataRate)
		if err != nil {
			return err
		}

		gen, err := trafficgen.MakeBuilder().
			WithEngine(s.engine).
			WithEndpoint(socket).
			WithPeer(transport.Address{IP: s.sink.IP(), Port: app.Port}).
			WithPacketSize(app.PacketSize).
			WithNumPackets(app.NumPackets).
			WithDataRate(rate).
			WithLogger(b.verboseLog).
			Build(app.Name)
		if err != nil {
			return err
		}

		gen.ScheduleLifecycle(app.Start, app.Stop)

		s.generators = append(s.generators, gen)
		s.packetSinks = append(s.packetSinks, packetSink)
		s.RegisterComponent(gen)
		s.RegisterComponent(packetSink)
	}

	return nil
}

func (b Builder) buildSampler(s *Simulation) error {
	sampler, err := flowstats.MakeBuilder().
		WithEngine(s.engine).
		WithSource(s.flows).
		WithSink(s.bytesSink).
		WithCadence(b.scenario.Sampler.Cadence).
		WithSnapshotter(s.flows).
		WithSnapshotPath(filepath.Join(b.outputDir, ThroughputSnapshotFile)).
		WithSnapshotEveryTick(b.scenario.Sampler.SnapshotEveryTick).
		Build("ThroughputMonitor")
	if err != nil {
		return err
	}

	s.sampler = sampler
	s.RegisterComponent(sampler)

	return nil
}

func (b Builder) buildMonitor(s *Simulation) error {
	if !b.monitorOn {
		return nil
	}

	s.monitor = monitoring.NewMonitor().WithPortNumber(b.monitorPort)
	s.monitor.RegisterEngine(s.engine)
	s.monitor.RegisterFlowMonitor(s.flows)

	for _, c := range s.components {
		s.monitor.RegisterComponent(c)
	}

	tracker := &progressTracker{monitor: s.monitor}
	for i, g := range s.generators {
		tracker.add(g, b.scenario.Applications[i].Stop)
	}

	s.engine.AcceptHook(tracker)

	return s.monitor.StartServer()
}

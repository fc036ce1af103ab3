// Package config describes a simulation scenario and loads it from YAML.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"github.com/flowpace/flowpace/trafficgen"
)

// ErrInvalidScenario is returned when a scenario cannot be simulated.
var ErrInvalidScenario = errors.New("invalid scenario")

// Variants lists the congestion control variants a scenario can name.
var Variants = []string{
	"TcpNewReno",
	"TcpVegas",
	"TcpWestwood",
	"TcpScalable",
	"TcpHybla",
}

// Application kinds.
const (
	KindStream   = "stream"
	KindDatagram = "datagram"
)

// Scenario is everything needed to set up a run.
type Scenario struct {
	Variant      string        `yaml:"variant"`
	StopTime     float64       `yaml:"stopTime"`
	Link         LinkConfig    `yaml:"link"`
	Sampler      SamplerConfig `yaml:"sampler"`
	Applications []AppConfig   `yaml:"applications"`
}

// LinkConfig describes the point-to-point link between the two nodes.
type LinkConfig struct {
	DataRate  string  `yaml:"dataRate"`
	Delay     float64 `yaml:"delay"`
	QueueSize int     `yaml:"queueSize"`
	ErrorRate float64 `yaml:"errorRate"`
	Seed      string  `yaml:"seed"`
	SourceIP  string  `yaml:"sourceIP"`
	SinkIP    string  `yaml:"sinkIP"`
}

// SamplerConfig describes the throughput sampler.
type SamplerConfig struct {
	Cadence           float64 `yaml:"cadence"`
	SnapshotEveryTick bool    `yaml:"snapshotEveryTick"`
}

// AppConfig describes one traffic source and the sink that receives it.
type AppConfig struct {
	Name       string  `yaml:"name"`
	Kind       string  `yaml:"kind"`
	Port       uint16  `yaml:"port"`
	PacketSize int     `yaml:"packetSize"`
	NumPackets uint64  `yaml:"numPackets"`
	DataRate   string  `yaml:"dataRate"`
	Start      float64 `yaml:"start"`
	Stop       float64 `yaml:"stop"`
}

// DefaultScenario returns the scenario of one bulk stream sharing a 1Mbps
// link with five constant-rate datagram sources that come and go.
func DefaultScenario() Scenario {
	datagram := func(name string, port uint16, start, stop float64) AppConfig {
		return AppConfig{
			Name:       name,
			Kind:       KindDatagram,
			Port:       port,
			PacketSize: 1040,
			NumPackets: 100000,
			DataRate:   "250Kbps",
			Start:      start,
			Stop:       stop,
		}
	}

	return Scenario{
		Variant:  "TcpNewReno",
		StopTime: 1.8,
		Link: LinkConfig{
			DataRate:  "1Mbps",
			Delay:     0.01,
			QueueSize: 100,
			ErrorRate: 0.00001,
			Seed:      "flowpace",
			SourceIP:  "10.1.1.1",
			SinkIP:    "10.1.1.2",
		},
		Sampler: SamplerConfig{
			Cadence:           0.1,
			SnapshotEveryTick: true,
		},
		Applications: []AppConfig{
			{
				Name:       "Stream",
				Kind:       KindStream,
				Port:       4641,
				PacketSize: 1040,
				NumPackets: 1000,
				DataRate:   "250kbps",
				Start:      0,
				Stop:       1.8,
			},
			datagram("Datagram1", 4642, 0.2, 1.8),
			datagram("Datagram2", 4643, 0.4, 1.8),
			datagram("Datagram3", 4644, 0.6, 1.2),
			datagram("Datagram4", 4645, 0.8, 1.4),
			datagram("Datagram5", 4647, 1.0, 1.6),
		},
	}
}

// Load reads a scenario from a YAML file. Fields missing from the file keep
// their default values. A list of applications in the file replaces the
// default list as a whole.
func Load(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("reading scenario: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates a YAML scenario.
func Parse(data []byte) (Scenario, error) {
	s := DefaultScenario()

	if err := yaml.Unmarshal(data, &s); err != nil {
		return Scenario{}, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}

	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}

	return s, nil
}

// Dump renders the scenario as YAML.
func (s Scenario) Dump() (string, error) {
	out, err := yaml.Marshal(s)
	if err != nil {
		return "", err
	}

	return string(out), nil
}

// Validate checks that the scenario can be simulated.
func (s Scenario) Validate() error {
	if !slices.Contains(Variants, s.Variant) {
		return fmt.Errorf("%w: invalid TCP version %q", ErrInvalidScenario, s.Variant)
	}

	if !(s.StopTime > 0) {
		return fmt.Errorf("%w: stop time %g", ErrInvalidScenario, s.StopTime)
	}

	if err := s.Link.validate(); err != nil {
		return err
	}

	if !(s.Sampler.Cadence > 0) {
		return fmt.Errorf("%w: sampler cadence %g",
			ErrInvalidScenario, s.Sampler.Cadence)
	}

	if len(s.Applications) == 0 {
		return fmt.Errorf("%w: no application", ErrInvalidScenario)
	}

	names := map[string]bool{}
	ports := map[uint16]bool{}

	for i, app := range s.Applications {
		if err := app.validate(); err != nil {
			return fmt.Errorf("application %d: %w", i, err)
		}

		if names[app.Name] {
			return fmt.Errorf("%w: duplicated application name %q",
				ErrInvalidScenario, app.Name)
		}

		if ports[app.Port] {
			return fmt.Errorf("%w: duplicated port %d",
				ErrInvalidScenario, app.Port)
		}

		names[app.Name] = true
		ports[app.Port] = true
	}

	return nil
}

func (l LinkConfig) validate() error {
	if _, err := trafficgen.ParseDataRate(l.DataRate); err != nil {
		return fmt.Errorf("%w: link: %v", ErrInvalidScenario, err)
	}

	if l.Delay < 0 {
		return fmt.Errorf("%w: link delay %g", ErrInvalidScenario, l.Delay)
	}

	if l.QueueSize <= 0 {
		return fmt.Errorf("%w: queue size %d", ErrInvalidScenario, l.QueueSize)
	}

	if l.ErrorRate < 0 || l.ErrorRate > 1 {
		return fmt.Errorf("%w: error rate %g", ErrInvalidScenario, l.ErrorRate)
	}

	src, err := netip.ParseAddr(l.SourceIP)
	if err != nil {
		return fmt.Errorf("%w: source address: %v", ErrInvalidScenario, err)
	}

	dst, err := netip.ParseAddr(l.SinkIP)
	if err != nil {
		return fmt.Errorf("%w: sink address: %v", ErrInvalidScenario, err)
	}

	if src == dst {
		return fmt.Errorf("%w: both nodes use %s", ErrInvalidScenario, src)
	}

	return nil
}

func (a AppConfig) validate() error {
	if a.Name == "" {
		return fmt.Errorf("%w: no name", ErrInvalidScenario)
	}

	if a.Kind != KindStream && a.Kind != KindDatagram {
		return fmt.Errorf("%w: %s has unknown kind %q",
			ErrInvalidScenario, a.Name, a.Kind)
	}

	if a.Port == 0 {
		return fmt.Errorf("%w: %s has no port", ErrInvalidScenario, a.Name)
	}

	if a.PacketSize <= 0 {
		return fmt.Errorf("%w: %s has packet size %d",
			ErrInvalidScenario, a.Name, a.PacketSize)
	}

	if _, err := trafficgen.ParseDataRate(a.DataRate); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidScenario, a.Name, err)
	}

	if a.Start < 0 || a.Stop < a.Start {
		return fmt.Errorf("%w: %s runs from %g to %g",
			ErrInvalidScenario, a.Name, a.Start, a.Stop)
	}

	return nil
}

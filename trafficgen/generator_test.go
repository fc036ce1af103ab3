package trafficgen

import (
	"bytes"
	"errors"
	"log"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/flowpace/flowpace/sim/timing"
	"github.com/flowpace/flowpace/transport"
)

var _ = Describe("Generator", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *timing.SerialEngine
		endpoint *MockEndpoint
		peer     transport.Address
		sendLog  []timing.VTimeInSec
	)

	build := func(numPackets uint64) *Generator {
		g, err := MakeBuilder().
			WithEngine(engine).
			WithEndpoint(endpoint).
			WithPeer(peer).
			WithPacketSize(1040).
			WithDataRate(250e3).
			WithNumPackets(numPackets).
			Build("OnOff")
		Expect(err).NotTo(HaveOccurred())

		return g
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = timing.NewSerialEngine()
		endpoint = NewMockEndpoint(mockCtrl)
		peer = transport.MustParseAddress("10.1.1.2:8080")
		sendLog = nil

		endpoint.EXPECT().Bind().Return(nil).AnyTimes()
		endpoint.EXPECT().Connect(peer).Return(nil).AnyTimes()
		endpoint.EXPECT().Close().Return(nil).AnyTimes()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	recordSends := func() {
		endpoint.EXPECT().
			Send(gomock.Any()).
			DoAndReturn(func(pkt *transport.Packet) error {
				Expect(pkt.Size).To(Equal(1040))
				sendLog = append(sendLog, engine.Now())
				return nil
			}).
			AnyTimes()
	}

	It("should compute the inter-departure interval", func() {
		g := build(10)
		Expect(g.Interval()).To(BeNumerically("~", 0.03328, 1e-12))
	})

	It("should send the first packet synchronously", func() {
		recordSends()
		g := build(10)

		Expect(g.Start()).To(Succeed())

		Expect(sendLog).To(Equal([]timing.VTimeInSec{0}))
		Expect(g.PacketsSent()).To(Equal(uint64(1)))
		Expect(g.IsRunning()).To(BeTrue())
		Expect(g.HasPendingSend()).To(BeTrue())
	})

	It("should send exactly once with a zero budget", func() {
		recordSends()
		g := build(0)

		Expect(g.Start()).To(Succeed())
		Expect(g.HasPendingSend()).To(BeFalse())

		Expect(engine.Run()).To(Succeed())
		Expect(g.PacketsSent()).To(Equal(uint64(1)))
		Expect(sendLog).To(HaveLen(1))
	})

	It("should stop at the budget and keep the interval", func() {
		recordSends()
		g := build(5)

		Expect(g.Start()).To(Succeed())
		Expect(engine.Run()).To(Succeed())

		Expect(g.PacketsSent()).To(Equal(uint64(5)))
		Expect(g.HasPendingSend()).To(BeFalse())
		Expect(g.IsRunning()).To(BeTrue())
		Expect(sendLog).To(HaveLen(5))
		for i := 1; i < len(sendLog); i++ {
			Expect(sendLog[i] - sendLog[i-1]).
				To(BeNumerically("~", g.Interval(), 1e-9))
		}
	})

	It("should be truncated by the stop time", func() {
		recordSends()
		g := build(1000)

		engine.StopAt(1.8)
		Expect(g.Start()).To(Succeed())
		Expect(engine.Run()).To(Succeed())

		expected := int(math.Floor(1.8/g.Interval())) + 1
		Expect(expected).To(Equal(55))
		Expect(sendLog).To(HaveLen(expected))
		Expect(sendLog[len(sendLog)-1]).To(BeNumerically("<", 1.8))
		Expect(engine.Now()).To(Equal(1.8))
	})

	It("should send one packet when stopped right after start", func() {
		recordSends()
		g := build(1000)

		Expect(g.Start()).To(Succeed())
		g.Stop()

		Expect(g.PacketsSent()).To(Equal(uint64(1)))
		Expect(g.HasPendingSend()).To(BeFalse())
		Expect(g.IsRunning()).To(BeFalse())

		Expect(engine.Run()).To(Succeed())
		Expect(sendLog).To(HaveLen(1))
	})

	It("should tolerate stopping twice", func() {
		recordSends()
		g := build(1000)

		Expect(g.Start()).To(Succeed())
		g.Stop()
		g.Stop()

		Expect(g.PacketsSent()).To(Equal(uint64(1)))
		Expect(g.HasPendingSend()).To(BeFalse())
		Expect(g.IsRunning()).To(BeFalse())
	})

	It("should tolerate stopping before start", func() {
		g := build(1000)

		Expect(func() { g.Stop() }).NotTo(Panic())
		Expect(g.PacketsSent()).To(BeZero())
		Expect(g.HasPendingSend()).To(BeFalse())
	})

	It("should tolerate stopping a zero value generator", func() {
		g := &Generator{}

		Expect(func() { g.Stop() }).NotTo(Panic())
		Expect(g.Start()).To(MatchError(ErrNotBuilt))
	})

	It("should follow a scheduled lifecycle", func() {
		recordSends()
		g := build(1000)

		g.ScheduleLifecycle(0.5, 0.6)
		Expect(engine.Run()).To(Succeed())

		Expect(sendLog[0]).To(BeNumerically("~", 0.5, 1e-9))
		Expect(sendLog).To(HaveLen(4))
		Expect(g.IsRunning()).To(BeFalse())
		Expect(g.HasPendingSend()).To(BeFalse())
	})

	It("should stop before a send that falls on the stop time", func() {
		recordSends()
		g := build(1000)

		g.ScheduleLifecycle(0, 2*g.Interval())
		Expect(engine.Run()).To(Succeed())

		Expect(sendLog).To(HaveLen(2))
	})

	It("should keep pacing when sends fail", func() {
		endpoint.EXPECT().
			Send(gomock.Any()).
			Return(transport.ErrNotConnected).
			Times(3)

		g := build(3)
		Expect(g.Start()).To(Succeed())
		Expect(engine.Run()).To(Succeed())

		Expect(g.PacketsSent()).To(Equal(uint64(3)))
		Expect(g.SendFailures()).To(Equal(uint64(3)))
	})

	It("should fail to start when the endpoint cannot connect", func() {
		other := NewMockEndpoint(mockCtrl)
		other.EXPECT().Bind().Return(nil)
		other.EXPECT().Connect(peer).Return(errors.New("no route"))

		g, err := MakeBuilder().
			WithEngine(engine).
			WithEndpoint(other).
			WithPeer(peer).
			Build("OnOff")
		Expect(err).NotTo(HaveOccurred())

		Expect(g.Start()).To(MatchError("no route"))
		Expect(g.PacketsSent()).To(BeZero())
		Expect(g.IsRunning()).To(BeFalse())
	})

	It("should not run when the endpoint cannot bind", func() {
		other := NewMockEndpoint(mockCtrl)
		other.EXPECT().Bind().Return(transport.ErrClosed)

		g, err := MakeBuilder().
			WithEngine(engine).
			WithEndpoint(other).
			WithPeer(peer).
			Build("OnOff")
		Expect(err).NotTo(HaveOccurred())

		Expect(g.Start()).To(MatchError(transport.ErrClosed))
		Expect(g.IsRunning()).To(BeFalse())
		Expect(g.HasPendingSend()).To(BeFalse())
	})

	It("should keep a single pending send when started twice", func() {
		recordSends()
		g := build(3)

		Expect(g.Start()).To(Succeed())
		Expect(g.Start()).To(Succeed())
		Expect(engine.Run()).To(Succeed())

		Expect(sendLog).To(HaveLen(4))
		Expect(sendLog[0]).To(Equal(timing.VTimeInSec(0)))
		Expect(sendLog[1]).To(Equal(timing.VTimeInSec(0)))
		Expect(sendLog[2]).To(BeNumerically("~", g.Interval(), 1e-9))
		Expect(sendLog[3]).To(BeNumerically("~", 2*g.Interval(), 1e-9))
		Expect(g.PacketsSent()).To(Equal(uint64(3)))
	})

	It("should not send after stop when started twice", func() {
		recordSends()
		g := build(10)

		Expect(g.Start()).To(Succeed())
		Expect(g.Start()).To(Succeed())
		g.Stop()
		Expect(engine.Run()).To(Succeed())

		Expect(sendLog).To(HaveLen(2))
		Expect(g.IsRunning()).To(BeFalse())
		Expect(g.HasPendingSend()).To(BeFalse())
	})

	It("should log its lifecycle", func() {
		recordSends()
		buf := new(bytes.Buffer)

		g, err := MakeBuilder().
			WithEngine(engine).
			WithEndpoint(endpoint).
			WithPeer(peer).
			WithPacketSize(1040).
			WithNumPackets(2).
			WithLogger(log.New(buf, "", 0)).
			Build("OnOff")
		Expect(err).NotTo(HaveOccurred())

		Expect(g.Start()).To(Succeed())
		Expect(engine.Run()).To(Succeed())
		g.Stop()

		Expect(buf.String()).To(ContainSubstring("OnOff: start"))
		Expect(buf.String()).To(ContainSubstring("budget of 2 packets used up"))
		Expect(buf.String()).To(ContainSubstring("stop, 2 packets sent"))
	})
})

var _ = Describe("Builder", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *timing.SerialEngine
		endpoint *MockEndpoint
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = timing.NewSerialEngine()
		endpoint = NewMockEndpoint(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	DescribeTable("invalid configurations",
		func(b func(Builder) Builder) {
			_, err := b(MakeBuilder().WithEngine(engine).WithEndpoint(endpoint)).
				Build("OnOff")
			Expect(err).To(MatchError(ErrInvalidConfig))
		},
		Entry("zero packet size", func(b Builder) Builder {
			return b.WithPacketSize(0)
		}),
		Entry("negative packet size", func(b Builder) Builder {
			return b.WithPacketSize(-1)
		}),
		Entry("zero rate", func(b Builder) Builder {
			return b.WithDataRate(0)
		}),
		Entry("negative rate", func(b Builder) Builder {
			return b.WithDataRate(-5)
		}),
		Entry("NaN rate", func(b Builder) Builder {
			return b.WithDataRate(math.NaN())
		}),
		Entry("no engine", func(b Builder) Builder {
			return b.WithEngine(nil)
		}),
		Entry("no endpoint", func(b Builder) Builder {
			return b.WithEndpoint(nil)
		}),
	)
})

var _ = Describe("ParseDataRate", func() {
	DescribeTable("valid rates",
		func(s string, bps float64) {
			v, err := ParseDataRate(s)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(BeNumerically("~", bps, 1e-6))
		},
		Entry("bps", "9600bps", 9600.0),
		Entry("kbps", "250kbps", 250e3),
		Entry("Kbps", "250Kbps", 250e3),
		Entry("Mbps", "1Mbps", 1e6),
		Entry("fractional Mbps", "1.5Mbps", 1.5e6),
		Entry("Gbps", "10Gbps", 10e9),
		Entry("B/s", "125B/s", 1000.0),
		Entry("KB/s", "1KB/s", 8000.0),
		Entry("MB/s", "2MB/s", 16e6),
		Entry("spaces", " 100 kbps ", 100e3),
	)

	DescribeTable("invalid rates",
		func(s string) {
			_, err := ParseDataRate(s)
			Expect(err).To(MatchError(ErrInvalidConfig))
		},
		Entry("no unit", "250"),
		Entry("unknown unit", "250furlongs"),
		Entry("no number", "kbps"),
		Entry("zero", "0bps"),
		Entry("negative", "-1Mbps"),
	)
})

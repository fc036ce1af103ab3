package monitoring

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/flowpace/flowpace/flowmon"
)

var flowLabels = []string{"flow", "src", "dst", "proto"}

// FlowCollector exports the counters of every flow as Prometheus metrics.
type FlowCollector struct {
	flows *flowmon.Monitor

	txBytes   *prometheus.Desc
	rxBytes   *prometheus.Desc
	txPackets *prometheus.Desc
	rxPackets *prometheus.Desc
	lost      *prometheus.Desc
	delaySum  *prometheus.Desc
}

// NewFlowCollector creates a collector that reads from flows.
func NewFlowCollector(flows *flowmon.Monitor) *FlowCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName("flowpace", "flow", name),
			help, flowLabels, nil)
	}

	return &FlowCollector{
		flows:     flows,
		txBytes:   desc("tx_bytes_total", "Bytes sent by the flow."),
		rxBytes:   desc("rx_bytes_total", "Bytes received by the flow."),
		txPackets: desc("tx_packets_total", "Packets sent by the flow."),
		rxPackets: desc("rx_packets_total", "Packets received by the flow."),
		lost:      desc("lost_packets_total", "Packets of the flow that were lost."),
		delaySum:  desc("delay_seconds_total", "Sum of the one-way delays."),
	}
}

// Describe sends the descriptors of the flow metrics.
func (c *FlowCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.txBytes
	ch <- c.rxBytes
	ch <- c.txPackets
	ch <- c.rxPackets
	ch <- c.lost
	ch <- c.delaySum
}

// Collect sends the current value of every flow metric.
func (c *FlowCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.flows.FlowStats()

	for _, flowID := range c.flows.FlowIDs() {
		st, found := stats[flowID]
		if !found {
			continue
		}

		tuple, _ := c.flows.FindFlow(flowID)
		labels := []string{
			strconv.FormatUint(uint64(flowID), 10),
			tuple.SrcIP.String() + ":" + strconv.Itoa(int(tuple.SrcPort)),
			tuple.DstIP.String() + ":" + strconv.Itoa(int(tuple.DstPort)),
			tuple.Proto.String(),
		}

		counter := func(d *prometheus.Desc, v float64) {
			ch <- prometheus.MustNewConstMetric(
				d, prometheus.CounterValue, v, labels...)
		}

		counter(c.txBytes, float64(st.TxBytes))
		counter(c.rxBytes, float64(st.RxBytes))
		counter(c.txPackets, float64(st.TxPackets))
		counter(c.rxPackets, float64(st.RxPackets))
		counter(c.lost, float64(st.LostPackets))
		counter(c.delaySum, st.DelaySum)
	}
}

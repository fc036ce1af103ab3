package flowmon

import (
	"encoding/xml"
	"fmt"
	"os"

	"github.com/flowpace/flowpace/sim/timing"
)

type xmlTime timing.VTimeInSec

func (t xmlTime) MarshalXMLAttr(name xml.Name) (xml.Attr, error) {
	return xml.Attr{
		Name:  name,
		Value: fmt.Sprintf("%+.1fns", float64(t)*1e9),
	}, nil
}

type xmlFlowStats struct {
	FlowID         FlowID  `xml:"flowId,attr"`
	TimeFirstTx    xmlTime `xml:"timeFirstTxPacket,attr"`
	TimeFirstRx    xmlTime `xml:"timeFirstRxPacket,attr"`
	TimeLastTx     xmlTime `xml:"timeLastTxPacket,attr"`
	TimeLastRx     xmlTime `xml:"timeLastRxPacket,attr"`
	DelaySum       xmlTime `xml:"delaySum,attr"`
	TxBytes        uint64  `xml:"txBytes,attr"`
	RxBytes        uint64  `xml:"rxBytes,attr"`
	TxPackets      uint64  `xml:"txPackets,attr"`
	RxPackets      uint64  `xml:"rxPackets,attr"`
	LostPackets    uint64  `xml:"lostPackets,attr"`
	DroppedPackets uint64  `xml:"packetsDropped,attr"`
}

type xmlClassifierFlow struct {
	FlowID          FlowID `xml:"flowId,attr"`
	SourceAddress   string `xml:"sourceAddress,attr"`
	DestAddress     string `xml:"destinationAddress,attr"`
	Protocol        uint8  `xml:"protocol,attr"`
	SourcePort      uint16 `xml:"sourcePort,attr"`
	DestinationPort uint16 `xml:"destinationPort,attr"`
}

type xmlSnapshot struct {
	XMLName    xml.Name            `xml:"FlowMonitor"`
	Flows      []xmlFlowStats      `xml:"FlowStats>Flow"`
	Classifier []xmlClassifierFlow `xml:"Ipv4FlowClassifier>Flow"`
}

func (m *Monitor) snapshot() xmlSnapshot {
	m.lock.RLock()
	defer m.lock.RUnlock()

	s := xmlSnapshot{}
	for _, id := range m.sortedIDs() {
		st := m.stats[id]
		tuple := m.tuples[id]

		s.Flows = append(s.Flows, xmlFlowStats{
			FlowID:         id,
			TimeFirstTx:    xmlTime(st.TimeFirstTx),
			TimeFirstRx:    xmlTime(st.TimeFirstRx),
			TimeLastTx:     xmlTime(st.TimeLastTx),
			TimeLastRx:     xmlTime(st.TimeLastRx),
			DelaySum:       xmlTime(st.DelaySum),
			TxBytes:        st.TxBytes,
			RxBytes:        st.RxBytes,
			TxPackets:      st.TxPackets,
			RxPackets:      st.RxPackets,
			LostPackets:    st.LostPackets,
			DroppedPackets: st.DroppedPackets,
		})

		s.Classifier = append(s.Classifier, xmlClassifierFlow{
			FlowID:          id,
			SourceAddress:   tuple.SrcIP.String(),
			DestAddress:     tuple.DstIP.String(),
			Protocol:        uint8(tuple.Proto),
			SourcePort:      tuple.SrcPort,
			DestinationPort: tuple.DstPort,
		})
	}

	return s
}

// MarshalXML renders the current state of the monitor.
func (m *Monitor) MarshalXML() ([]byte, error) {
	out, err := xml.MarshalIndent(m.snapshot(), "", "  ")
	if err != nil {
		return nil, err
	}

	return append([]byte(xml.Header), append(out, '\n')...), nil
}

// SerializeToXMLFile writes the current state of the monitor to path,
// replacing the file if it exists.
func (m *Monitor) SerializeToXMLFile(path string) error {
	data, err := m.MarshalXML()
	if err != nil {
		return fmt.Errorf("rendering flow monitor: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing flow monitor snapshot: %w", err)
	}

	return nil
}

package network

import (
	"math"

	"github.com/iti/rngstream"

	"github.com/flowpace/flowpace/transport"
)

// An ErrorModel decides whether a received packet is corrupted.
type ErrorModel interface {
	IsCorrupt(pkt *transport.Packet) bool
}

// RateErrorModel corrupts each byte independently with a fixed probability.
type RateErrorModel struct {
	rate float64
	rng  *rngstream.RngStream
}

// NewRateErrorModel creates an error model with a per-byte error rate. The
// random stream is named so that runs are reproducible.
func NewRateErrorModel(name string, rate float64) *RateErrorModel {
	return &RateErrorModel{
		rate: rate,
		rng:  rngstream.New(name),
	}
}

// IsCorrupt draws whether the packet survives.
func (m *RateErrorModel) IsCorrupt(pkt *transport.Packet) bool {
	if m.rate <= 0 {
		return false
	}

	pCorrupt := 1 - math.Pow(1-m.rate, float64(pkt.IPSize()))

	return m.rng.RandU01() < pCorrupt
}

// ListErrorModel corrupts the received packets at the given ordinals,
// counting from 0.
type ListErrorModel struct {
	drops map[int]bool
	seen  int
}

// NewListErrorModel creates a ListErrorModel.
func NewListErrorModel(ordinals ...int) *ListErrorModel {
	m := &ListErrorModel{drops: make(map[int]bool)}
	for _, o := range ordinals {
		m.drops[o] = true
	}

	return m
}

// IsCorrupt returns true for listed ordinals.
func (m *ListErrorModel) IsCorrupt(_ *transport.Packet) bool {
	corrupt := m.drops[m.seen]
	m.seen++

	return corrupt
}

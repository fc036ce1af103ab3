// Package id provides the identifiers attached to events, packets and runs.
package id

import (
	"strconv"
	"sync/atomic"

	"github.com/rs/xid"
)

var generator = NewIDGenerator()

// IDGenerator can generate IDs.
type IDGenerator interface {
	Generate() string
}

// NewIDGenerator returns a sequential ID generator. Sequential IDs make runs
// reproducible, which is what the event queue relies on for its tie-break
// tests.
func NewIDGenerator() IDGenerator {
	return &sequentialIDGenerator{}
}

// NewParallelIDGenerator returns an ID generator that is safe to share across
// independent simulations in one process. IDs are globally unique but not
// deterministic.
func NewParallelIDGenerator() IDGenerator {
	return parallelIDGenerator{}
}

// Generate returns an ID from the process-wide generator.
func Generate() string {
	return generator.Generate()
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)

	return strconv.FormatUint(idNumber, 10)
}

type parallelIDGenerator struct{}

func (g parallelIDGenerator) Generate() string {
	return xid.New().String()
}

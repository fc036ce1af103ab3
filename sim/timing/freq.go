package timing

import (
	"log"
	"math"
)

// Freq defines the type of frequency
type Freq float64

// Defines the unit of frequency
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
	GHz Freq = 1e9
)

// DefaultResolution is the clock resolution of an engine. One tick per
// nanosecond.
const DefaultResolution = 1 * GHz

// Period returns the time between two consecutive ticks
func (f Freq) Period() VTimeInSec {
	if f == 0 {
		log.Panic("frequency cannot be 0")
	}

	return VTimeInSec(1.0 / f)
}

// Cycle converts a time to the number of cycles passed since time 0, rounded
// to the nearest cycle.
func (f Freq) Cycle(time VTimeInSec) uint64 {
	if math.IsNaN(time) || time < 0 {
		log.Panic("invalid time")
	}

	return uint64(math.Round(time * float64(f)))
}

// SameTick tells if two times fall on the same cycle.
func (f Freq) SameTick(a, b VTimeInSec) bool {
	return f.Cycle(a) == f.Cycle(b)
}

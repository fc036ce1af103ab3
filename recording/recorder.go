package recording

import (
	"log"

	"github.com/flowpace/flowpace/network"
	"github.com/flowpace/flowpace/sim/hooking"
	"github.com/flowpace/flowpace/sim/timing"
)

// recorderBase keeps the first error a recorder could not return to its
// caller.
type recorderBase struct {
	name       string
	timeTeller timing.TimeTeller
	sink       Sink
	err        error
}

func (r *recorderBase) append(value float64) {
	err := r.sink.Append(r.timeTeller.Now(), value)
	if err == nil || r.err != nil {
		return
	}

	r.err = err
	log.Printf("%s: cannot record: %v", r.name, err)
}

// Err returns the first error met while writing to the sink.
func (r *recorderBase) Err() error {
	return r.err
}

// A CwndRecorder writes the new congestion window every time it changes.
type CwndRecorder struct {
	recorderBase
}

// NewCwndRecorder creates a CwndRecorder. Attach it to a socket with
// AcceptHook.
func NewCwndRecorder(tt timing.TimeTeller, sink Sink) *CwndRecorder {
	return &CwndRecorder{
		recorderBase: recorderBase{
			name:       "cwnd recorder",
			timeTeller: tt,
			sink:       sink,
		},
	}
}

// Func records a congestion window change.
func (r *CwndRecorder) Func(ctx hooking.HookCtx) {
	if ctx.Pos != network.HookPosCwndChange {
		return
	}

	change, ok := ctx.Detail.(network.CwndChange)
	if !ok {
		return
	}

	r.append(float64(change.New))
}

// A DropRecorder numbers drops. The first drop is recorded as 1.
type DropRecorder struct {
	recorderBase

	positions []*hooking.HookPos
	seq       uint64
}

// NewDropRecorder creates a DropRecorder that counts invocations at the given
// positions. With no position given it counts receive errors.
func NewDropRecorder(
	tt timing.TimeTeller,
	sink Sink,
	positions ...*hooking.HookPos,
) *DropRecorder {
	if len(positions) == 0 {
		positions = []*hooking.HookPos{network.HookPosPhyRxDrop}
	}

	return &DropRecorder{
		recorderBase: recorderBase{
			name:       "drop recorder",
			timeTeller: tt,
			sink:       sink,
		},
		positions: positions,
		seq:       1,
	}
}

// Drops returns how many drops have been recorded.
func (r *DropRecorder) Drops() uint64 {
	return r.seq - 1
}

// Func records a drop.
func (r *DropRecorder) Func(ctx hooking.HookCtx) {
	if !r.watches(ctx.Pos) {
		return
	}

	r.append(float64(r.seq))
	r.seq++
}

func (r *DropRecorder) watches(pos *hooking.HookPos) bool {
	for _, p := range r.positions {
		if p == pos {
			return true
		}
	}

	return false
}

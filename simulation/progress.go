package simulation

import (
	"github.com/flowpace/flowpace/monitoring"
	"github.com/flowpace/flowpace/sim/hooking"
	"github.com/flowpace/flowpace/sim/timing"
	"github.com/flowpace/flowpace/trafficgen"
)

// progressTracker copies the number of packets sent by each generator into
// its progress bar after every event. The bar of a generator that has
// stopped for good is taken off the page.
type progressTracker struct {
	monitor *monitoring.Monitor
	entries []*progressEntry
}

type progressEntry struct {
	generator *trafficgen.Generator
	bar       *monitoring.ProgressBar
	stopAt    timing.VTimeInSec
	done      bool
}

func (t *progressTracker) add(
	g *trafficgen.Generator,
	stopAt timing.VTimeInSec,
) {
	t.entries = append(t.entries, &progressEntry{
		generator: g,
		bar:       t.monitor.CreateProgressBar(g.Name(), g.NumPackets()),
		stopAt:    stopAt,
	})
}

func (t *progressTracker) Func(ctx hooking.HookCtx) {
	if ctx.Pos != timing.HookPosAfterEvent {
		return
	}

	evt, ok := ctx.Item.(timing.Event)
	if !ok {
		return
	}

	for _, e := range t.entries {
		if e.done {
			continue
		}

		e.bar.SetFinished(e.generator.PacketsSent())

		if evt.Time() >= e.stopAt && !e.generator.IsRunning() {
			t.monitor.CompleteProgressBar(e.bar)
			e.done = true
		}
	}
}

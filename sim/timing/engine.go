package timing

import (
	"github.com/flowpace/flowpace/sim/hooking"
)

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	Now() VTimeInSec
}

// EventScheduler can be used to schedule and withdraw future events.
type EventScheduler interface {
	TimeTeller

	// Schedule registers an event to happen in the future. Scheduling an event
	// in the past panics.
	Schedule(e Event)

	// Cancel withdraws a pending event. Cancelling an event that has already
	// fired, has already been cancelled, or was never scheduled does nothing.
	Cancel(e Event)

	// IsPending tells whether the event is scheduled and has neither fired
	// nor been cancelled.
	IsPending(e Event) bool
}

// A SimulationEndHandler is a handler that is called after the simulation ends.
type SimulationEndHandler interface {
	Handle(now VTimeInSec)
}

// An Engine is a unit that keeps the discrete event simulation run.
type Engine interface {
	hooking.Hookable
	EventScheduler

	// Run will process all the events until the simulation finishes
	Run() error

	// Pause will pause the simulation until continue is called.
	Pause()

	// Continue will continue the paused simulation
	Continue()

	// RegisterSimulationEndHandler registers a handler that perform some
	// actions after the simulation is finished.
	RegisterSimulationEndHandler(handler SimulationEndHandler)

	// Finished invokes all the registered SimulationEndHandler
	Finished()
}

// ScheduleFunc asks the scheduler to call fn after delay and returns the
// event so that the caller can cancel it.
func ScheduleFunc(
	s EventScheduler,
	delay VTimeInSec,
	fn func(now VTimeInSec) error,
) *FuncEvent {
	evt := NewFuncEvent(s.Now()+delay, fn)
	s.Schedule(evt)

	return evt
}

package timing

import (
	"github.com/flowpace/flowpace/sim/hooking"
	"github.com/flowpace/flowpace/sim/id"
)

// VTimeInSec defines the time in the simulated space in the unit of second
type VTimeInSec = float64

// An Event is something going to happen in the future.
type Event interface {
	// ID identifies the event. An event can be pending in an engine at most
	// once at a time.
	ID() string

	// Return the time that the event should happen
	Time() VTimeInSec

	// Returns the handler that can should handle the event
	Handler() Handler

	// IsSecondary tells if the event is a secondary event. Secondary event are
	// handled after all same-time primary events are handled.
	IsSecondary() bool
}

// HookPosBeforeEvent is a hook position that triggers before handling an event.
var HookPosBeforeEvent = &hooking.HookPos{Name: "BeforeEvent"}

// HookPosAfterEvent is a hook position that triggers after handling an event.
var HookPosAfterEvent = &hooking.HookPos{Name: "AfterEvent"}

// EventBase provides the basic fields and getters for other events
type EventBase struct {
	id        string
	time      VTimeInSec
	handler   Handler
	secondary bool
}

// NewEventBase creates a new EventBase
func NewEventBase(t VTimeInSec, handler Handler) *EventBase {
	e := new(EventBase)
	e.id = id.Generate()
	e.time = t
	e.handler = handler
	e.secondary = false

	return e
}

// ID returns the ID of the event.
func (e EventBase) ID() string {
	return e.id
}

// Time return the time that the event is going to happen
func (e EventBase) Time() VTimeInSec {
	return e.time
}

// Handler returns the handler to handle the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

// IsSecondary returns true if the event is a secondary event.
func (e EventBase) IsSecondary() bool {
	return e.secondary
}

// A Handler defines a domain for the events.
//
// One event is always constraint to one Handler, which means the event can
// only be scheduled by one handler and can only directly modify that handler.
type Handler interface {
	Handle(e Event) error
}

// TickEvent is a generic event that periodic components schedule for
// themselves.
type TickEvent struct {
	EventBase
}

// MakeTickEvent creates a new TickEvent
func MakeTickEvent(handler Handler, time VTimeInSec) TickEvent {
	return TickEvent{
		EventBase: EventBase{
			id:      id.Generate(),
			time:    time,
			handler: handler,
		},
	}
}

// A FuncEvent runs a function when it fires. It is its own handler, which
// makes it the (delay, action) form of scheduling.
type FuncEvent struct {
	*EventBase

	fn func(now VTimeInSec) error
}

// NewFuncEvent creates an event that calls fn at time t.
func NewFuncEvent(t VTimeInSec, fn func(now VTimeInSec) error) *FuncEvent {
	e := &FuncEvent{fn: fn}
	e.EventBase = NewEventBase(t, e)

	return e
}

// Handle calls the wrapped function.
func (e *FuncEvent) Handle(_ Event) error {
	return e.fn(e.Time())
}

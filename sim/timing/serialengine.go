package timing

import (
	"fmt"
	"log"
	"reflect"
	"sync"

	"github.com/flowpace/flowpace/sim/hooking"
)

// A SerialEngine is an Engine that always run events one after another.
//
// Events are ordered by their time rounded to the engine resolution. Events
// on the same cycle run primary first, then secondary, each in the order they
// were scheduled.
type SerialEngine struct {
	hooking.HookableBase

	timeLock       sync.RWMutex
	time           VTimeInSec
	resolution     Freq
	queue          EventQueue
	secondaryQueue EventQueue

	hasStopTime bool
	stopTime    VTimeInSec

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	singleRunLock sync.Mutex

	simulationEndHandlers []SimulationEndHandler
}

// NewSerialEngine creates a SerialEngine
func NewSerialEngine() *SerialEngine {
	return NewSerialEngineWithResolution(DefaultResolution)
}

// NewSerialEngineWithResolution creates a SerialEngine whose clock only
// distinguishes times that are at least one cycle of resolution apart.
func NewSerialEngineWithResolution(resolution Freq) *SerialEngine {
	e := new(SerialEngine)

	e.resolution = resolution
	e.queue = NewEventQueueWithResolution(resolution)
	e.secondaryQueue = NewEventQueueWithResolution(resolution)

	return e
}

// Name returns the name of the engine.
func (e *SerialEngine) Name() string {
	return "SerialEngine"
}

// StopAt sets the time at which the simulation ends. Events at or after the
// stop time are discarded without being handled.
func (e *SerialEngine) StopAt(t VTimeInSec) {
	e.hasStopTime = true
	e.stopTime = t
}

// StopTime returns the stop time and whether it has been set.
func (e *SerialEngine) StopTime() (VTimeInSec, bool) {
	return e.stopTime, e.hasStopTime
}

// Schedule register an event to be happen in the future
func (e *SerialEngine) Schedule(evt Event) {
	now := e.readNow()
	if e.resolution.Cycle(evt.Time()) < e.resolution.Cycle(now) {
		log.Panic("scheduling an event earlier than current time")
	}

	if evt.IsSecondary() {
		e.secondaryQueue.Push(evt)

		return
	}

	e.queue.Push(evt)
}

// Cancel withdraws a pending event.
func (e *SerialEngine) Cancel(evt Event) {
	if e.queue.Remove(evt) {
		return
	}

	e.secondaryQueue.Remove(evt)
}

// IsPending tells if the event is waiting to be handled.
func (e *SerialEngine) IsPending(evt Event) bool {
	return e.queue.Contains(evt) || e.secondaryQueue.Contains(evt)
}

func (e *SerialEngine) readNow() VTimeInSec {
	e.timeLock.RLock()
	t := e.time
	e.timeLock.RUnlock()

	return t
}

func (e *SerialEngine) writeNow(t VTimeInSec) {
	e.timeLock.Lock()
	e.time = t
	e.timeLock.Unlock()
}

// Run processes all the events scheduled in the SerialEngine. It returns when
// no event is left, when the stop time is reached, or when a handler returns
// an error.
func (e *SerialEngine) Run() error {
	e.singleRunLock.Lock()
	defer e.singleRunLock.Unlock()

	for {
		if e.noMoreEvent() {
			return nil
		}

		e.pauseLock.Lock()

		if e.reachedStopTime() {
			e.discardAll()
			e.writeNow(e.stopTime)
			e.pauseLock.Unlock()

			return nil
		}

		evt := e.nextEvent()
		now := e.readNow()

		if e.resolution.Cycle(evt.Time()) < e.resolution.Cycle(now) {
			log.Panicf(
				"cannot run event in the past, evt %s @ %.10f, now %.10f",
				reflect.TypeOf(evt), evt.Time(), now,
			)
		}

		e.writeNow(evt.Time())

		hookCtx := hooking.HookCtx{
			Domain: e,
			Pos:    HookPosBeforeEvent,
			Item:   evt,
		}
		e.InvokeHook(hookCtx)

		err := evt.Handler().Handle(evt)

		hookCtx.Pos = HookPosAfterEvent
		e.InvokeHook(hookCtx)

		e.pauseLock.Unlock()

		if err != nil {
			return fmt.Errorf("handling %s @ %.10f: %w",
				reflect.TypeOf(evt), evt.Time(), err)
		}
	}
}

func (e *SerialEngine) noMoreEvent() bool {
	return e.queue.Len() == 0 && e.secondaryQueue.Len() == 0
}

func (e *SerialEngine) reachedStopTime() bool {
	if !e.hasStopTime {
		return false
	}

	next := e.peekNext()

	return e.resolution.Cycle(next.Time()) >= e.resolution.Cycle(e.stopTime)
}

func (e *SerialEngine) discardAll() {
	for e.queue.Len() > 0 {
		e.queue.Pop()
	}

	for e.secondaryQueue.Len() > 0 {
		e.secondaryQueue.Pop()
	}
}

func (e *SerialEngine) peekNext() Event {
	if e.queue.Len() == 0 {
		return e.secondaryQueue.Peek()
	}

	if e.secondaryQueue.Len() == 0 {
		return e.queue.Peek()
	}

	primaryEvt := e.queue.Peek()
	secondaryEvt := e.secondaryQueue.Peek()

	if e.primaryFirst(primaryEvt, secondaryEvt) {
		return primaryEvt
	}

	return secondaryEvt
}

func (e *SerialEngine) nextEvent() Event {
	if e.queue.Len() == 0 {
		return e.secondaryQueue.Pop()
	}

	if e.secondaryQueue.Len() == 0 {
		return e.queue.Pop()
	}

	primaryEvt := e.queue.Peek()
	secondaryEvt := e.secondaryQueue.Peek()

	if e.primaryFirst(primaryEvt, secondaryEvt) {
		e.queue.Pop()
		return primaryEvt
	}

	e.secondaryQueue.Pop()

	return secondaryEvt
}

func (e *SerialEngine) primaryFirst(primary, secondary Event) bool {
	return e.resolution.Cycle(primary.Time()) <=
		e.resolution.Cycle(secondary.Time())
}

// Pause prevents the SerialEngine to trigger more events.
func (e *SerialEngine) Pause() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if e.isPaused {
		return
	}

	e.pauseLock.Lock()
	e.isPaused = true
}

// Continue allows the SerialEngine to trigger more events.
func (e *SerialEngine) Continue() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if !e.isPaused {
		return
	}

	e.pauseLock.Unlock()
	e.isPaused = false
}

// Now returns the current time at which the engine is at.
// Specifically, the run time of the current event.
func (e *SerialEngine) Now() VTimeInSec {
	return e.readNow()
}

// RegisterSimulationEndHandler registers a handler to be called by Finished.
func (e *SerialEngine) RegisterSimulationEndHandler(
	handler SimulationEndHandler,
) {
	e.simulationEndHandlers = append(e.simulationEndHandlers, handler)
}

// Finished should be called after the simulation ends. This function
// calls all the registered SimulationEndHandler.
func (e *SerialEngine) Finished() {
	now := e.readNow()
	for _, h := range e.simulationEndHandlers {
		h.Handle(now)
	}
}

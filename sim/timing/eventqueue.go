package timing

import (
	"container/heap"
	"log"
	"sync"
)

// EventQueue are a queue of event ordered by the time of events. Events that
// fall on the same clock cycle leave the queue in the order they entered it.
type EventQueue interface {
	Push(evt Event)
	Pop() Event
	Len() int
	Peek() Event

	// Remove takes the event out of the queue. It returns false if the event
	// is not in the queue.
	Remove(evt Event) bool

	// Contains tells if the event is in the queue.
	Contains(evt Event) bool
}

// EventQueueImpl provides a thread safe event queue
type EventQueueImpl struct {
	sync.Mutex
	events     eventHeap
	byID       map[string]*queueEntry
	resolution Freq
	nextSeq    uint64
}

// NewEventQueue creates and returns a newly created EventQueue
func NewEventQueue() *EventQueueImpl {
	return NewEventQueueWithResolution(DefaultResolution)
}

// NewEventQueueWithResolution creates an EventQueue that considers two events
// to happen at the same time if they fall in the same cycle of resolution.
func NewEventQueueWithResolution(resolution Freq) *EventQueueImpl {
	q := new(EventQueueImpl)
	q.events = make([]*queueEntry, 0)
	q.byID = make(map[string]*queueEntry)
	q.resolution = resolution
	heap.Init(&q.events)

	return q
}

// Push adds an event to the event queue
func (q *EventQueueImpl) Push(evt Event) {
	q.Lock()
	defer q.Unlock()

	if _, found := q.byID[evt.ID()]; found {
		log.Panicf("event %s is already in the queue", evt.ID())
	}

	entry := &queueEntry{
		evt:   evt,
		cycle: q.resolution.Cycle(evt.Time()),
		seq:   q.nextSeq,
	}
	q.nextSeq++

	q.byID[evt.ID()] = entry
	heap.Push(&q.events, entry)
}

// Pop returns the next earliest event
func (q *EventQueueImpl) Pop() Event {
	q.Lock()
	defer q.Unlock()

	entry := heap.Pop(&q.events).(*queueEntry)
	delete(q.byID, entry.evt.ID())

	return entry.evt
}

// Len returns the number of event in the queue
func (q *EventQueueImpl) Len() int {
	q.Lock()
	l := q.events.Len()
	q.Unlock()

	return l
}

// Peek returns the event in front of the queue without removing it from the
// queue
func (q *EventQueueImpl) Peek() Event {
	q.Lock()
	evt := q.events[0].evt
	q.Unlock()

	return evt
}

// Remove takes an event out of the queue wherever it is.
func (q *EventQueueImpl) Remove(evt Event) bool {
	q.Lock()
	defer q.Unlock()

	entry, found := q.byID[evt.ID()]
	if !found {
		return false
	}

	heap.Remove(&q.events, entry.index)
	delete(q.byID, evt.ID())

	return true
}

// Contains tells if the event is in the queue.
func (q *EventQueueImpl) Contains(evt Event) bool {
	q.Lock()
	_, found := q.byID[evt.ID()]
	q.Unlock()

	return found
}

type queueEntry struct {
	evt   Event
	cycle uint64
	seq   uint64
	index int
}

type eventHeap []*queueEntry

// Len returns the length of the event queue
func (h eventHeap) Len() int {
	return len(h)
}

// Less determines the order between two events. Less returns true if the i-th
// event happens before the j-th event.
func (h eventHeap) Less(i, j int) bool {
	if h[i].cycle != h[j].cycle {
		return h[i].cycle < h[j].cycle
	}

	return h[i].seq < h[j].seq
}

// Swap changes the position of two events in the event queue
func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

// Push adds an event into the event queue
func (h *eventHeap) Push(x interface{}) {
	entry := x.(*queueEntry)
	entry.index = len(*h)
	*h = append(*h, entry)
}

// Pop removes and returns the next event to happen
func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	entry.index = -1
	*h = old[0 : n-1]

	return entry
}

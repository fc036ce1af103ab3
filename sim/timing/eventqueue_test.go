package timing

import (
	"fmt"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("EventQueueImpl", func() {
	var (
		mockCtrl *gomock.Controller
		queue    *EventQueueImpl
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		queue = NewEventQueue()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should pop in order", func() {
		numEvents := 100
		for i := 0; i < numEvents; i++ {
			event := NewMockEvent(mockCtrl)
			event.EXPECT().ID().Return(fmt.Sprint(i)).AnyTimes()
			event.EXPECT().
				Time().
				Return(VTimeInSec(rand.Float64())).
				AnyTimes()
			queue.Push(event)
		}

		now := VTimeInSec(-1)
		for i := 0; i < numEvents; i++ {
			event := queue.Pop()
			Expect(event.Time() >= now).To(BeTrue())
			now = event.Time()
		}
	})

	It("should keep insertion order among same-time events", func() {
		events := make([]Event, 0)
		for i := 0; i < 20; i++ {
			evt := NewFuncEvent(VTimeInSec(i%2), func(VTimeInSec) error {
				return nil
			})
			events = append(events, evt)
			queue.Push(evt)
		}

		for _, want := range []int{0, 2, 4, 6, 8, 10, 12, 14, 16, 18} {
			Expect(queue.Pop()).To(BeIdenticalTo(events[want]))
		}

		for _, want := range []int{1, 3, 5, 7, 9, 11, 13, 15, 17, 19} {
			Expect(queue.Pop()).To(BeIdenticalTo(events[want]))
		}
	})

	It("should remove events from the middle", func() {
		evts := []*FuncEvent{}
		for i := 0; i < 5; i++ {
			evt := NewFuncEvent(VTimeInSec(i), func(VTimeInSec) error {
				return nil
			})
			evts = append(evts, evt)
			queue.Push(evt)
		}

		Expect(queue.Remove(evts[2])).To(BeTrue())
		Expect(queue.Remove(evts[2])).To(BeFalse())
		Expect(queue.Contains(evts[2])).To(BeFalse())
		Expect(queue.Len()).To(Equal(4))

		Expect(queue.Pop()).To(BeIdenticalTo(evts[0]))
		Expect(queue.Pop()).To(BeIdenticalTo(evts[1]))
		Expect(queue.Pop()).To(BeIdenticalTo(evts[3]))
		Expect(queue.Peek()).To(BeIdenticalTo(evts[4]))
	})
})

package timing

import (
	"bytes"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/flowpace/flowpace/sim/hooking"
)

type recordingHook struct {
	record func(pos string)
}

func (h *recordingHook) Func(ctx hooking.HookCtx) {
	h.record(ctx.Pos.Name)
}

type namedHandler struct{}

func (namedHandler) Name() string { return "Sender" }
func (namedHandler) Handle(_ Event) error { return nil }

var _ = Describe("EventLogger", func() {
	var (
		buf    *bytes.Buffer
		logger *EventLogger
	)

	BeforeEach(func() {
		buf = new(bytes.Buffer)
		logger = NewEventLogger(log.New(buf, "", 0))
	})

	It("should log events before they are handled", func() {
		evt := MakeTickEvent(namedHandler{}, 0.5)

		logger.Func(hooking.HookCtx{Pos: HookPosBeforeEvent, Item: evt})

		Expect(buf.String()).To(Equal("0.5000000000, timing.TickEvent -> Sender\n"))
	})

	It("should log events of unnamed handlers", func() {
		evt := NewFuncEvent(0.25, func(VTimeInSec) error { return nil })

		logger.Func(hooking.HookCtx{Pos: HookPosBeforeEvent, Item: evt})

		Expect(buf.String()).To(Equal("0.2500000000, *timing.FuncEvent\n"))
	})

	It("should ignore other positions", func() {
		evt := MakeTickEvent(namedHandler{}, 0.5)

		logger.Func(hooking.HookCtx{Pos: HookPosAfterEvent, Item: evt})

		Expect(buf.String()).To(BeEmpty())
	})
})

package hooking

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("HookableBase", func() {
	var (
		base *HookableBase
		posA = &HookPos{Name: "A"}
		posB = &HookPos{Name: "B"}
	)

	BeforeEach(func() {
		base = &HookableBase{}
	})

	It("should invoke hooks in registration order", func() {
		order := []string{}
		base.AcceptHook(AtPos(posA, func(HookCtx) { order = append(order, "first") }))
		base.AcceptHook(AtPos(posA, func(HookCtx) { order = append(order, "second") }))

		base.InvokeHook(HookCtx{Domain: base, Pos: posA})

		Expect(order).To(Equal([]string{"first", "second"}))
		Expect(base.NumHooks()).To(Equal(2))
	})

	It("should filter by position", func() {
		called := 0
		base.AcceptHook(AtPos(posA, func(HookCtx) { called++ }))

		base.InvokeHook(HookCtx{Domain: base, Pos: posB})
		Expect(called).To(Equal(0))

		base.InvokeHook(HookCtx{Domain: base, Pos: posA, Item: 1})
		Expect(called).To(Equal(1))
	})

	It("should panic on duplicated hooks", func() {
		h := AtPos(posA, func(HookCtx) {})
		base.AcceptHook(h)

		Expect(func() { base.AcceptHook(h) }).To(Panic())
	})
})

package hooking

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingHook struct {
	ctxs []HookCtx
}

func (h *recordingHook) Func(ctx HookCtx) {
	h.ctxs = append(h.ctxs, ctx)
}

type namedDomain struct {
	HookableBase
}

func (d *namedDomain) Name() string {
	return "Domain"
}

var _ = Describe("HookableBase", func() {
	var (
		domain *namedDomain
		pos    *HookPos
	)

	BeforeEach(func() {
		domain = &namedDomain{}
		pos = &HookPos{Name: "Pos"}
	})

	It("should invoke hooks in registration order", func() {
		order := []string{}
		first := HookFunc(func(HookCtx) { order = append(order, "first") })
		second := HookFunc(func(HookCtx) { order = append(order, "second") })

		domain.AcceptHook(first)
		domain.AcceptHook(second)
		domain.InvokeHook(HookCtx{Domain: domain, Pos: pos})

		Expect(order).To(Equal([]string{"first", "second"}))
		Expect(domain.NumHooks()).To(Equal(2))
	})

	It("should pass the context through", func() {
		hook := &recordingHook{}
		domain.AcceptHook(hook)

		domain.InvokeHook(HookCtx{Domain: domain, Pos: pos, Item: 42})

		Expect(hook.ctxs).To(HaveLen(1))
		Expect(hook.ctxs[0].Domain.Name()).To(Equal("Domain"))
		Expect(hook.ctxs[0].Pos).To(BeIdenticalTo(pos))
		Expect(hook.ctxs[0].Item).To(Equal(42))
	})

	It("should panic when the same hook is registered twice", func() {
		hook := &recordingHook{}
		domain.AcceptHook(hook)

		Expect(func() { domain.AcceptHook(hook) }).To(Panic())
		Expect(domain.Hooks()).To(HaveLen(1))
	})
})

package analysis

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/mem/mem"
	"github.com/sarchlab/cachesim/sim/hooking"
)

type level struct {
	hooking.HookableBase
	name string
}

func (l *level) Name() string {
	return l.name
}

var _ = Describe("FootprintTracer", func() {
	var (
		l1     *level
		l2     *level
		tracer *FootprintTracer
	)

	access := func(domain hooking.Hookable, address uint32, hit bool) {
		tracer.Func(hooking.HookCtx{
			Domain: domain,
			Pos:    mem.HookPosAccess,
			Item:   mem.AccessEvent{Op: mem.OpRead, Address: address, Hit: hit},
		})
	}

	BeforeEach(func() {
		l1 = &level{name: "L1"}
		l2 = &level{name: "L2"}
		tracer = NewFootprintTracer("L1", 16)
	})

	It("should count first-touch misses as compulsory", func() {
		access(l1, 0x00, false)
		access(l1, 0x04, true)
		access(l1, 0x10, false)
		access(l1, 0x00, false)

		f := tracer.Footprint()
		Expect(f.Accesses).To(Equal(uint64(4)))
		Expect(f.Misses).To(Equal(uint64(3)))
		Expect(f.CompulsoryMisses).To(Equal(uint64(2)))
		Expect(f.DistinctBlocks).To(Equal(uint64(2)))
		Expect(f.Bytes()).To(Equal(uint64(32)))
	})

	It("should ignore other levels and evictions", func() {
		access(l2, 0x00, false)
		tracer.Func(hooking.HookCtx{
			Domain: l1,
			Pos:    mem.HookPosEvict,
			Item:   mem.EvictEvent{Address: 0x40},
		})

		Expect(tracer.Footprint().Accesses).To(BeZero())
		Expect(tracer.Footprint().DistinctBlocks).To(BeZero())
	})

	It("should handle the top of the address space", func() {
		access(l1, 0xFFFFFFFF, false)
		access(l1, 0xFFFFFFF0, false)

		Expect(tracer.Footprint().DistinctBlocks).To(Equal(uint64(1)))
		Expect(tracer.Footprint().CompulsoryMisses).To(Equal(uint64(1)))
	})

	It("should refuse a block size that is not a power of two", func() {
		Expect(func() { NewFootprintTracer("L1", 12) }).To(Panic())
	})
})

package cache

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/cachesim/mem/mem"
	"github.com/sarchlab/cachesim/sim/hooking"
	"go.uber.org/mock/gomock"
)

func rankInvariantMustHold(c *Comp) {
	for setID := 0; setID < c.NumSets(); setID++ {
		set := c.tags.GetSet(setID)

		ranks := []int{}
		for _, b := range set.Blocks {
			if b.IsValid {
				ranks = append(ranks, b.Rank)
			}
		}

		Expect(len(ranks)).To(Equal(set.Occupancy))
		Expect(set.Occupancy).To(BeNumerically("<=", c.NumWays()))

		expected := make([]any, 0, len(ranks))
		for i := range ranks {
			expected = append(expected, i)
		}
		Expect(ranks).To(ConsistOf(expected...))
	}
}

var _ = Describe("Cache", func() {
	var (
		mockCtrl  *gomock.Controller
		lowModule *MockLowModule
		c         *Comp
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		lowModule = NewMockLowModule(mockCtrl)

		var err error
		c, err = MakeBuilder().
			WithBlockSize(16).
			WithByteSize(64).
			WithWayAssociativity(2).
			WithLowModule(lowModule).
			Build("Cache")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	DescribeTable("parsing addresses",
		func(address uint32, tag uint32, setID int) {
			actualTag, actualSetID := c.Parse(address)

			Expect(actualTag).To(Equal(tag))
			Expect(actualSetID).To(Equal(setID))
		},
		Entry("first block", uint32(0x00), uint32(0), 0),
		Entry("offset ignored", uint32(0x0f), uint32(0), 0),
		Entry("second set", uint32(0x10), uint32(0), 1),
		Entry("next tag", uint32(0x20), uint32(1), 0),
		Entry("high bits in tag", uint32(0xffffffff), uint32(0x7ffffff), 1),
	)

	It("should fetch the block on a read miss", func() {
		lowModule.EXPECT().Read(uint32(0x24)).Return(true)

		hit := c.Read(0x24)

		Expect(hit).To(BeFalse())
		Expect(c.Stats()).To(Equal(Stats{Reads: 1, ReadMisses: 1}))
		Expect(c.Occupancy(0)).To(Equal(1))
	})

	It("should hit without touching the low module", func() {
		lowModule.EXPECT().Read(uint32(0x20)).Return(true)
		c.Read(0x20)

		hit := c.Read(0x2c)

		Expect(hit).To(BeTrue())
		Expect(c.Stats()).To(Equal(Stats{Reads: 2, ReadMisses: 1}))
	})

	It("should install a dirty block on a write miss", func() {
		lowModule.EXPECT().Read(uint32(0x10)).Return(true)

		hit := c.Write(0x10)

		Expect(hit).To(BeFalse())
		Expect(c.Stats()).To(Equal(Stats{Writes: 1, WriteMisses: 1}))
		Expect(c.Contents()[1].Blocks).To(Equal([]BlockContent{
			{Tag: 0, Dirty: true},
		}))
	})

	It("should mark a block dirty on a write hit", func() {
		lowModule.EXPECT().Read(uint32(0x00)).Return(true)
		c.Read(0x00)

		hit := c.Write(0x04)

		Expect(hit).To(BeTrue())
		Expect(c.Contents()[0].Blocks).To(Equal([]BlockContent{
			{Tag: 0, Dirty: true},
		}))
	})

	It("should evict a clean block without a writeback", func() {
		lowModule.EXPECT().Read(gomock.Any()).Return(true).Times(3)

		c.Read(0x20)
		c.Read(0x40)
		c.Read(0x60)

		Expect(c.Stats().Writebacks).To(Equal(uint64(0)))
		Expect(c.Occupancy(0)).To(Equal(2))
	})

	It("should write back a dirty victim to its block address", func() {
		gomock.InOrder(
			lowModule.EXPECT().Read(uint32(0x24)).Return(true),
			lowModule.EXPECT().Read(uint32(0x40)).Return(true),
			lowModule.EXPECT().Read(uint32(0x60)).Return(true),
			lowModule.EXPECT().Write(uint32(0x20)).Return(true),
		)

		c.Write(0x24)
		c.Read(0x40)
		c.Read(0x60)

		Expect(c.Stats().Writebacks).To(Equal(uint64(1)))
		Expect(c.Contents()[0].Blocks).To(Equal([]BlockContent{
			{Tag: 3}, {Tag: 2},
		}))
	})

	It("should evict the least recently used block", func() {
		lowModule.EXPECT().Read(gomock.Any()).Return(true).Times(3)

		c.Read(0x00)
		c.Read(0x20)
		c.Read(0x00)
		c.Read(0x40)

		Expect(c.Contents()[0].Blocks).To(Equal([]BlockContent{
			{Tag: 2}, {Tag: 0},
		}))
	})

	It("should keep miss counters when re-reading a hit", func() {
		lowModule.EXPECT().Read(gomock.Any()).Return(true).Times(2)
		c.Read(0x00)
		c.Read(0x20)
		c.Read(0x00)
		before := c.Stats()

		Expect(c.Read(0x00)).To(BeTrue())

		after := c.Stats()
		Expect(after.ReadMisses).To(Equal(before.ReadMisses))
		Expect(after.WriteMisses).To(Equal(before.WriteMisses))
		block, _ := c.tags.Lookup(0, 0)
		Expect(block.Rank).To(Equal(0))
	})

	It("should report accesses and evictions to hooks", func() {
		hook := NewMockHook(mockCtrl)
		c.AcceptHook(hook)
		lowModule.EXPECT().Read(gomock.Any()).Return(true).AnyTimes()
		lowModule.EXPECT().Write(gomock.Any()).Return(true).AnyTimes()

		var ctxs []hooking.HookCtx
		hook.EXPECT().Func(gomock.Any()).
			Do(func(ctx hooking.HookCtx) { ctxs = append(ctxs, ctx) }).
			Times(4)

		c.Write(0x20)
		c.Read(0x40)
		c.Read(0x60)

		Expect(ctxs[0].Pos).To(BeIdenticalTo(mem.HookPosAccess))
		Expect(ctxs[0].Domain).To(BeIdenticalTo(c))
		Expect(ctxs[0].Item).To(Equal(mem.AccessEvent{
			Op: mem.OpWrite, Address: 0x20, SetID: 0, Tag: 1,
		}))
		Expect(ctxs[2].Pos).To(BeIdenticalTo(mem.HookPosEvict))
		Expect(ctxs[2].Item).To(Equal(mem.EvictEvent{
			Address: 0x20, SetID: 0, Tag: 1, Dirty: true,
		}))
		Expect(ctxs[3].Pos).To(BeIdenticalTo(mem.HookPosAccess))
	})

	It("should keep LRU ranks consistent under random traffic", func() {
		lowModule.EXPECT().Read(gomock.Any()).Return(true).AnyTimes()
		lowModule.EXPECT().Write(gomock.Any()).Return(true).AnyTimes()

		rng := rand.New(rand.NewSource(7))
		for i := 0; i < 2000; i++ {
			addr := uint32(rng.Intn(16)) << 4
			if rng.Intn(2) == 0 {
				c.Read(addr)
			} else {
				c.Write(addr)
			}

			rankInvariantMustHold(c)
		}

		stats := c.Stats()
		Expect(stats.Accesses()).To(Equal(uint64(2000)))
		Expect(stats.MissRate()).To(And(
			BeNumerically(">=", 0), BeNumerically("<=", 1)))
	})
})

var _ = Describe("Stats", func() {
	It("should report zero miss rates without accesses", func() {
		Expect(Stats{}.MissRate()).To(Equal(0.0))
		Expect(Stats{}.ReadMissRate()).To(Equal(0.0))
	})

	It("should compute miss rates", func() {
		s := Stats{Reads: 3, ReadMisses: 1, Writes: 1, WriteMisses: 1}

		Expect(s.MissRate()).To(Equal(0.5))
		Expect(s.ReadMissRate()).To(BeNumerically("~", 1.0/3.0))
	})
})

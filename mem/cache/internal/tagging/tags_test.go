package tagging

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func ranksOf(set *Set) []int {
	ranks := make([]int, 0, len(set.Blocks))
	for _, b := range set.Blocks {
		ranks = append(ranks, b.Rank)
	}

	return ranks
}

var _ = Describe("Tags", func() {
	var (
		tags *tagArrayImpl
	)

	BeforeEach(func() {
		tags = NewTagArray(4, 4).(*tagArrayImpl)
	})

	It("should start with invalid blocks ranked by way", func() {
		set := tags.GetSet(2)

		Expect(set.Occupancy).To(Equal(0))
		Expect(set.IsFull()).To(BeFalse())
		Expect(ranksOf(set)).To(Equal([]int{0, 1, 2, 3}))

		for i, b := range set.Blocks {
			Expect(b.IsValid).To(BeFalse())
			Expect(b.SetID).To(Equal(2))
			Expect(b.WayID).To(Equal(i))
		}
	})

	It("should lookup", func() {
		block := tags.GetSet(1).Blocks[2]
		block.Tag = 0x100
		block.IsValid = true
		tags.Update(block)

		found, ok := tags.Lookup(1, 0x100)

		Expect(ok).To(BeTrue())
		Expect(found.WayID).To(Equal(2))
	})

	It("should not find a tag in another set", func() {
		block := tags.GetSet(1).Blocks[2]
		block.Tag = 0x100
		block.IsValid = true
		tags.Update(block)

		_, ok := tags.Lookup(0, 0x100)

		Expect(ok).To(BeFalse())
	})

	It("should not find invalid blocks", func() {
		block := tags.GetSet(1).Blocks[0]
		block.Tag = 0x100
		tags.Update(block)

		found, ok := tags.Lookup(1, 0x100)

		Expect(ok).To(BeFalse())
		Expect(found).To(BeZero())
	})

	It("should move a visited block to rank 0", func() {
		set := tags.GetSet(0)

		tags.Visit(set.Blocks[2])

		Expect(ranksOf(set)).To(Equal([]int{1, 2, 0, 3}))
	})

	It("should not change ranks when visiting the MRU block", func() {
		set := tags.GetSet(0)
		tags.Visit(set.Blocks[3])
		before := ranksOf(set)

		tags.Visit(set.Blocks[3])

		Expect(ranksOf(set)).To(Equal(before))
		Expect(set.Blocks[3].Rank).To(Equal(0))
	})

	It("should keep ranks a permutation after many visits", func() {
		set := tags.GetSet(3)
		for _, way := range []int{3, 1, 1, 0, 2, 3, 0, 1} {
			tags.Visit(set.Blocks[way])
		}

		Expect(ranksOf(set)).To(ConsistOf(0, 1, 2, 3))
		Expect(set.Blocks[1].Rank).To(Equal(0))
		Expect(set.Blocks[0].Rank).To(Equal(1))
	})

	It("should invalidate everything on reset", func() {
		block := tags.GetSet(1).Blocks[2]
		block.IsValid = true
		tags.Update(block)
		tags.GetSet(1).Occupancy = 1

		tags.Reset()

		Expect(tags.GetSet(1).Blocks[2].IsValid).To(BeFalse())
		Expect(tags.GetSet(1).Occupancy).To(Equal(0))
	})
})

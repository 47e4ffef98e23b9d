package tagging

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LRUVictimFinder", func() {
	var (
		tags   TagArray
		finder *LRUVictimFinder
	)

	BeforeEach(func() {
		tags = NewTagArray(2, 4)
		finder = NewLRUVictimFinder()
	})

	It("should pick an empty way while the set is not full", func() {
		set := tags.GetSet(1)
		for i := 0; i < 2; i++ {
			victim := finder.FindVictim(tags, 1)
			Expect(victim.IsValid).To(BeFalse())

			victim.IsValid = true
			victim.Tag = uint32(i)
			tags.Update(victim)
			tags.Visit(victim)
			set.Occupancy++
		}

		victim := finder.FindVictim(tags, 1)

		Expect(victim.IsValid).To(BeFalse())
	})

	It("should pick the least recently used block", func() {
		set := tags.GetSet(0)
		for i := range set.Blocks {
			block := set.Blocks[i]
			block.IsValid = true
			block.Tag = uint32(i)
			tags.Update(block)
			tags.Visit(block)
		}
		set.Occupancy = 4

		tags.Visit(set.Blocks[0])

		victim := finder.FindVictim(tags, 0)

		Expect(victim.Tag).To(Equal(uint32(1)))
	})

	It("should break ties by the lowest way", func() {
		set := tags.GetSet(0)
		for i := range set.Blocks {
			set.Blocks[i].Rank = 5
		}

		victim := finder.FindVictim(tags, 0)

		Expect(victim.WayID).To(Equal(0))
	})
})

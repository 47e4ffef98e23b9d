package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Builder", func() {
	var (
		mockCtrl  *gomock.Controller
		lowModule *MockLowModule
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		lowModule = NewMockLowModule(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should derive the address layout", func() {
		c, err := MakeBuilder().
			WithBlockSize(32).
			WithByteSize(8192).
			WithWayAssociativity(4).
			WithLowModule(lowModule).
			Build("L1")

		Expect(err).NotTo(HaveOccurred())
		Expect(c.Name()).To(Equal("L1"))
		Expect(c.NumSets()).To(Equal(64))
		Expect(c.NumWays()).To(Equal(4))
		Expect(c.OffsetBits()).To(Equal(5))
		Expect(c.IndexBits()).To(Equal(6))
		Expect(c.TagBits()).To(Equal(21))
		Expect(c.LowModule()).To(BeIdenticalTo(lowModule))
	})

	It("should allow a single set", func() {
		c, err := MakeBuilder().
			WithBlockSize(16).
			WithByteSize(64).
			WithWayAssociativity(4).
			WithLowModule(lowModule).
			Build("FullyAssociative")

		Expect(err).NotTo(HaveOccurred())
		Expect(c.NumSets()).To(Equal(1))
		Expect(c.IndexBits()).To(Equal(0))
		Expect(c.TagBits()).To(Equal(28))
	})

	DescribeTable("rejecting malformed geometry",
		func(blockSize, byteSize uint64, ways int) {
			c, err := MakeBuilder().
				WithBlockSize(blockSize).
				WithByteSize(byteSize).
				WithWayAssociativity(ways).
				WithLowModule(lowModule).
				Build("Bad")

			Expect(c).To(BeNil())
			Expect(err).To(MatchError(ErrInvalidGeometry))
		},
		Entry("zero block size", uint64(0), uint64(1024), 1),
		Entry("block size not a power of two", uint64(24), uint64(96), 1),
		Entry("zero associativity", uint64(16), uint64(1024), 0),
		Entry("zero capacity", uint64(16), uint64(0), 1),
		Entry("partial set", uint64(16), uint64(40), 2),
		Entry("set count not a power of two", uint64(16), uint64(48), 1),
		Entry("set size wrapping to zero", uint64(1<<32), uint64(64), 1<<32),
		Entry("set size overflowing", uint64(1<<40), uint64(1<<20), 1<<30),
	)

	It("should require a low module", func() {
		_, err := MakeBuilder().Build("Orphan")

		Expect(err).To(HaveOccurred())
	})

	It("should panic on an unknown replacement strategy", func() {
		Expect(func() {
			_, _ = MakeBuilder().
				WithReplaceStrategy("random").
				WithLowModule(lowModule).
				Build("Random")
		}).To(Panic())
	})
})

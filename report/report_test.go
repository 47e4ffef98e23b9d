package report

import (
	"bytes"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/analysis"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/simulation"
)

var _ = Describe("Report", func() {
	var buf *bytes.Buffer

	BeforeEach(func() {
		buf = new(bytes.Buffer)
	})

	It("should print the contents of a level in rank order", func() {
		WriteContents(buf, simulation.LevelContents{
			Name:    "L1",
			Enabled: true,
			Sets: []cache.SetContent{
				{SetID: 0, Blocks: []cache.BlockContent{
					{Tag: 0x2a, Dirty: true}, {Tag: 0x1},
				}},
				{SetID: 1},
			},
		})

		Expect(buf.String()).To(Equal(
			"===== L1 contents =====\n" +
				"set 0: 2a D 1\n" +
				"set 1:\n"))
	})

	It("should print only the header for a disabled level", func() {
		WriteContents(buf, simulation.LevelContents{Name: "L2"})

		Expect(buf.String()).To(Equal("===== L2 contents =====\n"))
	})

	It("should print the measurements table", func() {
		WriteStats(buf, simulation.Snapshot{
			L1: simulation.LevelStats{
				Reads: 2, ReadMisses: 1, Writes: 1, WriteMisses: 1,
				Writebacks: 1, MissRate: 2.0 / 3.0,
			},
			L2:            simulation.LevelStats{Name: "L2"},
			MemoryTraffic: 3,
		})

		lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
		Expect(lines).To(HaveLen(21))
		Expect(lines[0]).To(Equal("===== Measurements ====="))
		Expect(lines[1]).To(Equal("----- L1 Cache -----"))
		Expect(lines[2]).To(Equal("a. L1 reads                   : 2"))
		Expect(lines[6]).To(Equal("e. L1 miss rate               : 0.6667"))
		Expect(lines[8]).To(Equal("g. L1 prefetches              : 0"))
		Expect(lines[14]).To(Equal("l. L2 writes                  : 0"))
		Expect(lines[16]).To(Equal("n. L2 miss rate               : 0.0000"))
		Expect(lines[20]).To(Equal("q. Memory traffic             : 3"))
	})

	It("should print the footprint", func() {
		WriteFootprint(buf, analysis.Footprint{
			Level: "L1", BlockSize: 16, Misses: 5,
			DistinctBlocks: 3, CompulsoryMisses: 3,
		})

		Expect(buf.String()).To(ContainSubstring("----- L1 Footprint -----"))
		Expect(buf.String()).To(ContainSubstring(
			"Footprint bytes               : 48"))
		Expect(buf.String()).To(ContainSubstring(
			"Other misses                  : 2"))
	})

	It("should print one sweep row per configuration", func() {
		WriteSweep(buf, []simulation.SweepResult{
			{
				Config: simulation.Config{BlockSize: 16, L1Size: 64, L1Assoc: 1},
				Stats: simulation.Snapshot{
					L1:            simulation.LevelStats{MissRate: 0.25},
					MemoryTraffic: 9,
				},
			},
			{
				Config: simulation.Config{BlockSize: 16, L1Size: 48, L1Assoc: 1},
				Err:    errors.New("bad geometry"),
			},
		})

		lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
		Expect(lines).To(HaveLen(4))
		Expect(lines[2]).To(MatchRegexp(`^16\s+64\s+1\s+0\s+0\s+0\.2500\s+0\.0000\s+0\s+9$`))
		Expect(lines[3]).To(ContainSubstring("bad geometry"))
	})
})

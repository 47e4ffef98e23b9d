// Package report prints simulation results in the measurement format of the
// cache simulator.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/sarchlab/cachesim/analysis"
	"github.com/sarchlab/cachesim/simulation"
)

const labelWidth = 30

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	sectionColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
)

func writeStat(w io.Writer, label string, value any) {
	fmt.Fprintf(w, "%-*s: %v\n", labelWidth, label, value)
}

func formatRate(rate float64) string {
	return fmt.Sprintf("%.4f", rate)
}

// WriteContents prints the valid blocks of every set of a level, from the
// most to the least recently used. Dirty blocks are followed by D.
func WriteContents(w io.Writer, level simulation.LevelContents) {
	titleColor.Fprintf(w, "===== %s contents =====\n", level.Name)

	for _, set := range level.Sets {
		fmt.Fprintf(w, "set %d:", set.SetID)

		for _, b := range set.Blocks {
			fmt.Fprintf(w, " %x", b.Tag)

			if b.Dirty {
				fmt.Fprint(w, " D")
			}
		}

		fmt.Fprintln(w)
	}
}

// WriteStats prints the measurements table. Prefetching is disabled, so the
// prefetch rows are always 0.
func WriteStats(w io.Writer, s simulation.Snapshot) {
	titleColor.Fprintln(w, "===== Measurements =====")

	sectionColor.Fprintln(w, "----- L1 Cache -----")
	writeStat(w, "a. L1 reads", s.L1.Reads)
	writeStat(w, "b. L1 read misses", s.L1.ReadMisses)
	writeStat(w, "c. L1 writes", s.L1.Writes)
	writeStat(w, "d. L1 write misses", s.L1.WriteMisses)
	writeStat(w, "e. L1 miss rate", formatRate(s.L1.MissRate))
	writeStat(w, "f. L1 writebacks", s.L1.Writebacks)
	writeStat(w, "g. L1 prefetches", 0)

	sectionColor.Fprintln(w, "----- L2 Cache -----")
	writeStat(w, "h. L2 reads (demand)", s.L2.Reads)
	writeStat(w, "i. L2 read misses (demand)", s.L2.ReadMisses)
	writeStat(w, "j. L2 reads (prefetch)", 0)
	writeStat(w, "k. L2 read misses (prefetch)", 0)
	writeStat(w, "l. L2 writes", s.L2.Writes)
	writeStat(w, "m. L2 write misses", s.L2.WriteMisses)
	writeStat(w, "n. L2 miss rate", formatRate(s.L2.MissRate))
	writeStat(w, "o. L2 writebacks", s.L2.Writebacks)
	writeStat(w, "p. L2 prefetches", 0)

	sectionColor.Fprintln(w, "----- Memory -----")
	writeStat(w, "q. Memory traffic", s.MemoryTraffic)
}

// WriteFootprint prints the block footprint of a level.
func WriteFootprint(w io.Writer, f analysis.Footprint) {
	sectionColor.Fprintf(w, "----- %s Footprint -----\n", f.Level)
	writeStat(w, "Distinct blocks", f.DistinctBlocks)
	writeStat(w, "Footprint bytes", f.Bytes())
	writeStat(w, "Compulsory misses", f.CompulsoryMisses)
	writeStat(w, "Other misses", f.Misses-f.CompulsoryMisses)
}

// WriteSweep prints one row per configuration of a sweep.
func WriteSweep(w io.Writer, results []simulation.SweepResult) {
	titleColor.Fprintln(w, "===== Sweep =====")

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw,
		"block\tL1 size\tL1 assoc\tL2 size\tL2 assoc\t"+
			"L1 miss rate\tL2 miss rate\twritebacks\tmemory traffic")

	for _, r := range results {
		c := r.Config
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t",
			c.BlockSize, c.L1Size, c.L1Assoc, c.L2Size, c.L2Assoc)

		if r.Err != nil {
			fmt.Fprintf(tw, "%s\n", errorColor.Sprint(r.Err))
			continue
		}

		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n",
			formatRate(r.Stats.L1.MissRate),
			formatRate(r.Stats.L2.MissRate),
			r.Stats.L1.Writebacks+r.Stats.L2.Writebacks,
			r.Stats.MemoryTraffic)
	}

	tw.Flush()
}

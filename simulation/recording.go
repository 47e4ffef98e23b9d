package simulation

import (
	"slices"

	"github.com/sarchlab/cachesim/datarecording"
)

const (
	levelStatsTable = "level_stats"
	sweepTable      = "sweep_results"
)

type levelStatsEntry struct {
	Run         string
	Level       string
	Enabled     bool
	Reads       uint64
	ReadMisses  uint64
	Writes      uint64
	WriteMisses uint64
	Writebacks  uint64
	MissRate    float64
}

type sweepEntry struct {
	BlockSize     uint64
	L1Size        uint64
	L1Assoc       int
	L2Size        uint64
	L2Assoc       int
	Error         string
	L1MissRate    float64
	L2MissRate    float64
	Writebacks    uint64
	MemoryTraffic uint64
}

func ensureTable(
	recorder datarecording.DataRecorder,
	name string,
	sample any,
) {
	if slices.Contains(recorder.ListTables(), name) {
		return
	}

	recorder.CreateTable(name, sample)
}

func makeLevelStatsEntry(run string, s LevelStats) levelStatsEntry {
	return levelStatsEntry{
		Run:         run,
		Level:       s.Name,
		Enabled:     s.Enabled,
		Reads:       s.Reads,
		ReadMisses:  s.ReadMisses,
		Writes:      s.Writes,
		WriteMisses: s.WriteMisses,
		Writebacks:  s.Writebacks,
		MissRate:    s.MissRate,
	}
}

// RecordStats stores the per-level counters of a snapshot in the level_stats
// table, tagged with the run label.
func RecordStats(
	recorder datarecording.DataRecorder,
	run string,
	snapshot Snapshot,
) {
	ensureTable(recorder, levelStatsTable, levelStatsEntry{})

	recorder.InsertData(levelStatsTable, makeLevelStatsEntry(run, snapshot.L1))
	recorder.InsertData(levelStatsTable, makeLevelStatsEntry(run, snapshot.L2))
}

// RecordSweep stores one sweep_results row per configuration.
func RecordSweep(recorder datarecording.DataRecorder, results []SweepResult) {
	ensureTable(recorder, sweepTable, sweepEntry{})

	for _, r := range results {
		entry := sweepEntry{
			BlockSize: r.Config.BlockSize,
			L1Size:    r.Config.L1Size,
			L1Assoc:   r.Config.L1Assoc,
			L2Size:    r.Config.L2Size,
			L2Assoc:   r.Config.L2Assoc,
		}

		if r.Err != nil {
			entry.Error = r.Err.Error()
		} else {
			entry.L1MissRate = r.Stats.L1.MissRate
			entry.L2MissRate = r.Stats.L2.MissRate
			entry.Writebacks = r.Stats.L1.Writebacks + r.Stats.L2.Writebacks
			entry.MemoryTraffic = r.Stats.MemoryTraffic
		}

		recorder.InsertData(sweepTable, entry)
	}
}

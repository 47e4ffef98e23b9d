package simulation

import "github.com/sarchlab/cachesim/mem/cache"

// LevelStats are the counters of one level plus its miss rate.
type LevelStats struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`

	Reads       uint64 `json:"reads"`
	ReadMisses  uint64 `json:"read_misses"`
	Writes      uint64 `json:"writes"`
	WriteMisses uint64 `json:"write_misses"`
	Writebacks  uint64 `json:"writebacks"`

	// MissRate is (read misses + write misses) / (reads + writes) for L1 and
	// read misses / reads for L2. It is 0 when nothing was accessed.
	MissRate float64 `json:"miss_rate"`
}

// Snapshot is a copy of every counter of a hierarchy at one moment.
type Snapshot struct {
	Accesses      uint64     `json:"accesses"`
	Ignored       uint64     `json:"ignored"`
	L1            LevelStats `json:"l1"`
	L2            LevelStats `json:"l2"`
	MemoryReads   uint64     `json:"memory_reads"`
	MemoryWrites  uint64     `json:"memory_writes"`
	MemoryTraffic uint64     `json:"memory_traffic"`
}

func levelStats(name string, s cache.Stats, missRate float64) LevelStats {
	return LevelStats{
		Name:        name,
		Enabled:     true,
		Reads:       s.Reads,
		ReadMisses:  s.ReadMisses,
		Writes:      s.Writes,
		WriteMisses: s.WriteMisses,
		Writebacks:  s.Writebacks,
		MissRate:    missRate,
	}
}

// Stats takes a snapshot of the hierarchy counters. A disabled L2 reports
// zeros.
func (h *Hierarchy) Stats() Snapshot {
	l1 := h.l1.Stats()
	memStats := h.memory.Stats()

	snapshot := Snapshot{
		Accesses:      h.accesses,
		Ignored:       h.ignored,
		L1:            levelStats("L1", l1, l1.MissRate()),
		L2:            LevelStats{Name: "L2"},
		MemoryReads:   memStats.Reads,
		MemoryWrites:  memStats.Writes,
		MemoryTraffic: memStats.Traffic(),
	}

	if h.l2 != nil {
		l2 := h.l2.Stats()
		snapshot.L2 = levelStats("L2", l2, l2.ReadMissRate())
	}

	return snapshot
}

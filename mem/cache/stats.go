package cache

// Stats are the counters of a cache level.
type Stats struct {
	Reads       uint64
	ReadMisses  uint64
	Writes      uint64
	WriteMisses uint64
	Writebacks  uint64
}

// Accesses returns the number of reads and writes.
func (s Stats) Accesses() uint64 {
	return s.Reads + s.Writes
}

// Misses returns the number of read and write misses.
func (s Stats) Misses() uint64 {
	return s.ReadMisses + s.WriteMisses
}

// MissRate is the fraction of all accesses that missed.
func (s Stats) MissRate() float64 {
	return Ratio(s.Misses(), s.Accesses())
}

// ReadMissRate is the fraction of reads that missed.
func (s Stats) ReadMissRate() float64 {
	return Ratio(s.ReadMisses, s.Reads)
}

// Ratio divides two counters, returning 0 when the denominator is 0.
func Ratio(numerator, denominator uint64) float64 {
	if denominator == 0 {
		return 0
	}

	return float64(numerator) / float64(denominator)
}

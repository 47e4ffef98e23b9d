// Package analysis provides hooks that derive metrics from the events of the
// cache levels.
package analysis

import (
	"math/bits"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/sarchlab/cachesim/mem/mem"
	"github.com/sarchlab/cachesim/sim/hooking"
)

// Footprint summarizes which blocks a level has seen.
type Footprint struct {
	Level            string
	BlockSize        uint64
	Accesses         uint64
	Misses           uint64
	DistinctBlocks   uint64
	CompulsoryMisses uint64
}

// Bytes returns the size of the distinct blocks touched.
func (f Footprint) Bytes() uint64 {
	return f.DistinctBlocks * f.BlockSize
}

// FootprintTracer is a hook that counts the distinct blocks a level touches
// and the misses that are first touches of a block.
type FootprintTracer struct {
	level         string
	blockSize     uint64
	log2BlockSize int

	blocks     *roaring.Bitmap
	accesses   uint64
	misses     uint64
	compulsory uint64
}

// NewFootprintTracer creates a tracer for blocks of the given size. It only
// counts events from the level with the given name.
func NewFootprintTracer(level string, blockSize uint64) *FootprintTracer {
	if blockSize == 0 || bits.OnesCount64(blockSize) != 1 {
		panic("block size must be a power of two")
	}

	return &FootprintTracer{
		level:         level,
		blockSize:     blockSize,
		log2BlockSize: bits.TrailingZeros64(blockSize),
		blocks:        roaring.New(),
	}
}

// Func records an access event.
func (t *FootprintTracer) Func(ctx hooking.HookCtx) {
	if ctx.Pos != mem.HookPosAccess || ctx.Domain.Name() != t.level {
		return
	}

	e, ok := ctx.Item.(mem.AccessEvent)
	if !ok {
		return
	}

	t.accesses++

	firstTouch := t.blocks.CheckedAdd(e.Address >> t.log2BlockSize)

	if !e.Hit {
		t.misses++

		if firstTouch {
			t.compulsory++
		}
	}
}

// Footprint returns the counters collected so far.
func (t *FootprintTracer) Footprint() Footprint {
	return Footprint{
		Level:            t.level,
		BlockSize:        t.blockSize,
		Accesses:         t.accesses,
		Misses:           t.misses,
		DistinctBlocks:   t.blocks.GetCardinality(),
		CompulsoryMisses: t.compulsory,
	}
}

package cache

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/sarchlab/cachesim/mem/cache/internal/tagging"
	"github.com/sarchlab/cachesim/mem/mem"
)

// ErrInvalidGeometry is returned when the size parameters of a cache cannot
// be decomposed into power-of-two sets and blocks.
var ErrInvalidGeometry = errors.New("invalid cache geometry")

// Builder can build caches.
type Builder struct {
	blockSize        uint64
	byteSize         uint64
	wayAssociativity int
	replaceStrategy  string
	lowModule        LowModule
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		blockSize:        64,
		byteSize:         16 * mem.KB,
		wayAssociativity: 4,
		replaceStrategy:  "lru",
	}
}

// WithBlockSize sets the number of bytes in a block. It must be a power of
// two.
func (b Builder) WithBlockSize(blockSize uint64) Builder {
	b.blockSize = blockSize
	return b
}

// WithByteSize sets the capacity of the cache.
func (b Builder) WithByteSize(byteSize uint64) Builder {
	b.byteSize = byteSize
	return b
}

// WithWayAssociativity sets the number of blocks in a set.
func (b Builder) WithWayAssociativity(wayAssociativity int) Builder {
	b.wayAssociativity = wayAssociativity
	return b
}

// WithReplaceStrategy sets the replacement policy. Only "lru" is supported.
func (b Builder) WithReplaceStrategy(strategy string) Builder {
	b.replaceStrategy = strategy
	return b
}

// WithLowModule sets the level that misses and writebacks go to.
func (b Builder) WithLowModule(lowModule LowModule) Builder {
	b.lowModule = lowModule
	return b
}

// Build builds a cache.
func (b Builder) Build(name string) (*Comp, error) {
	numSets, err := b.numSets()
	if err != nil {
		return nil, fmt.Errorf("cache %s: %w", name, err)
	}

	if b.lowModule == nil {
		return nil, fmt.Errorf("cache %s: no low module", name)
	}

	c := &Comp{
		name:          name,
		blockSize:     b.blockSize,
		byteSize:      b.byteSize,
		numWays:       b.wayAssociativity,
		numSets:       numSets,
		log2BlockSize: log2(b.blockSize),
		indexBits:     log2(uint64(numSets)),
		lowModule:     b.lowModule,
	}
	c.tagBits = mem.AddressBits - c.indexBits - c.log2BlockSize
	c.tags = tagging.NewTagArray(numSets, b.wayAssociativity)
	c.victimFinder = b.createVictimFinder()

	return c, nil
}

func (b Builder) numSets() (int, error) {
	if b.blockSize == 0 || !isPowerOfTwo(b.blockSize) {
		return 0, fmt.Errorf("%w: block size %d is not a power of two",
			ErrInvalidGeometry, b.blockSize)
	}

	if b.wayAssociativity <= 0 {
		return 0, fmt.Errorf("%w: associativity %d is not positive",
			ErrInvalidGeometry, b.wayAssociativity)
	}

	hi, setSize := bits.Mul64(b.blockSize, uint64(b.wayAssociativity))
	if hi != 0 || setSize > b.byteSize {
		return 0, fmt.Errorf("%w: %d ways of %d bytes exceed size %d",
			ErrInvalidGeometry, b.wayAssociativity, b.blockSize, b.byteSize)
	}

	if b.byteSize%setSize != 0 {
		return 0, fmt.Errorf(
			"%w: size %d is not a whole number of %d-byte sets",
			ErrInvalidGeometry, b.byteSize, setSize)
	}

	numSets := b.byteSize / setSize
	if !isPowerOfTwo(numSets) {
		return 0, fmt.Errorf("%w: set count %d is not a power of two",
			ErrInvalidGeometry, numSets)
	}

	if log2(b.blockSize)+log2(numSets) > mem.AddressBits {
		return 0, fmt.Errorf("%w: offset and index need more than %d bits",
			ErrInvalidGeometry, mem.AddressBits)
	}

	return int(numSets), nil
}

func (b Builder) createVictimFinder() tagging.VictimFinder {
	var victimFinder tagging.VictimFinder

	switch b.replaceStrategy {
	case "lru":
		victimFinder = tagging.NewLRUVictimFinder()
	default:
		panic("unknown replace strategy: " + b.replaceStrategy)
	}

	return victimFinder
}

func isPowerOfTwo(n uint64) bool {
	return n != 0 && bits.OnesCount64(n) == 1
}

func log2(n uint64) int {
	return bits.TrailingZeros64(n)
}

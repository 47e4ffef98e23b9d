// Package cache models one level of a set-associative, write-back,
// write-allocate cache with LRU replacement.
package cache

import (
	"sort"

	"github.com/sarchlab/cachesim/mem/cache/internal/tagging"
	"github.com/sarchlab/cachesim/mem/mem"
	"github.com/sarchlab/cachesim/sim/hooking"
)

// A LowModule is the next level below a cache. It is either another cache
// level or the backing memory. Both operations report whether the access
// hit.
type LowModule interface {
	Read(address uint32) bool
	Write(address uint32) bool
}

// A Comp implements a cache level.
type Comp struct {
	hooking.HookableBase

	name string

	blockSize     uint64
	byteSize      uint64
	numWays       int
	numSets       int
	log2BlockSize int
	indexBits     int
	tagBits       int

	tags         tagging.TagArray
	victimFinder tagging.VictimFinder
	lowModule    LowModule

	stats Stats
}

// Name returns the name of the cache.
func (c *Comp) Name() string {
	return c.name
}

// BlockSize returns the number of bytes in a block.
func (c *Comp) BlockSize() uint64 {
	return c.blockSize
}

// ByteSize returns the capacity of the cache.
func (c *Comp) ByteSize() uint64 {
	return c.byteSize
}

// NumSets returns the number of sets.
func (c *Comp) NumSets() int {
	return c.numSets
}

// NumWays returns the associativity.
func (c *Comp) NumWays() int {
	return c.numWays
}

// OffsetBits returns the number of address bits that select a byte in a
// block.
func (c *Comp) OffsetBits() int {
	return c.log2BlockSize
}

// IndexBits returns the number of address bits that select a set.
func (c *Comp) IndexBits() int {
	return c.indexBits
}

// TagBits returns the number of address bits stored as the tag.
func (c *Comp) TagBits() int {
	return c.tagBits
}

// LowModule returns the level below this cache.
func (c *Comp) LowModule() LowModule {
	return c.lowModule
}

// Stats returns a copy of the counters of the cache.
func (c *Comp) Stats() Stats {
	return c.stats
}

// Parse splits an address into its tag and set index. Bits above the tag
// width are kept in the tag.
func (c *Comp) Parse(address uint32) (tag uint32, setID int) {
	if c.numSets > 1 {
		setID = int((address >> c.log2BlockSize) & uint32(c.numSets-1))
	}

	tag = address >> (c.log2BlockSize + c.indexBits)

	return tag, setID
}

// blockAddress rebuilds the address of the first byte of a block.
func (c *Comp) blockAddress(tag uint32, setID int) uint32 {
	return tag<<(c.indexBits+c.log2BlockSize) |
		uint32(setID)<<c.log2BlockSize
}

// BlockContent is one valid block in a content dump.
type BlockContent struct {
	Tag   uint32
	Dirty bool
}

// SetContent lists the valid blocks of a set from the most to the least
// recently used.
type SetContent struct {
	SetID  int
	Blocks []BlockContent
}

// Contents dumps the valid blocks of every set in recency order.
func (c *Comp) Contents() []SetContent {
	contents := make([]SetContent, 0, c.numSets)

	for setID := 0; setID < c.numSets; setID++ {
		set := c.tags.GetSet(setID)

		valid := make([]tagging.Block, 0, len(set.Blocks))
		for _, b := range set.Blocks {
			if b.IsValid {
				valid = append(valid, b)
			}
		}

		sort.Slice(valid, func(i, j int) bool {
			return valid[i].Rank < valid[j].Rank
		})

		sc := SetContent{
			SetID:  setID,
			Blocks: make([]BlockContent, 0, len(valid)),
		}
		for _, b := range valid {
			sc.Blocks = append(sc.Blocks, BlockContent{
				Tag:   b.Tag,
				Dirty: b.IsDirty,
			})
		}

		contents = append(contents, sc)
	}

	return contents
}

// Occupancy returns the number of valid blocks in a set.
func (c *Comp) Occupancy(setID int) int {
	return c.tags.GetSet(setID).Occupancy
}

func (c *Comp) access(op mem.Op, address uint32) bool {
	tag, setID := c.Parse(address)

	block, hit := c.tags.Lookup(setID, tag)
	if hit {
		if op == mem.OpWrite {
			block.IsDirty = true
			c.tags.Update(block)
		}

		c.tags.Visit(block)
	} else {
		c.handleMiss(op, address, tag, setID)
	}

	c.traceAccess(op, address, tag, setID, hit)

	return hit
}

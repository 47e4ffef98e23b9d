package tagging

// TagArray keeps the tags and LRU ranks of every block in a cache.
type TagArray interface {
	// Lookup returns the valid block in the set that holds the tag.
	Lookup(setID int, tag uint32) (Block, bool)

	// Update overwrites the block at the block's set and way.
	Update(block Block)

	// Visit marks the block as the most recently used one in its set.
	Visit(block Block)

	// GetSet returns the set with the given ID.
	GetSet(setID int) *Set

	NumSets() int
	NumWays() int

	// Reset invalidates every block.
	Reset()
}

// NewTagArray creates a tag array with all blocks invalid.
func NewTagArray(numSets, numWays int) TagArray {
	t := &tagArrayImpl{
		numSets: numSets,
		numWays: numWays,
	}

	t.Reset()

	return t
}

// A Block of a cache is the information that is associated with a cache line.
type Block struct {
	SetID   int
	WayID   int
	Tag     uint32
	Rank    int
	IsValid bool
	IsDirty bool
}

// A Set is the group of blocks that an address can be stored at.
//
// Ranks of all blocks in a set form a permutation of 0..NumWays-1. Valid
// blocks always hold the lowest ranks, so the ranks of the valid blocks are
// exactly 0..Occupancy-1 with 0 being the most recently used.
type Set struct {
	Blocks    []Block
	Occupancy int
}

// IsFull tells if every way of the set holds a valid block.
func (s *Set) IsFull() bool {
	return s.Occupancy >= len(s.Blocks)
}

type tagArrayImpl struct {
	numSets int
	numWays int
	sets    []Set
}

func (t *tagArrayImpl) NumSets() int {
	return t.numSets
}

func (t *tagArrayImpl) NumWays() int {
	return t.numWays
}

func (t *tagArrayImpl) GetSet(setID int) *Set {
	return &t.sets[setID]
}

func (t *tagArrayImpl) Lookup(setID int, tag uint32) (Block, bool) {
	set := &t.sets[setID]
	for _, block := range set.Blocks {
		if block.IsValid && block.Tag == tag {
			return block, true
		}
	}

	return Block{}, false
}

func (t *tagArrayImpl) Update(block Block) {
	t.sets[block.SetID].Blocks[block.WayID] = block
}

// Visit shifts every block that was more recently used than the visited one
// by one rank and puts the visited block at rank 0.
func (t *tagArrayImpl) Visit(block Block) {
	set := &t.sets[block.SetID]
	prior := set.Blocks[block.WayID].Rank

	for i := range set.Blocks {
		if set.Blocks[i].Rank < prior {
			set.Blocks[i].Rank++
		}
	}

	set.Blocks[block.WayID].Rank = 0
}

func (t *tagArrayImpl) Reset() {
	t.sets = make([]Set, t.numSets)
	for i := 0; i < t.numSets; i++ {
		t.sets[i].Blocks = make([]Block, t.numWays)
		for j := 0; j < t.numWays; j++ {
			t.sets[i].Blocks[j] = Block{
				SetID: i,
				WayID: j,
				Rank:  j,
			}
		}
	}
}

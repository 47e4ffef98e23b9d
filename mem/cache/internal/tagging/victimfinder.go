package tagging

// A VictimFinder decides which block of a set gets replaced on a miss.
type VictimFinder interface {
	FindVictim(tags TagArray, setID int) Block
}

// LRUVictimFinder picks the least recently used block.
type LRUVictimFinder struct {
}

// NewLRUVictimFinder returns a newly constructed LRU victim finder.
func NewLRUVictimFinder() *LRUVictimFinder {
	return new(LRUVictimFinder)
}

// FindVictim returns the block with the highest rank. Ties go to the lowest
// way. While the set is not full the highest rank always belongs to an
// invalid block.
func (e *LRUVictimFinder) FindVictim(tags TagArray, setID int) Block {
	set := tags.GetSet(setID)

	victim := set.Blocks[0]
	for _, block := range set.Blocks[1:] {
		if block.Rank > victim.Rank {
			victim = block
		}
	}

	return victim
}

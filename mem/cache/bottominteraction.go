package cache

import (
	"github.com/sarchlab/cachesim/mem/cache/internal/tagging"
	"github.com/sarchlab/cachesim/mem/mem"
)

// handleMiss fetches the missing block from the low module, evicts the LRU
// block if the set is full, and installs the new block as the most recently
// used one.
func (c *Comp) handleMiss(op mem.Op, address uint32, tag uint32, setID int) {
	c.lowModule.Read(address)

	set := c.tags.GetSet(setID)
	victim := c.victimFinder.FindVictim(c.tags, setID)

	if set.IsFull() {
		c.evict(victim)
	} else {
		set.Occupancy++
	}

	victim.IsValid = true
	victim.IsDirty = op == mem.OpWrite
	victim.Tag = tag

	c.tags.Update(victim)
	c.tags.Visit(victim)
}

func (c *Comp) evict(victim tagging.Block) {
	victimAddr := c.blockAddress(victim.Tag, victim.SetID)

	if victim.IsDirty {
		c.stats.Writebacks++
		c.lowModule.Write(victimAddr)
	}

	c.traceEvict(victim, victimAddr)
}

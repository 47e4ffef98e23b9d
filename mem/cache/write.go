package cache

import "github.com/sarchlab/cachesim/mem/mem"

// Write serves a write and reports whether it hit. Writes never go through to
// the low module directly. A hit marks the block dirty. A miss fetches the
// block like a read does and installs it dirty.
func (c *Comp) Write(address uint32) bool {
	c.stats.Writes++

	hit := c.access(mem.OpWrite, address)
	if !hit {
		c.stats.WriteMisses++
	}

	return hit
}

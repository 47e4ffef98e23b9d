package cache

import "github.com/sarchlab/cachesim/mem/mem"

// Read serves a read and reports whether it hit. A miss fetches the block
// from the low module.
func (c *Comp) Read(address uint32) bool {
	c.stats.Reads++

	hit := c.access(mem.OpRead, address)
	if !hit {
		c.stats.ReadMisses++
	}

	return hit
}

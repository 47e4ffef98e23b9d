// Package idealmemcontroller provides the backing memory at the bottom of a
// cache hierarchy. It serves every access and only counts traffic.
package idealmemcontroller

import (
	"github.com/sarchlab/cachesim/mem/mem"
	"github.com/sarchlab/cachesim/sim/hooking"
)

// Stats are the counters of the backing memory.
type Stats struct {
	Reads  uint64
	Writes uint64
}

// Traffic is the total number of block transfers to and from memory.
func (s Stats) Traffic() uint64 {
	return s.Reads + s.Writes
}

// A Comp is an ideal memory. Every access hits.
type Comp struct {
	hooking.HookableBase

	name  string
	stats Stats
}

// Name returns the name of the memory.
func (c *Comp) Name() string {
	return c.name
}

// Read serves a block fetch.
func (c *Comp) Read(address uint32) bool {
	c.stats.Reads++
	c.trace(mem.OpRead, address)

	return true
}

// Write serves a block writeback.
func (c *Comp) Write(address uint32) bool {
	c.stats.Writes++
	c.trace(mem.OpWrite, address)

	return true
}

// Stats returns a copy of the counters.
func (c *Comp) Stats() Stats {
	return c.stats
}

// Traffic returns the number of block transfers so far.
func (c *Comp) Traffic() uint64 {
	return c.stats.Traffic()
}

func (c *Comp) trace(op mem.Op, address uint32) {
	if c.NumHooks() == 0 {
		return
	}

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    mem.HookPosAccess,
		Item: mem.AccessEvent{
			Op:      op,
			Address: address,
			Hit:     true,
		},
	})
}

// Package simulation wires cache levels into a hierarchy and drives it with
// memory traces.
package simulation

import (
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/idealmemcontroller"
	"github.com/sarchlab/cachesim/mem/mem"
	"github.com/sarchlab/cachesim/sim/hooking"
)

// A Hierarchy owns an L1, an optional L2 and the backing memory.
type Hierarchy struct {
	config Config

	l1     *cache.Comp
	l2     *cache.Comp
	memory *idealmemcontroller.Comp

	accesses uint64
	ignored  uint64
}

// Config returns the parameters the hierarchy was built with.
func (h *Hierarchy) Config() Config {
	return h.config
}

// L1 returns the first level.
func (h *Hierarchy) L1() *cache.Comp {
	return h.l1
}

// L2 returns the second level, or nil if it is disabled.
func (h *Hierarchy) L2() *cache.Comp {
	return h.l2
}

// Memory returns the backing memory.
func (h *Hierarchy) Memory() *idealmemcontroller.Comp {
	return h.memory
}

// Caches returns the enabled cache levels from top to bottom.
func (h *Hierarchy) Caches() []*cache.Comp {
	if h.l2 == nil {
		return []*cache.Comp{h.l1}
	}

	return []*cache.Comp{h.l1, h.l2}
}

// AcceptHook registers a hook with every cache level and the memory.
func (h *Hierarchy) AcceptHook(hook hooking.Hook) {
	for _, c := range h.Caches() {
		c.AcceptHook(hook)
	}

	h.memory.AcceptHook(hook)
}

// Access sends an access to L1 and reports whether it hit there. Accesses
// with an unrecognized operation are ignored.
func (h *Hierarchy) Access(op mem.Op, address uint32) bool {
	switch op {
	case mem.OpRead:
		h.accesses++
		return h.l1.Read(address)
	case mem.OpWrite:
		h.accesses++
		return h.l1.Write(address)
	default:
		h.ignored++
		return false
	}
}

// LevelContents is the content dump of one level.
type LevelContents struct {
	Name    string
	Enabled bool
	Sets    []cache.SetContent
}

// Contents dumps both levels. A disabled L2 is reported without sets.
func (h *Hierarchy) Contents() []LevelContents {
	contents := []LevelContents{
		{Name: "L1", Enabled: true, Sets: h.l1.Contents()},
		{Name: "L2"},
	}

	if h.l2 != nil {
		contents[1].Enabled = true
		contents[1].Sets = h.l2.Contents()
	}

	return contents
}

package cache

import (
	"github.com/sarchlab/cachesim/mem/cache/internal/tagging"
	"github.com/sarchlab/cachesim/mem/mem"
	"github.com/sarchlab/cachesim/sim/hooking"
)

func (c *Comp) traceAccess(
	op mem.Op,
	address uint32,
	tag uint32,
	setID int,
	hit bool,
) {
	if c.NumHooks() == 0 {
		return
	}

	ctx := hooking.HookCtx{
		Domain: c,
		Pos:    mem.HookPosAccess,
		Item: mem.AccessEvent{
			Op:      op,
			Address: address,
			SetID:   setID,
			Tag:     tag,
			Hit:     hit,
		},
	}

	c.InvokeHook(ctx)
}

func (c *Comp) traceEvict(victim tagging.Block, address uint32) {
	if c.NumHooks() == 0 {
		return
	}

	ctx := hooking.HookCtx{
		Domain: c,
		Pos:    mem.HookPosEvict,
		Item: mem.EvictEvent{
			Address: address,
			SetID:   victim.SetID,
			Tag:     victim.Tag,
			Dirty:   victim.IsDirty,
		},
	}

	c.InvokeHook(ctx)
}

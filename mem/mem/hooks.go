package mem

import "github.com/sarchlab/cachesim/sim/hooking"

// Hook positions shared by every level of the hierarchy.
var (
	// HookPosAccess is triggered after a level finishes serving an access.
	// The item is an AccessEvent.
	HookPosAccess = &hooking.HookPos{Name: "Access"}

	// HookPosEvict is triggered when a valid block is replaced. The item is
	// an EvictEvent.
	HookPosEvict = &hooking.HookPos{Name: "Evict"}
)

// AccessEvent describes an access served by a level.
type AccessEvent struct {
	Op      Op
	Address uint32
	SetID   int
	Tag     uint32
	Hit     bool
}

// EvictEvent describes a block replaced by a level. Address is the block
// address rebuilt from the tag and the set.
type EvictEvent struct {
	Address uint32
	SetID   int
	Tag     uint32
	Dirty   bool
}

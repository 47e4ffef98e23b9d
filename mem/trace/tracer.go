package trace

import (
	"log"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/mem"
	"github.com/sarchlab/cachesim/sim/hooking"
)

const (
	accessTable = "cache_accesses"
	evictTable  = "cache_evictions"
)

type accessEntry struct {
	Seq      uint64
	Location string
	Op       string
	Address  uint32
	SetID    int
	Tag      uint32
	Hit      bool
}

type evictEntry struct {
	Seq      uint64
	Location string
	Address  uint32
	SetID    int
	Tag      uint32
	Dirty    bool
}

// A tracer is a hook that writes the actions of the cache levels and the
// memory to a logger.
type tracer struct {
	logger *log.Logger
}

// NewTracer creates a hook that logs one line per access and eviction.
func NewTracer(logger *log.Logger) hooking.Hook {
	return &tracer{logger: logger}
}

func (t *tracer) Func(ctx hooking.HookCtx) {
	switch e := ctx.Item.(type) {
	case mem.AccessEvent:
		result := "miss"
		if e.Hit {
			result = "hit"
		}

		t.logger.Printf("access, %s, %s, 0x%08X, %d, 0x%X, %s",
			ctx.Domain.Name(), e.Op, e.Address, e.SetID, e.Tag, result)
	case mem.EvictEvent:
		state := "clean"
		if e.Dirty {
			state = "dirty"
		}

		t.logger.Printf("evict, %s, 0x%08X, %d, 0x%X, %s",
			ctx.Domain.Name(), e.Address, e.SetID, e.Tag, state)
	}
}

// A dbTracer is a hook that records the actions of the cache levels and the
// memory into a database using the data recorder.
type dbTracer struct {
	dataRecorder datarecording.DataRecorder
	seq          uint64
}

// NewDBTracer creates a hook that stores accesses in the cache_accesses table
// and evictions in the cache_evictions table. Seq orders rows across both
// tables.
func NewDBTracer(dataRecorder datarecording.DataRecorder) hooking.Hook {
	t := &dbTracer{dataRecorder: dataRecorder}

	t.dataRecorder.CreateTable(accessTable, accessEntry{})
	t.dataRecorder.CreateTable(evictTable, evictEntry{})

	return t
}

func (t *dbTracer) Func(ctx hooking.HookCtx) {
	switch e := ctx.Item.(type) {
	case mem.AccessEvent:
		t.seq++
		t.dataRecorder.InsertData(accessTable, accessEntry{
			Seq:      t.seq,
			Location: ctx.Domain.Name(),
			Op:       e.Op.String(),
			Address:  e.Address,
			SetID:    e.SetID,
			Tag:      e.Tag,
			Hit:      e.Hit,
		})
	case mem.EvictEvent:
		t.seq++
		t.dataRecorder.InsertData(evictTable, evictEntry{
			Seq:      t.seq,
			Location: ctx.Domain.Name(),
			Address:  e.Address,
			SetID:    e.SetID,
			Tag:      e.Tag,
			Dirty:    e.Dirty,
		})
	}
}

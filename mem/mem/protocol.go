// Package mem defines the accesses that flow through a memory hierarchy.
package mem

import "fmt"

// Byte sizes commonly used to describe caches.
const (
	KB uint64 = 1 << 10
	MB uint64 = 1 << 20
)

// AddressBits is the width of every address in the hierarchy.
const AddressBits = 32

// An Op is the kind of a memory access.
type Op int

// The operations that a trace can carry. OpInvalid marks a record whose
// operation tag is not recognized; the hierarchy ignores such accesses.
const (
	OpInvalid Op = iota
	OpRead
	OpWrite
)

// ParseOp converts a trace operation tag into an Op. Tags are case
// sensitive.
func ParseOp(tag string) Op {
	switch tag {
	case "r":
		return OpRead
	case "w":
		return OpWrite
	default:
		return OpInvalid
	}
}

// String returns the trace tag of the operation.
func (o Op) String() string {
	switch o {
	case OpRead:
		return "r"
	case OpWrite:
		return "w"
	default:
		return "?"
	}
}

// An Access is a single record of a memory trace.
type Access struct {
	Op      Op
	Address uint32
}

// String renders the access in the trace text format.
func (a Access) String() string {
	return fmt.Sprintf("%s 0x%X", a.Op, a.Address)
}

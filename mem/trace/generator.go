package trace

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"

	"github.com/sarchlab/cachesim/mem/mem"
)

// A Generator produces synthetic traces that alternate reads and writes to
// uniformly random addresses.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator. The same seed always produces the same
// trace.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Access returns the i-th access of a trace. Even positions are reads.
func (g *Generator) Access(i int) mem.Access {
	op := mem.OpRead
	if i%2 == 1 {
		op = mem.OpWrite
	}

	return mem.Access{Op: op, Address: g.rng.Uint32() % 0xFFFFFFFF}
}

// Generate writes n records to w.
func (g *Generator) Generate(w io.Writer, n int) error {
	bw := bufio.NewWriter(w)

	for i := 0; i < n; i++ {
		a := g.Access(i)
		if _, err := fmt.Fprintln(bw, a); err != nil {
			return err
		}
	}

	return bw.Flush()
}

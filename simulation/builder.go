package simulation

import (
	"fmt"

	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/idealmemcontroller"
)

// Builder can be used to build a hierarchy.
type Builder struct {
	config Config
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithConfig sets the parameters of the hierarchy.
func (b Builder) WithConfig(config Config) Builder {
	b.config = config
	return b
}

// Build validates the configuration and wires L1 to L2 to memory. When L2 is
// disabled L1 is wired straight to memory.
func (b Builder) Build() (*Hierarchy, error) {
	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	h := &Hierarchy{
		config: b.config,
		memory: idealmemcontroller.MakeBuilder().Build("Memory"),
	}

	var l1Low cache.LowModule = h.memory

	if b.config.L2Enabled() {
		l2, err := cache.MakeBuilder().
			WithBlockSize(b.config.BlockSize).
			WithByteSize(b.config.L2Size).
			WithWayAssociativity(b.config.L2Assoc).
			WithLowModule(h.memory).
			Build("L2")
		if err != nil {
			return nil, fmt.Errorf("building L2: %w", err)
		}

		h.l2 = l2
		l1Low = l2
	}

	l1, err := cache.MakeBuilder().
		WithBlockSize(b.config.BlockSize).
		WithByteSize(b.config.L1Size).
		WithWayAssociativity(b.config.L1Assoc).
		WithLowModule(l1Low).
		Build("L1")
	if err != nil {
		return nil, fmt.Errorf("building L1: %w", err)
	}

	h.l1 = l1

	return h, nil
}

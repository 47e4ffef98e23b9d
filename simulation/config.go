package simulation

import (
	"errors"
	"fmt"
	"math/bits"
)

// ErrInvalidConfig is returned when a configuration cannot describe a
// hierarchy.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the parameters of a two-level hierarchy. Every level shares
// BlockSize, which lets a level rebuild an evicted block address that the
// level below can parse.
type Config struct {
	BlockSize uint64
	L1Size    uint64
	L1Assoc   int
	L2Size    uint64
	L2Assoc   int

	// Prefetch parameters are accepted for compatibility. Prefetching is
	// disabled, so they do not affect the simulation.
	PrefetchN int
	PrefetchM int
}

// L2Enabled tells whether the configuration has a second level. A zero size
// or associativity disables L2.
func (c Config) L2Enabled() bool {
	return c.L2Size != 0 && c.L2Assoc != 0
}

// Validate checks that every enabled level has a power-of-two geometry.
func (c Config) Validate() error {
	if c.BlockSize == 0 || bits.OnesCount64(c.BlockSize) != 1 {
		return fmt.Errorf("%w: block size %d is not a power of two",
			ErrInvalidConfig, c.BlockSize)
	}

	if c.L1Size == 0 || c.L1Assoc <= 0 {
		return fmt.Errorf("%w: L1 must have a positive size and associativity",
			ErrInvalidConfig)
	}

	if err := c.levelMustHavePowerOfTwoSets("L1", c.L1Size, c.L1Assoc); err != nil {
		return err
	}

	if c.L2Assoc < 0 {
		return fmt.Errorf("%w: L2 associativity %d is negative",
			ErrInvalidConfig, c.L2Assoc)
	}

	if c.L2Enabled() {
		err := c.levelMustHavePowerOfTwoSets("L2", c.L2Size, c.L2Assoc)
		if err != nil {
			return err
		}
	}

	if c.PrefetchN < 0 || c.PrefetchM < 0 {
		return fmt.Errorf("%w: prefetch parameters must not be negative",
			ErrInvalidConfig)
	}

	return nil
}

func (c Config) levelMustHavePowerOfTwoSets(
	name string,
	size uint64,
	assoc int,
) error {
	hi, setSize := bits.Mul64(c.BlockSize, uint64(assoc))
	if hi != 0 || setSize > size {
		return fmt.Errorf("%w: %s set of %d %d-byte blocks exceeds size %d",
			ErrInvalidConfig, name, assoc, c.BlockSize, size)
	}

	if size%setSize != 0 {
		return fmt.Errorf("%w: %s size %d is not a multiple of %d",
			ErrInvalidConfig, name, size, setSize)
	}

	numSets := size / setSize
	if bits.OnesCount64(numSets) != 1 {
		return fmt.Errorf("%w: %s has %d sets, not a power of two",
			ErrInvalidConfig, name, numSets)
	}

	return nil
}

// String summarizes the configuration.
func (c Config) String() string {
	l2 := "off"
	if c.L2Enabled() {
		l2 = fmt.Sprintf("%dB/%dw", c.L2Size, c.L2Assoc)
	}

	return fmt.Sprintf("block=%dB L1=%dB/%dw L2=%s",
		c.BlockSize, c.L1Size, c.L1Assoc, l2)
}

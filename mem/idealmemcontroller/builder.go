package idealmemcontroller

// Builder builds ideal memories.
type Builder struct {
}

// MakeBuilder returns a new Builder.
func MakeBuilder() Builder {
	return Builder{}
}

// Build creates a new ideal memory.
func (b Builder) Build(name string) *Comp {
	return &Comp{name: name}
}

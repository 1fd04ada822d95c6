package catalog

// Registry is an ordered, read-only set of definitions indexed by id.
type Registry struct {
	defs []Definition
	byID map[string]int
}

// NewRegistry builds a registry after validating defs. Declaration order is
// kept and is the order List returns.
func NewRegistry(defs []Definition) (*Registry, error) {
	if err := Validate(defs); err != nil {
		return nil, err
	}
	r := &Registry{
		defs: make([]Definition, len(defs)),
		byID: make(map[string]int, len(defs)),
	}
	copy(r.defs, defs)
	for i, d := range r.defs {
		r.byID[d.ID] = i
	}
	return r, nil
}

// Get retrieves a definition by id
func (r *Registry) Get(id string) (Definition, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i], true
}

// List returns all definitions in declaration order.
func (r *Registry) List() []Definition {
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Len returns the number of definitions.
func (r *Registry) Len() int {
	return len(r.defs)
}

package processor

import (
	"fmt"
	"sort"

	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
)

// Registry holds the processors configured for this deployment. It is built
// once at startup and never changes afterwards.
type Registry struct {
	processors []Processor
	byType     map[Type]Processor
}

// NewRegistry validates that identities and types are unique.
func NewRegistry(processors ...Processor) (*Registry, error) {
	r := &Registry{
		processors: make([]Processor, 0, len(processors)),
		byType:     make(map[Type]Processor, len(processors)),
	}

	identities := make(map[Identity]Type, len(processors))
	for _, p := range processors {
		if !p.Type().Valid() {
			return nil, fmt.Errorf("processor %s: invalid type %d", p.Identity(), uint8(p.Type()))
		}

		if other, exists := identities[p.Identity()]; exists {
			return nil, fmt.Errorf("processor %s: identity %s already registered by %s", p.Type(), p.Identity(), other)
		}

		if _, exists := r.byType[p.Type()]; exists {
			return nil, fmt.Errorf("processor type %s registered more than once", p.Type())
		}

		identities[p.Identity()] = p.Type()
		r.byType[p.Type()] = p
		r.processors = append(r.processors, p)
	}

	return r, nil
}

// Find returns the processor whose identity matches the initialized contract.
func (r *Registry) Find(moduleRef chain.ModuleRef, contractName string) (Processor, bool) {
	for _, p := range r.processors {
		id := p.Identity()
		if id.ModuleRef == moduleRef && id.ContractName == contractName {
			return p, true
		}
	}
	return nil, false
}

// ByType returns the processor of a tracked contract.
func (r *Registry) ByType(t Type) (Processor, bool) {
	p, ok := r.byType[t]
	return p, ok
}

// List returns the registered processors ordered by type.
func (r *Registry) List() []Processor {
	out := make([]Processor, len(r.processors))
	copy(out, r.processors)
	sort.Slice(out, func(i, j int) bool { return out[i].Type() < out[j].Type() })
	return out
}

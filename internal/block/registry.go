package block

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Factory builds a block from its configuration fragment. It must not probe
// the system; the first probe happens on the first scheduled Update.
type Factory func(fragment map[string]any, shared Shared, handle Handle) (Block, error)

// Registry is the dispatch table from block kind to factory.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under kind.
func (r *Registry) Register(kind string, f Factory) error {
	if kind == "" {
		return fmt.Errorf("kind required")
	}
	if f == nil {
		return fmt.Errorf("factory required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.factories[kind] != nil {
		return fmt.Errorf("block %s already registered", kind)
	}
	r.factories[kind] = f
	return nil
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// New builds a block of the given kind. Every failure is a *ConfigError.
func (r *Registry) New(kind string, fragment map[string]any, shared Shared, handle Handle) (Block, error) {
	r.mu.RLock()
	f := r.factories[kind]
	r.mu.RUnlock()

	if f == nil {
		return nil, &ConfigError{Block: kind, Err: ErrUnknownKind}
	}

	b, err := f(fragment, shared, handle)
	if err != nil {
		var cerr *ConfigError
		if errors.As(err, &cerr) {
			return nil, err
		}
		return nil, &ConfigError{Block: kind, Err: err}
	}
	return b, nil
}

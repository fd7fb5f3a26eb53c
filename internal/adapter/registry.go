package adapter

import (
	"sort"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
)

// Registry maps adapter names to adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// DefaultRegistry returns a registry holding every built-in adapter.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewSocialAdapter())
	r.Register(NewOutcomesAdapter())
	r.Register(NewSolanaRPCAdapter())
	r.Register(NewPumpfunAdapter())
	r.Register(NewSeasonAdapter())
	return r
}

// Register adds a, replacing any adapter with the same name.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Name()] = a
}

// Get returns the adapter registered under name.
// Returns ErrUnknownAdapter listing the known names otherwise.
func (r *Registry) Get(name string) (Adapter, error) {
	r.mu.RLock()
	a, ok := r.adapters[name]
	r.mu.RUnlock()
	if !ok {
		return nil, eris.Wrapf(ErrUnknownAdapter, "%q (known adapters: %s)", name, strings.Join(r.Names(), ", "))
	}
	return a, nil
}

// Names returns registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package workload

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the available workloads by name.
type Registry struct {
	mu        sync.RWMutex
	workloads map[string]Workload
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{workloads: make(map[string]Workload)}
}

// NewDefaultRegistry returns a registry holding every built-in workload.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, w := range []Workload{SumSquares{}, Primes{}, Collatz{}, HashEach{}} {
		_ = r.Register(w)
	}
	return r
}

// Register adds w. Registering a name twice is an error.
func (r *Registry) Register(w Workload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.workloads[w.Name()]; exists {
		return fmt.Errorf("workload %q already registered", w.Name())
	}
	r.workloads[w.Name()] = w
	return nil
}

// Get returns the workload registered under name.
func (r *Registry) Get(name string) (Workload, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workloads[name]
	if !ok {
		return nil, fmt.Errorf("unknown workload: %q", name)
	}
	return w, nil
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.workloads))
	for name := range r.workloads {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetAll returns every registered workload, sorted by name.
func (r *Registry) GetAll() []Workload {
	names := r.List()
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]Workload, 0, len(names))
	for _, name := range names {
		all = append(all, r.workloads[name])
	}
	return all
}

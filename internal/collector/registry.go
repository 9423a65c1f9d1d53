package collector

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages the known candle sources by name
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source
}

// NewRegistry creates a new source registry
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]Source),
	}
}

// Register adds a source to the registry
func (r *Registry) Register(s Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[s.Name()] = s
}

// Get retrieves a source by name
func (r *Registry) Get(name string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sources[name]
	return s, ok
}

// GetAll returns all registered sources sorted by name
func (r *Registry) GetAll() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Source, 0, len(r.sources))
	for _, s := range r.sources {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name() < result[j].Name()
	})
	return result
}

// Ordered resolves names into sources, preserving the given priority
func (r *Registry) Ordered(names []string) ([]Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Source, 0, len(names))
	for _, name := range names {
		s, ok := r.sources[name]
		if !ok {
			return nil, fmt.Errorf("unknown source: %s", name)
		}
		result = append(result, s)
	}
	return result, nil
}

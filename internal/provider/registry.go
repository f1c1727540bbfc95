package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Registry holds the configured adapters keyed by provider type. Created at
// process start, injected into components that select providers.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
	fallback string
}

func NewRegistry(defaultType string) *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
		fallback: defaultType,
	}
}

// Register installs an adapter under its Type. Registering the same type
// twice replaces the earlier adapter.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Type()] = a
}

// Get returns the adapter for providerType, or the default adapter when
// providerType is empty.
func (r *Registry) Get(providerType string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if providerType == "" {
		providerType = r.fallback
	}
	a, ok := r.adapters[providerType]
	if !ok {
		return nil, fmt.Errorf("provider not implemented: %s", providerType)
	}
	return a, nil
}

// Status probes every registered adapter.
func (r *Registry) Status(ctx context.Context) map[string]Availability {
	r.mu.RLock()
	adapters := make(map[string]Adapter, len(r.adapters))
	for k, v := range r.adapters {
		adapters[k] = v
	}
	r.mu.RUnlock()

	result := make(map[string]Availability, len(adapters))
	for name, a := range adapters {
		result[name] = a.CheckAvailability(ctx)
	}
	return result
}

// Types lists registered provider types in stable order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.adapters))
	for k := range r.adapters {
		types = append(types, k)
	}
	sort.Strings(types)
	return types
}

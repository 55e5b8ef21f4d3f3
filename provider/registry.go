package provider

import (
	"context"
	"sort"
	"sync"

	apperrors "github.com/skillsenselab/murmur/errors"
)

// Registry holds the named backend factories for one provider kind and
// caches the instances they produce. Transcription, diarization, and
// completion each keep their own Registry, so a config value like
// "whisper" or "ollama" is all the pipeline needs to select a backend.
type Registry[T Provider] struct {
	mu        sync.RWMutex
	factories map[string]Factory[T]
	instances map[string]T
}

func NewRegistry[T Provider]() *Registry[T] {
	return &Registry[T]{
		factories: make(map[string]Factory[T]),
		instances: make(map[string]T),
	}
}

// RegisterFactory registers a factory under the backend's name.
// Registering the same name again replaces the previous factory.
func (r *Registry[T]) RegisterFactory(name string, factory Factory[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Create builds a fresh, uncached instance from the named factory.
func (r *Registry[T]) Create(name string, cfg map[string]any) (T, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, apperrors.NotFound("provider factory", name)
	}
	return factory(cfg)
}

// Resolve returns the cached instance for name, building and caching
// one through the factory on first use.
func (r *Registry[T]) Resolve(name string, cfg map[string]any) (T, error) {
	r.mu.RLock()
	inst, ok := r.instances[name]
	r.mu.RUnlock()
	if ok {
		return inst, nil
	}

	inst, err := r.Create(name, cfg)
	if err != nil {
		var zero T
		return zero, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another caller may have resolved it while the factory ran.
	if cached, ok := r.instances[name]; ok {
		return cached, nil
	}
	r.instances[name] = inst
	return inst, nil
}

// Get returns a cached instance by name.
func (r *Registry[T]) Get(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instances[name]
	return inst, ok
}

// Set caches a pre-built instance, replacing any cached one.
func (r *Registry[T]) Set(name string, instance T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[name] = instance
}

// List returns the sorted names of all registered factories.
func (r *Registry[T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Available probes every cached instance and returns the sorted names
// of those ready to take requests.
func (r *Registry[T]) Available(ctx context.Context) []string {
	r.mu.RLock()
	instances := make(map[string]T, len(r.instances))
	for name, inst := range r.instances {
		instances[name] = inst
	}
	r.mu.RUnlock()

	var names []string
	for name, inst := range instances {
		if inst.IsAvailable(ctx) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

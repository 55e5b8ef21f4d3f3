package component

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/skillsenselab/murmur/logger"
)

// stopTimeout bounds how long a single component may take to shut down.
const stopTimeout = 10 * time.Second

// Registry manages the lifecycle of murmur's long-lived components:
// the journal store, the diarization model manager, and the event hub.
// Components start in registration order and stop in reverse, so
// register dependencies first.
type Registry struct {
	mu         sync.RWMutex
	components []Component
	started    int // components[:started] are running
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a component. Names must be unique.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	for _, existing := range r.components {
		if existing.Name() == name {
			return fmt.Errorf("component %s already registered", name)
		}
	}
	r.components = append(r.components, c)

	logger.Debug("Component registered", map[string]interface{}{
		"component": name,
	})
	return nil
}

// StartAll starts every component in registration order. If one fails,
// the components already started are stopped again in reverse order
// before the error is returned.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.components[r.started:] {
		if err := c.Start(ctx); err != nil {
			logger.Error("Component start failed", map[string]interface{}{
				"component": c.Name(),
				"error":     err.Error(),
			})
			r.stopStarted(ctx)
			return fmt.Errorf("start %s: %w", c.Name(), err)
		}
		r.started++
		logger.Debug("Component started", map[string]interface{}{
			"component": c.Name(),
		})
	}

	logger.Info("Components started", map[string]interface{}{
		"count": r.started,
	})
	return nil
}

// StopAll stops all running components in reverse registration order.
// Every component gets a stop attempt even when an earlier one fails.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopStarted(ctx)
}

func (r *Registry) stopStarted(ctx context.Context) error {
	var errs []error
	for r.started > 0 {
		c := r.components[r.started-1]
		r.started--

		stopCtx, cancel := context.WithTimeout(ctx, stopTimeout)
		err := c.Stop(stopCtx)
		cancel()
		if err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", c.Name(), err))
			logger.Error("Component stop failed", map[string]interface{}{
				"component": c.Name(),
				"error":     err.Error(),
			})
			continue
		}
		logger.Debug("Component stopped", map[string]interface{}{
			"component": c.Name(),
		})
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// HealthAll reports the health of every registered component.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]Health, 0, len(r.components))
	for _, c := range r.components {
		results = append(results, c.Health(ctx))
	}
	return results
}

// Get returns a registered component by name, or nil.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.components {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// All returns the registered components in registration order.
func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Component, len(r.components))
	copy(result, r.components)
	return result
}

// LogSummary writes a one-line startup summary per component, using
// Describe for those that self-report configuration.
func (r *Registry) LogSummary(service string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.components {
		fields := map[string]interface{}{
			"service":   service,
			"component": c.Name(),
		}
		if d, ok := c.(Describable); ok {
			desc := d.Describe()
			if desc.Name != "" {
				fields["name"] = desc.Name
			}
			if desc.Type != "" {
				fields["type"] = desc.Type
			}
			if desc.Details != "" {
				fields["details"] = desc.Details
			}
		}
		logger.Info("Component ready", fields)
	}
}

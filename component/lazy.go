package component

import (
	"context"
	"fmt"
	"sync"

	"github.com/skillsenselab/murmur/logger"
)

// Lazy provides thread-safe lazy initialization for components that defer
// expensive setup until first use, such as loading diarization models into
// memory or probing an inference backend.
type Lazy struct {
	name        string
	mu          sync.RWMutex
	initialized bool
	lastError   error
	initializer func(ctx context.Context) error
	healthCheck func(ctx context.Context) error
	closer      func() error
}

// NewLazy creates a lazy component with the given initializer.
func NewLazy(name string, initializer func(context.Context) error) *Lazy {
	return &Lazy{
		name:        name,
		initializer: initializer,
	}
}

// Name returns the component name.
func (l *Lazy) Name() string {
	return l.name
}

// Initialize performs thread-safe lazy initialization using double-check locking.
func (l *Lazy) Initialize(ctx context.Context) error {
	l.mu.RLock()
	if l.initialized && l.lastError == nil {
		l.mu.RUnlock()
		return nil
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if l.initialized && l.lastError == nil {
		return nil
	}

	if l.initializer == nil {
		return fmt.Errorf("no initializer for component: %s", l.name)
	}

	logger.Debug("Initializing lazy component", map[string]interface{}{
		"component": l.name,
	})

	if err := l.initializer(ctx); err != nil {
		l.lastError = err
		return fmt.Errorf("failed to initialize %s: %w", l.name, err)
	}

	l.initialized = true
	l.lastError = nil

	logger.Debug("Lazy component initialized", map[string]interface{}{
		"component": l.name,
	})
	return nil
}

// IsInitialized returns whether the component has been successfully initialized.
func (l *Lazy) IsInitialized() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.initialized && l.lastError == nil
}

// HealthCheck verifies the component is initialized and optionally runs a custom check.
func (l *Lazy) HealthCheck(ctx context.Context) error {
	if !l.IsInitialized() {
		return fmt.Errorf("component %s not initialized", l.name)
	}
	if l.healthCheck != nil {
		return l.healthCheck(ctx)
	}
	return nil
}

// Close shuts down the component and marks it as uninitialized.
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closer != nil && l.initialized {
		err := l.closer()
		l.initialized = false
		return err
	}
	l.initialized = false
	return nil
}

// WithHealthCheck sets a custom health check function.
func (l *Lazy) WithHealthCheck(fn func(context.Context) error) *Lazy {
	l.healthCheck = fn
	return l
}

// WithCloser sets a custom close function.
func (l *Lazy) WithCloser(fn func() error) *Lazy {
	l.closer = fn
	return l
}

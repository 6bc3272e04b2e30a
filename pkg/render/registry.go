package render

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps renderer keys to widget renderers. Hosts register their
// renderers once at startup; the controller only reads.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]WidgetRenderer
}

// NewRegistry creates a registry seeded with renderers.
func NewRegistry(renderers ...WidgetRenderer) (*Registry, error) {
	r := &Registry{renderers: make(map[string]WidgetRenderer)}
	for _, renderer := range renderers {
		if err := r.Register(renderer); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a renderer by its Name(). Duplicate names return an error.
func (r *Registry) Register(renderer WidgetRenderer) error {
	if renderer == nil {
		return fmt.Errorf("render: renderer is required")
	}
	name := renderer.Name()
	if name == "" {
		return fmt.Errorf("render: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.renderers == nil {
		r.renderers = make(map[string]WidgetRenderer)
	}
	if _, exists := r.renderers[name]; exists {
		return fmt.Errorf("render: renderer %q already registered", name)
	}
	r.renderers[name] = renderer
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(renderer WidgetRenderer) {
	if err := r.Register(renderer); err != nil {
		panic(err)
	}
}

// Get retrieves a renderer by key.
func (r *Registry) Get(key string) (WidgetRenderer, error) {
	if r == nil {
		return nil, fmt.Errorf("render: renderer %q not found", key)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	renderer, ok := r.renderers[key]
	if !ok {
		return nil, fmt.Errorf("render: renderer %q not found", key)
	}
	return renderer, nil
}

// Resolve returns the renderer for key, or fallback when the key is empty or
// unregistered.
func (r *Registry) Resolve(key string, fallback WidgetRenderer) WidgetRenderer {
	if key == "" {
		return fallback
	}
	renderer, err := r.Get(key)
	if err != nil {
		return fallback
	}
	return renderer
}

// List returns a sorted list of renderer keys.
func (r *Registry) List() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a renderer is registered under key.
func (r *Registry) Has(key string) bool {
	_, err := r.Get(key)
	return err == nil
}

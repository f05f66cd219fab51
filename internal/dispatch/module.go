// internal/dispatch/module.go
package dispatch

import "fmt"

// Module groups the routes one feature contributes.
type Module interface {
	Name() string
	Routes() []Route
}

// AddModule registers every route of the module. A duplicate module
// name or route path fails the whole registration.
func (r *Registry) AddModule(m Module) error {
	name := m.Name()

	r.mu.Lock()
	if _, exists := r.modules[name]; exists {
		r.mu.Unlock()
		return fmt.Errorf("module %s already registered", name)
	}
	r.modules[name] = m
	r.mu.Unlock()

	for _, rt := range m.Routes() {
		if err := r.Register(rt); err != nil {
			return fmt.Errorf("register module %s: %w", name, err)
		}
	}
	return nil
}

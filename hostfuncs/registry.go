package hostfuncs

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownFunction is returned by Invoke for names that are not registered.
var ErrUnknownFunction = errors.New("unknown host function")

// Registry is an immutable collection of named host functions.
// Once created via NewRegistry, functions cannot be added or removed,
// so lookups need no locking.
type Registry struct {
	functions map[string]Function
	names     []string // sorted for consistent iteration
}

// registryBuilder accumulates configuration during registry construction.
type registryBuilder struct {
	functions  map[string]Function
	middleware []Middleware
	errors     []error
}

// NewRegistry creates an immutable Registry with the given options.
// Returns an error if any function name is registered twice.
//
// Example usage:
//
//	registry, err := NewRegistry(
//	    WithMiddleware(PanicRecoveryMiddleware()),
//	    WithBundle(SceneBundle(graph)),
//	    WithFunction(custom),
//	)
func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	b := &registryBuilder{
		functions: make(map[string]Function),
	}

	for _, opt := range opts {
		opt(b)
	}

	if len(b.errors) > 0 {
		return nil, errors.Join(b.errors...)
	}

	names := make([]string, 0, len(b.functions))
	for name := range b.functions {
		names = append(names, name)
	}
	sort.Strings(names)

	// Apply middleware chain to all handlers (FIFO order)
	wrapped := make(map[string]Function, len(b.functions))
	for name, fn := range b.functions {
		h := fn.Handler
		for i := len(b.middleware) - 1; i >= 0; i-- {
			h = b.middleware[i](h)
		}
		fn.Handler = h
		wrapped[name] = fn
	}

	return &Registry{
		functions: wrapped,
		names:     names,
	}, nil
}

// Invoke dispatches a host function call by name.
func (r *Registry) Invoke(ctx context.Context, name string, call Call) ([]uint64, error) {
	fn, ok := r.functions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	return fn.Handler(HostContextFrom(ctx, name), call)
}

// Lookup returns the registered function, with middleware applied.
func (r *Registry) Lookup(name string) (Function, bool) {
	fn, ok := r.functions[name]
	return fn, ok
}

// Has returns true if a function with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.functions[name]
	return ok
}

// Names returns a sorted list of all registered function names.
func (r *Registry) Names() []string {
	result := make([]string, len(r.names))
	copy(result, r.names)
	return result
}

// Functions returns every registered function in name order. Each handler
// sets up the HostContext before running the middleware chain.
func (r *Registry) Functions() []Function {
	out := make([]Function, 0, len(r.names))
	for _, name := range r.names {
		name := name // per-iteration copy for the closure below (go < 1.22 loop semantics)
		fn := r.functions[name]
		h := fn.Handler
		fn.Handler = func(ctx context.Context, call Call) ([]uint64, error) {
			return h(HostContextFrom(ctx, name), call)
		}
		out = append(out, fn)
	}
	return out
}

// addFunction validates and registers fn.
func (b *registryBuilder) addFunction(fn Function) error {
	if fn.Name == "" {
		return fmt.Errorf("host function name cannot be empty")
	}
	if fn.Handler == nil {
		return fmt.Errorf("host function %q has no handler", fn.Name)
	}
	if _, exists := b.functions[fn.Name]; exists {
		return fmt.Errorf("duplicate host function name: %q", fn.Name)
	}
	b.functions[fn.Name] = fn
	return nil
}

// WithFunction registers a single host function.
func WithFunction(fn Function) RegistryOption {
	return func(b *registryBuilder) {
		if err := b.addFunction(fn); err != nil {
			b.errors = append(b.errors, err)
		}
	}
}

// WithMiddleware adds middleware to the registry.
// Middleware executes in FIFO order (first added wraps first).
func WithMiddleware(mw ...Middleware) RegistryOption {
	return func(b *registryBuilder) {
		b.middleware = append(b.middleware, mw...)
	}
}

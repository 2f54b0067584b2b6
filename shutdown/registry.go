package shutdown

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"xsmodels/core"
)

type registryEntry struct {
	name     string
	priority int
	fn       core.ShutdownFunc
}

// Registry holds the resources to release at shutdown. Lower priorities
// run first; equal priorities run in registration order.
//
// The serve command uses roughly:
//   - 0-9: stop accepting HTTP requests
//   - 10-19: drain the call history writer
//   - 20-29: close the model library and the state database
//   - 30+: flush logs
type Registry struct {
	mu      sync.Mutex
	entries []registryEntry
	closed  bool
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds fn. It is ignored once Run has started.
func (r *Registry) Register(name string, priority int, fn core.ShutdownFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.entries = append(r.entries, registryEntry{name: name, priority: priority, fn: fn})
}

func (r *Registry) sorted() []registryEntry {
	out := slices.Clone(r.entries)
	slices.SortStableFunc(out, func(a, b registryEntry) int { return a.priority - b.priority })
	return out
}

// Run calls every registered function once, in order, and joins their
// errors. Later calls return nil.
func (r *Registry) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	entries := r.sorted()
	r.mu.Unlock()

	var errs []error
	for _, e := range entries {
		if err := e.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.name, err))
		}
	}
	return errors.Join(errs...)
}

// Names lists the registered functions in the order Run calls them.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.sorted()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

package world

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"weak"
)

var ErrAlreadyRegistered = errors.New("world already registered")

// Registry maps world names to instances without keeping them alive: the
// owner of an instance holds the only strong reference, and a resolved name
// stops resolving once the owner drops it.
type Registry struct {
	mu        sync.Mutex
	instances map[string]weak.Pointer[Instance]
}

func NewRegistry() *Registry {
	return &Registry{instances: map[string]weak.Pointer[Instance]{}}
}

// Register adds inst under name. A name whose instance was collected can be
// reused.
func (r *Registry) Register(name string, inst *Instance) error {
	if inst == nil {
		return fmt.Errorf("register %q: nil instance", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if wp, ok := r.instances[name]; ok && wp.Value() != nil {
		return fmt.Errorf("register %q: %w", name, ErrAlreadyRegistered)
	}
	r.instances[name] = weak.Make(inst)
	return nil
}

// Resolve returns the live instance registered under name.
func (r *Registry) Resolve(name string) (*Instance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wp, ok := r.instances[name]
	if !ok {
		return nil, false
	}
	inst := wp.Value()
	return inst, inst != nil
}

func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.instances, name)
}

// Names lists registered names, live or not.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.instances))
	for k := range r.instances {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.instances)
}

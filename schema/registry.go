package schema

import (
	"reflect"
	"sync"

	"github.com/syssam/rowmap"
	"github.com/syssam/rowmap/internal/beans"
)

// Registry maps entity types to their descriptors.
type Registry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]*Descriptor
	order  []*Descriptor
}

// NewRegistry returns an empty registry. The zero Registry is also ready
// to use.
func NewRegistry() *Registry {
	return &Registry{byType: make(map[reflect.Type]*Descriptor)}
}

// Register adds d. Registering a second descriptor for the same type is
// an error.
func (r *Registry) Register(d *Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byType == nil {
		r.byType = make(map[reflect.Type]*Descriptor)
	}
	if _, ok := r.byType[d.typ]; ok {
		return rowmap.NewSchemaConfigError(d.Name(), "already registered")
	}
	r.byType[d.typ] = d
	r.order = append(r.order, d)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(ds ...*Descriptor) *Registry {
	for _, d := range ds {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
	return r
}

// Lookup returns the descriptor of an entity. e may be a pointer to the
// entity, the entity itself, or its reflect.Type.
func (r *Registry) Lookup(e any) (*Descriptor, bool) {
	var t reflect.Type
	switch e := e.(type) {
	case nil:
		return nil, false
	case reflect.Type:
		t = e
	default:
		t = reflect.TypeOf(e)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byType[beans.Indirect(t)]
	return d, ok
}

// DescriptorOf is like Lookup but returns a SchemaConfigError for
// unregistered types.
func (r *Registry) DescriptorOf(e any) (*Descriptor, error) {
	if d, ok := r.Lookup(e); ok {
		return d, nil
	}
	return nil, rowmap.NewSchemaConfigError("", "no descriptor registered for %T", e)
}

// MustLookup is like Lookup but panics for unregistered types.
func (r *Registry) MustLookup(e any) *Descriptor {
	d, err := r.DescriptorOf(e)
	if err != nil {
		panic(err)
	}
	return d
}

// Descriptors returns the descriptors in registration order.
func (r *Registry) Descriptors() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Descriptor, len(r.order))
	copy(out, r.order)
	return out
}

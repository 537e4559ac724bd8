package ecs

import (
	"fmt"
	"reflect"
	"slices"
)

type registration struct {
	goType  reflect.Type
	factory func() Component
	add     func(e *Entity, c Component) bool
	destroy func(e *Entity) bool
}

// Registry maps every replicated ComponentType to the operations needed to
// rebuild it from the wire. It is filled during setup and sealed before the
// network starts; after Seal it is read-only and safe for concurrent use.
type Registry struct {
	entries map[ComponentType]registration
	sealed  bool
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[ComponentType]registration)}
}

// Register adds T under the tag reported by the factory's components.
func Register[T Component](r *Registry, factory func() T) error {
	if r.sealed {
		return ErrRegistrySealed
	}
	tag := factory().Type()
	if !tag.Networked() {
		return fmt.Errorf("%w: %s", ErrLocalComponent, reflect.TypeFor[T]())
	}
	if existing, ok := r.entries[tag]; ok {
		return fmt.Errorf("%w: %s already bound to %s", ErrDuplicateComponent, tag, existing.goType)
	}
	r.entries[tag] = registration{
		goType:  reflect.TypeFor[T](),
		factory: func() Component { return factory() },
		add: func(e *Entity, c Component) bool {
			typed, ok := c.(T)
			if !ok {
				return false
			}
			return e.Add(typed)
		},
		destroy: func(e *Entity) bool {
			return Remove[T](e, false)
		},
	}
	return nil
}

// MustRegister is Register for setup code where failure is a programming error.
func MustRegister[T Component](r *Registry, factory func() T) {
	if err := Register(r, factory); err != nil {
		panic(err)
	}
}

// Seal closes the registry to further registrations.
func (r *Registry) Seal() { r.sealed = true }

func (r *Registry) Sealed() bool { return r.sealed }

func (r *Registry) Has(tag ComponentType) bool {
	_, ok := r.entries[tag]
	return ok
}

// Types returns the registered tags in ascending order.
func (r *Registry) Types() []ComponentType {
	out := make([]ComponentType, 0, len(r.entries))
	for tag := range r.entries {
		out = append(out, tag)
	}
	slices.Sort(out)
	return out
}

// New constructs a fresh component for tag.
func (r *Registry) New(tag ComponentType) (Component, error) {
	entry, ok := r.entries[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownComponent, tag)
	}
	return entry.factory(), nil
}

// Decode constructs a component for tag and fills it from payload.
func (r *Registry) Decode(tag ComponentType, payload []byte) (Component, error) {
	c, err := r.New(tag)
	if err != nil {
		return nil, err
	}
	if err = c.Decode(payload); err != nil {
		return nil, fmt.Errorf("decode %s: %w", tag, err)
	}
	c.SetChanged(true)
	return c, nil
}

// Add attaches c through its registered adder. Adding a type the entity
// already holds is a no-op reported as false.
func (r *Registry) Add(e *Entity, c Component) bool {
	entry, ok := r.entries[c.Type()]
	if !ok {
		return false
	}
	return entry.add(e, c)
}

// Destroy detaches the component registered for tag from e without queueing
// a network removal.
func (r *Registry) Destroy(e *Entity, tag ComponentType) bool {
	entry, ok := r.entries[tag]
	if !ok {
		return false
	}
	return entry.destroy(e)
}

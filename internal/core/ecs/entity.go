package ecs

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// EntityID identifies an entity. Ids are allocated by an IDAllocator shared by
// every world of a context and travel on the wire unchanged.
type EntityID uint64

// Entity is a bag holding at most one component per Go type.
type Entity struct {
	id         EntityID
	components map[reflect.Type]Component
	removed    []ComponentType
}

func newEntity(id EntityID) *Entity {
	return &Entity{
		id:         id,
		components: make(map[reflect.Type]Component),
	}
}

func (e *Entity) ID() EntityID { return e.id }

// Add installs c if neither a component of the same Go type nor a replicated
// component with the same tag is attached. It reports whether c was
// installed; an existing component is never replaced.
func (e *Entity) Add(c Component) bool {
	t := reflect.TypeOf(c)
	if _, ok := e.components[t]; ok {
		return false
	}
	if tag := c.Type(); tag.Networked() && e.HasTag(tag) {
		return false
	}
	e.components[t] = c
	return true
}

// Len returns the number of attached components.
func (e *Entity) Len() int { return len(e.components) }

// Components returns the attached components ordered by tag, then type name.
func (e *Entity) Components() []Component {
	out := make([]Component, 0, len(e.components))
	for _, c := range e.components {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b Component) int {
		if a.Type() != b.Type() {
			return int(a.Type()) - int(b.Type())
		}
		return strings.Compare(reflect.TypeOf(a).String(), reflect.TypeOf(b).String())
	})
	return out
}

// HasTypes reports whether every listed Go type is attached.
func (e *Entity) HasTypes(types ...reflect.Type) bool {
	for _, t := range types {
		if _, ok := e.components[t]; !ok {
			return false
		}
	}
	return true
}

// HasTag reports whether a component with the given tag is attached.
func (e *Entity) HasTag(tag ComponentType) bool {
	for _, c := range e.components {
		if c.Type() == tag {
			return true
		}
	}
	return false
}

// ByTag returns the attached component with the given tag.
func (e *Entity) ByTag(tag ComponentType) (Component, bool) {
	for _, c := range e.components {
		if c.Type() == tag {
			return c, true
		}
	}
	return nil, false
}

// RemoveTag detaches the component with the given tag. When markForNetwork
// is set the tag is queued for the next RemoveComponents delta.
func (e *Entity) RemoveTag(tag ComponentType, markForNetwork bool) bool {
	for t, c := range e.components {
		if c.Type() != tag {
			continue
		}
		delete(e.components, t)
		if markForNetwork {
			e.markRemoved(tag)
		}
		return true
	}
	return false
}

// PendingRemovals returns the tags queued for the next RemoveComponents delta.
func (e *Entity) PendingRemovals() []ComponentType { return e.removed }

// ClearPendingRemovals empties the removal queue after a flush.
func (e *Entity) ClearPendingRemovals() { e.removed = e.removed[:0] }

// MarkAllChanged flags every attached component for the next delta.
func (e *Entity) MarkAllChanged() {
	for _, c := range e.components {
		c.SetChanged(true)
	}
}

func (e *Entity) markRemoved(tag ComponentType) {
	if !tag.Networked() || slices.Contains(e.removed, tag) {
		return
	}
	e.removed = append(e.removed, tag)
}

func (e *Entity) String() string {
	return fmt.Sprintf("entity(%d)", e.id)
}

// TypeOf returns the key under which T is stored on an entity.
func TypeOf[T Component]() reflect.Type {
	return reflect.TypeFor[T]()
}

// Get returns the component of type T. It fails with ErrComponentNotFound
// when T is absent.
func Get[T Component](e *Entity) (T, error) {
	c, ok := e.components[reflect.TypeFor[T]()]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s on %s", ErrComponentNotFound, reflect.TypeFor[T](), e)
	}
	return c.(T), nil
}

// Mut is Get for callers about to modify the component: it marks the
// component changed before returning it.
func Mut[T Component](e *Entity) (T, error) {
	c, err := Get[T](e)
	if err != nil {
		return c, err
	}
	c.SetChanged(true)
	return c, nil
}

// Has reports whether a component of type T is attached.
func Has[T Component](e *Entity) bool {
	_, ok := e.components[reflect.TypeFor[T]()]
	return ok
}

// Remove detaches the component of type T. When markForNetwork is set its tag
// is queued for the next RemoveComponents delta.
func Remove[T Component](e *Entity, markForNetwork bool) bool {
	t := reflect.TypeFor[T]()
	c, ok := e.components[t]
	if !ok {
		return false
	}
	delete(e.components, t)
	if markForNetwork {
		e.markRemoved(c.Type())
	}
	return true
}

package ecs

import "reflect"

// EntitiesWith scans the world and returns, ordered by id, every entity
// holding all of the listed component types.
func (w *World) EntitiesWith(types ...reflect.Type) []*Entity {
	all := w.Entities()
	out := all[:0]
	for _, e := range all {
		if e.HasTypes(types...) {
			out = append(out, e)
		}
	}
	return out
}

// Each1 calls fn for every entity holding A.
func Each1[A Component](w *World, fn func(e *Entity, a A)) {
	for _, e := range w.EntitiesWith(TypeOf[A]()) {
		a, _ := Get[A](e)
		fn(e, a)
	}
}

// Each2 calls fn for every entity holding A and B.
func Each2[A, B Component](w *World, fn func(e *Entity, a A, b B)) {
	for _, e := range w.EntitiesWith(TypeOf[A](), TypeOf[B]()) {
		a, _ := Get[A](e)
		b, _ := Get[B](e)
		fn(e, a, b)
	}
}

// Each3 calls fn for every entity holding A, B and C.
func Each3[A, B, C Component](w *World, fn func(e *Entity, a A, b B, c C)) {
	for _, e := range w.EntitiesWith(TypeOf[A](), TypeOf[B](), TypeOf[C]()) {
		a, _ := Get[A](e)
		b, _ := Get[B](e)
		c, _ := Get[C](e)
		fn(e, a, b, c)
	}
}

// First returns the lowest-id entity holding A.
func First[A Component](w *World) (*Entity, A, bool) {
	matches := w.EntitiesWith(TypeOf[A]())
	if len(matches) == 0 {
		var zero A
		return nil, zero, false
	}
	a, _ := Get[A](matches[0])
	return matches[0], a, true
}

package ecs

import (
	"fmt"
	"slices"
)

// RendererName is the system that runs once per frame after every logic pass.
const RendererName = "Renderer"

// System is per-tick logic operating on a World.
type System interface {
	Name() string
	// Configure is called once when the system is added to a world.
	Configure(w *World) error
	// Unconfigure is called when the world is torn down.
	Unconfigure(w *World)
	Tick(w *World)
}

// ExecutionPhase groups systems inside a tick. Lower phases run first.
type ExecutionPhase uint8

const (
	PhasePreUpdate ExecutionPhase = iota
	PhaseUpdate
	PhasePostUpdate
	PhaseRender
)

func (p ExecutionPhase) String() string {
	switch p {
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post-update"
	case PhaseRender:
		return "render"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// Priority orders systems within a phase. Higher runs first.
type Priority int16

const (
	PriorityLowest  Priority = -200
	PriorityLow     Priority = -100
	PriorityNormal  Priority = 0
	PriorityHigh    Priority = 100
	PriorityHighest Priority = 200
)

// Phased systems choose their phase; others run in PhaseUpdate.
type Phased interface {
	ExecutionPhase() ExecutionPhase
}

// Prioritized systems choose their priority; others use PriorityNormal.
type Prioritized interface {
	Priority() Priority
}

// BaseSystem implements the optional parts of System for embedding.
type BaseSystem struct {
	SystemName     string
	SystemPhase    ExecutionPhase
	SystemPriority Priority
}

func (s BaseSystem) Name() string                   { return s.SystemName }
func (s BaseSystem) ExecutionPhase() ExecutionPhase { return s.SystemPhase }
func (s BaseSystem) Priority() Priority             { return s.SystemPriority }
func (BaseSystem) Configure(*World) error           { return nil }
func (BaseSystem) Unconfigure(*World)               {}

type scheduled struct {
	system   System
	phase    ExecutionPhase
	priority Priority
	seq      int
}

// schedule keeps systems in execution order: phase ascending, priority
// descending, then registration order.
type schedule struct {
	entries  []scheduled
	renderer System
	seq      int
}

func (s *schedule) add(sys System) error {
	name := sys.Name()
	if s.find(name) >= 0 || (s.renderer != nil && name == RendererName) {
		return fmt.Errorf("%w: %s", ErrDuplicateSystem, name)
	}
	if name == RendererName {
		s.renderer = sys
		return nil
	}

	entry := scheduled{system: sys, phase: PhaseUpdate, priority: PriorityNormal, seq: s.seq}
	s.seq++
	if p, ok := sys.(Phased); ok {
		entry.phase = p.ExecutionPhase()
	}
	if p, ok := sys.(Prioritized); ok {
		entry.priority = p.Priority()
	}

	i, _ := slices.BinarySearchFunc(s.entries, entry, compareScheduled)
	s.entries = slices.Insert(s.entries, i, entry)
	return nil
}

func (s *schedule) remove(name string) (System, bool) {
	if name == RendererName && s.renderer != nil {
		sys := s.renderer
		s.renderer = nil
		return sys, true
	}
	i := s.find(name)
	if i < 0 {
		return nil, false
	}
	sys := s.entries[i].system
	s.entries = slices.Delete(s.entries, i, i+1)
	return sys, true
}

func (s *schedule) find(name string) int {
	return slices.IndexFunc(s.entries, func(e scheduled) bool { return e.system.Name() == name })
}

func (s *schedule) names() []string {
	out := make([]string, 0, len(s.entries)+1)
	for _, e := range s.entries {
		out = append(out, e.system.Name())
	}
	if s.renderer != nil {
		out = append(out, RendererName)
	}
	return out
}

func compareScheduled(a, b scheduled) int {
	if a.phase != b.phase {
		return int(a.phase) - int(b.phase)
	}
	if a.priority != b.priority {
		return int(b.priority) - int(a.priority)
	}
	return a.seq - b.seq
}

package ecs

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/zeusync/deltasync/internal/core/events/bus"
	"github.com/zeusync/deltasync/internal/core/observability/log"
)

// World owns entities, their event bus and the systems ticking over them.
// A World is confined to the game goroutine.
type World struct {
	name     string
	entities map[EntityID]*Entity
	ids      *IDAllocator
	players  *Players
	bus      bus.EventBus
	systems  schedule
	logger   log.Log

	pending    []EntityID
	pendingSet map[EntityID]struct{}

	frame    uint64
	started  time.Time
	passHook func(slot int)
}

type Option func(*World)

// WithIDAllocator shares an allocator between worlds of one context.
func WithIDAllocator(ids *IDAllocator) Option {
	return func(w *World) { w.ids = ids }
}

// WithPlayers shares the player slots between worlds of one context.
func WithPlayers(p *Players) Option {
	return func(w *World) { w.players = p }
}

func WithLogger(l log.Log) Option {
	return func(w *World) { w.logger = l }
}

func WithEventBus(b bus.EventBus) Option {
	return func(w *World) { w.bus = b }
}

func NewWorld(name string, opts ...Option) *World {
	w := &World{
		name:       name,
		entities:   make(map[EntityID]*Entity),
		pendingSet: make(map[EntityID]struct{}),
		started:    time.Now(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.ids == nil {
		w.ids = NewIDAllocator(1)
	}
	if w.players == nil {
		w.players = NewPlayers()
	}
	if w.bus == nil {
		w.bus = bus.New()
	}
	if w.logger == nil {
		w.logger = log.NewNop()
	}
	w.logger = w.logger.With(log.String("world", name))
	return w
}

func (w *World) Name() string { return w.name }

func (w *World) Players() *Players { return w.players }

func (w *World) Logger() log.Log { return w.logger }

// Frame is the number of completed ticks.
func (w *World) Frame() uint64 { return w.frame }

// Elapsed is the time since the world was created.
func (w *World) Elapsed() time.Duration { return time.Since(w.started) }

// AddEntity creates an entity with a freshly allocated id.
func (w *World) AddEntity(components ...Component) *Entity {
	return w.spawn(w.ids.Next(), components)
}

// AddEntityWithID creates an entity with a caller-provided id, or returns the
// existing entity when the id is taken.
func (w *World) AddEntityWithID(id EntityID, components ...Component) *Entity {
	if e, ok := w.entities[id]; ok {
		return e
	}
	w.ids.Reserve(id)
	return w.spawn(id, components)
}

func (w *World) spawn(id EntityID, components []Component) *Entity {
	e := newEntity(id)
	for _, c := range components {
		e.Add(c)
	}
	w.entities[id] = e
	Broadcast(w, EntityCreated{Entity: e})
	return e
}

func (w *World) Exists(id EntityID) bool {
	_, ok := w.entities[id]
	return ok
}

// Entity returns the entity with the given id.
func (w *World) Entity(id EntityID) (*Entity, error) {
	e, ok := w.entities[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d in world %s", ErrEntityNotFound, id, w.name)
	}
	return e, nil
}

// Len returns the number of live entities, pending deletions included.
func (w *World) Len() int { return len(w.entities) }

// Entities returns a snapshot of every entity ordered by id.
func (w *World) Entities() []*Entity {
	ids := slices.Sorted(maps.Keys(w.entities))
	out := make([]*Entity, len(ids))
	for i, id := range ids {
		out[i] = w.entities[id]
	}
	return out
}

// RemoveEntity schedules id for deletion at the next CommitDeletions.
func (w *World) RemoveEntity(id EntityID) {
	if _, ok := w.pendingSet[id]; ok {
		return
	}
	w.pendingSet[id] = struct{}{}
	w.pending = append(w.pending, id)
}

// PendingDeletions returns the ids scheduled for deletion, in request order.
func (w *World) PendingDeletions() []EntityID { return w.pending }

// CommitDeletions erases every scheduled entity and returns the ids that were
// actually removed, in request order.
func (w *World) CommitDeletions() []EntityID {
	if len(w.pending) == 0 {
		return nil
	}
	removed := make([]EntityID, 0, len(w.pending))
	for _, id := range w.pending {
		if _, ok := w.entities[id]; !ok {
			continue
		}
		delete(w.entities, id)
		removed = append(removed, id)
	}
	w.pending = w.pending[:0]
	clear(w.pendingSet)

	for _, id := range removed {
		Broadcast(w, EntityDestroyed{ID: id})
	}
	return removed
}

// AddSystem configures sys and schedules it.
func (w *World) AddSystem(sys System) error {
	if err := sys.Configure(w); err != nil {
		return fmt.Errorf("configure system %s: %w", sys.Name(), err)
	}
	if err := w.systems.add(sys); err != nil {
		sys.Unconfigure(w)
		return err
	}
	w.logger.Debug("System added", log.String("system", sys.Name()))
	return nil
}

// RemoveSystem unconfigures and unschedules the named system.
func (w *World) RemoveSystem(name string) error {
	sys, ok := w.systems.remove(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSystemNotFound, name)
	}
	sys.Unconfigure(w)
	return nil
}

// Systems returns system names in execution order, Renderer last.
func (w *World) Systems() []string { return w.systems.names() }

// SetPassHook installs a callback invoked at the start of every logic pass
// with the slot being simulated.
func (w *World) SetPassHook(hook func(slot int)) { w.passHook = hook }

// Tick runs one logic pass per local player, then the renderer once.
func (w *World) Tick() {
	for slot := 0; slot < w.players.Amount(); slot++ {
		w.players.SetCurrent(slot)
		if w.passHook != nil {
			w.passHook(slot)
		}
		for _, entry := range w.systems.entries {
			entry.system.Tick(w)
		}
	}
	w.players.SetCurrent(w.players.Own())
	if w.systems.renderer != nil {
		w.systems.renderer.Tick(w)
	}
	w.frame++
}

// Close unconfigures every system in reverse execution order.
func (w *World) Close() {
	if w.systems.renderer != nil {
		w.systems.renderer.Unconfigure(w)
	}
	for i := len(w.systems.entries) - 1; i >= 0; i-- {
		w.systems.entries[i].system.Unconfigure(w)
	}
	w.systems = schedule{}
	w.logger.Debug("World closed", log.Int("entities", len(w.entities)))
}

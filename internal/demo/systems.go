package demo

import (
	"math/rand/v2"
	"time"

	"github.com/zeusync/deltasync/internal/core/components"
	"github.com/zeusync/deltasync/internal/core/ecs"
	"github.com/zeusync/deltasync/internal/core/observability/log"
	"github.com/zeusync/deltasync/internal/core/protocol"
	"github.com/zeusync/deltasync/internal/engine"
)

// InputSystem turns arrow keys into ship movements.
type InputSystem struct {
	ecs.BaseSystem
	step     float32
	duration time.Duration
	clock    func() time.Time
	sub      ecs.SubscriptionID
}

func NewInputSystem(step float32, duration time.Duration, clock func() time.Time) *InputSystem {
	return &InputSystem{
		BaseSystem: ecs.BaseSystem{SystemName: "Input", SystemPhase: ecs.PhasePreUpdate},
		step:       step,
		duration:   duration,
		clock:      clock,
	}
}

func (s *InputSystem) Configure(w *ecs.World) error {
	s.sub = ecs.Subscribe(w, func(ev engine.PlayerInput) { s.onInput(w, ev) })
	return nil
}

func (s *InputSystem) Unconfigure(w *ecs.World) {
	ecs.Unsubscribe[engine.PlayerInput](w, s.sub)
}

func (*InputSystem) Tick(*ecs.World) {}

func (s *InputSystem) onInput(w *ecs.World, ev engine.PlayerInput) {
	if ev.Event.Kind != protocol.InputKeyPressed {
		return
	}
	var dx, dy float32
	switch ev.Event.Code {
	case KeyLeft:
		dx = -s.step
	case KeyRight:
		dx = s.step
	case KeyUp:
		dy = -s.step
	case KeyDown:
		dy = s.step
	default:
		return
	}
	ship := shipOf(w, ev.Slot)
	if ship == nil || ecs.Has[*components.Moving](ship) {
		return
	}
	pos, err := ecs.Get[*components.Position](ship)
	if err != nil {
		return
	}
	dx = clamp(float32(pos.X)+dx, 0, ArenaWidth-shipSize) - float32(pos.X)
	dy = clamp(float32(pos.Y)+dy, 0, ArenaHeight-shipSize) - float32(pos.Y)
	ship.Add(components.NewMoving(float32(pos.X), float32(pos.Y), dx, dy, s.duration, s.clock()))
}

// MovementSystem advances Moving components into positions and drops them
// once complete.
type MovementSystem struct {
	ecs.BaseSystem
	clock func() time.Time
}

func NewMovementSystem(clock func() time.Time) *MovementSystem {
	return &MovementSystem{
		BaseSystem: ecs.BaseSystem{SystemName: "Movement", SystemPriority: ecs.PriorityHigh},
		clock:      clock,
	}
}

func (s *MovementSystem) Tick(w *ecs.World) {
	if !firstPass(w) {
		return
	}
	now := s.clock()
	ecs.Each2(w, func(e *ecs.Entity, m *components.Moving, pos *components.Position) {
		x, y, done := m.Sample(now)
		if nx, ny := int32(x), int32(y); nx != pos.X || ny != pos.Y {
			pos.X, pos.Y = nx, ny
			pos.SetChanged(true)
		}
		if done {
			ecs.Remove[*components.Moving](e, true)
		}
	})
}

// Spawner launches asteroids across the arena from the right edge.
type Spawner struct {
	ecs.BaseSystem
	interval time.Duration
	travel   time.Duration
	clock    func() time.Time
	rng      *rand.Rand
	next     time.Time
}

func NewSpawner(interval, travel time.Duration, clock func() time.Time, rng *rand.Rand) *Spawner {
	return &Spawner{
		BaseSystem: ecs.BaseSystem{SystemName: "Spawner", SystemPhase: ecs.PhasePreUpdate},
		interval:   interval,
		travel:     travel,
		clock:      clock,
		rng:        rng,
	}
}

func (s *Spawner) Configure(*ecs.World) error {
	s.next = s.clock().Add(s.interval)
	return nil
}

func (s *Spawner) Tick(w *ecs.World) {
	if !firstPass(w) {
		return
	}
	now := s.clock()
	if now.Before(s.next) {
		return
	}
	s.next = now.Add(s.interval)
	SpawnAsteroid(w, s.rng.Int32N(ArenaHeight-shipSize), s.travel, now)
}

// SpawnAsteroid creates an asteroid at the right edge flying to the left edge.
func SpawnAsteroid(w *ecs.World, y int32, travel time.Duration, now time.Time) *ecs.Entity {
	e := w.AddEntity(
		components.NewPosition(ArenaWidth, y),
		components.NewMoving(ArenaWidth, float32(y), -ArenaWidth-shipSize, 0, travel, now),
		components.NewCollision(0, 0, shipSize, shipSize),
		components.NewRenderable("assets/asteroid.png", ArenaWidth, float32(y), 5),
	)
	w.Logger().Debug("Asteroid spawned", log.Uint64("id", uint64(e.ID())), log.Int32("y", y))
	return e
}

// CollisionSystem damages ships hit by asteroids and scores the asteroids
// that left the arena. A ship without health is removed and reported dead.
type CollisionSystem struct {
	ecs.BaseSystem
}

func NewCollisionSystem() *CollisionSystem {
	return &CollisionSystem{BaseSystem: ecs.BaseSystem{SystemName: "Collision", SystemPhase: ecs.PhasePostUpdate}}
}

func (s *CollisionSystem) Tick(w *ecs.World) {
	if !firstPass(w) {
		return
	}
	pending := make(map[ecs.EntityID]bool, len(w.PendingDeletions()))
	for _, id := range w.PendingDeletions() {
		pending[id] = true
	}

	var ships, hazards []*ecs.Entity
	ecs.Each2(w, func(e *ecs.Entity, _ *components.Position, _ *components.Collision) {
		if pending[e.ID()] {
			return
		}
		if ecs.Has[*components.Player](e) {
			ships = append(ships, e)
		} else {
			hazards = append(hazards, e)
		}
	})

	for _, hazard := range hazards {
		hit := false
		for _, ship := range ships {
			if pending[ship.ID()] || !overlap(ship, hazard) {
				continue
			}
			hit = true
			s.damage(w, ship, pending)
			break
		}
		pos, _ := ecs.Get[*components.Position](hazard)
		if hit || pos.X <= -shipSize {
			if !hit {
				award(ships, pending)
			}
			w.RemoveEntity(hazard.ID())
			pending[hazard.ID()] = true
		}
	}
}

func (s *CollisionSystem) damage(w *ecs.World, ship *ecs.Entity, pending map[ecs.EntityID]bool) {
	health, err := ecs.Get[*components.Health](ship)
	if err != nil {
		return
	}
	health.Damage(1)
	if health.Alive() {
		return
	}
	player, _ := ecs.Get[*components.Player](ship)
	w.RemoveEntity(ship.ID())
	pending[ship.ID()] = true
	w.Logger().Info("Ship destroyed", log.Int32("slot", player.Slot))
	ecs.Broadcast(w, engine.PlayerDied{Slot: int(player.Slot)})
}

func award(ships []*ecs.Entity, pending map[ecs.EntityID]bool) {
	for _, ship := range ships {
		if pending[ship.ID()] {
			continue
		}
		if score, err := ecs.Get[*components.Score](ship); err == nil {
			score.Add(1)
		}
	}
}

func overlap(a, b *ecs.Entity) bool {
	return hitbox(a).Intersects(hitbox(b))
}

func hitbox(e *ecs.Entity) components.Rect {
	pos, _ := ecs.Get[*components.Position](e)
	col, _ := ecs.Get[*components.Collision](e)
	return col.Rect.Offset(float32(pos.X), float32(pos.Y))
}

func clamp(v, lo, hi float32) float32 {
	return min(max(v, lo), hi)
}

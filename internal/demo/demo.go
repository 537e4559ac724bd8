// Package demo is a small shoot-'em-up used to exercise the engine end to
// end: ships steered by their players dodge asteroids spawned by the server.
package demo

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/zeusync/deltasync/internal/core/components"
	"github.com/zeusync/deltasync/internal/core/ecs"
	"github.com/zeusync/deltasync/internal/core/protocol"
	"github.com/zeusync/deltasync/internal/engine"
)

// Key codes sent in KeyPressed events.
const (
	KeySpace int32 = 57
	KeyLeft  int32 = 71
	KeyRight int32 = 72
	KeyUp    int32 = 73
	KeyDown  int32 = 74
)

// Arena bounds in world units.
const (
	ArenaWidth  = 800
	ArenaHeight = 600
	shipSize    = 32
	shipHealth  = 3
)

// InputSink receives locally produced input events, typically a client
// network.Session.
type InputSink interface {
	AddEvent(ev protocol.InputEvent) bool
}

type Options struct {
	Clock func() time.Time
	// Seed drives the asteroid spawner.
	Seed           uint64
	SpawnInterval  time.Duration
	AsteroidTravel time.Duration
	Step           float32
	StepDuration   time.Duration
	// Autopilot steers the local ship on a client.
	Autopilot         bool
	AutopilotInterval time.Duration
	// RenderEvery is the number of frames between two renderer log lines.
	RenderEvery uint64
}

func DefaultOptions() Options {
	return Options{
		Clock:             time.Now,
		Seed:              1,
		SpawnInterval:     1500 * time.Millisecond,
		AsteroidTravel:    4 * time.Second,
		Step:              48,
		StepDuration:      150 * time.Millisecond,
		AutopilotInterval: 400 * time.Millisecond,
		RenderEvery:       60,
	}
}

// Install registers the lobby, game and game over worlds on c.
func Install(c *engine.Context, opts Options) error {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.RenderEvery == 0 {
		opts.RenderEvery = 1
	}
	cfg := c.Config()
	return errors.Join(
		c.AddWorldFactory(cfg.InitialWorld, func(c *engine.Context, w *ecs.World) error {
			return buildBanner(w, "Waiting for players", opts)
		}),
		c.AddWorldFactory(cfg.GameWorld, func(c *engine.Context, w *ecs.World) error {
			return buildGame(c, w, opts)
		}),
		c.AddWorldFactory(cfg.GameOverWorld, func(c *engine.Context, w *ecs.World) error {
			return buildBanner(w, "Game over", opts)
		}),
	)
}

func buildBanner(w *ecs.World, text string, opts Options) error {
	w.AddEntity(&components.Text{Content: text, Size: 32})
	return w.AddSystem(NewRenderer(opts.RenderEvery))
}

func buildGame(c *engine.Context, w *ecs.World, opts Options) error {
	if err := w.AddSystem(NewRenderer(opts.RenderEvery)); err != nil {
		return err
	}
	if !c.Authoritative() {
		if s := c.Session(); opts.Autopilot && s != nil {
			return w.AddSystem(NewAutopilot(s, opts.AutopilotInterval, opts.Clock, opts.Seed))
		}
		return nil
	}

	for slot := range c.Players().Amount() {
		SpawnShip(w, slot)
	}
	return errors.Join(
		w.AddSystem(NewInputSystem(opts.Step, opts.StepDuration, opts.Clock)),
		w.AddSystem(NewMovementSystem(opts.Clock)),
		w.AddSystem(NewSpawner(opts.SpawnInterval, opts.AsteroidTravel, opts.Clock, rand.New(rand.NewPCG(opts.Seed, opts.Seed)))),
		w.AddSystem(NewCollisionSystem()),
	)
}

// SpawnShip creates the ship of slot on the left side of the arena.
func SpawnShip(w *ecs.World, slot int) *ecs.Entity {
	y := int32(ArenaHeight/(MaxShips+1)) * int32(slot+1)
	return w.AddEntity(
		&components.Player{Slot: int32(slot)},
		components.NewPosition(64, y),
		components.NewCollision(0, 0, shipSize, shipSize),
		&components.Health{Value: shipHealth},
		&components.Score{},
		components.NewRenderable("assets/ship.png", 64, float32(y), 10),
	)
}

// MaxShips is the largest lobby the arena lays out.
const MaxShips = 4

// shipOf returns the live ship of slot.
func shipOf(w *ecs.World, slot int) *ecs.Entity {
	var found *ecs.Entity
	ecs.Each1(w, func(e *ecs.Entity, p *components.Player) {
		if found == nil && int(p.Slot) == slot {
			found = e
		}
	})
	return found
}

// firstPass reports whether the pass in progress is the first of the tick.
// World-wide logic runs once per tick, not once per player.
func firstPass(w *ecs.World) bool {
	return w.Players().Current() == 0
}

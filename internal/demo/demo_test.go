package demo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/deltasync/internal/core/components"
	"github.com/zeusync/deltasync/internal/core/ecs"
	"github.com/zeusync/deltasync/internal/core/network"
	"github.com/zeusync/deltasync/internal/core/observability/log"
	"github.com/zeusync/deltasync/internal/core/protocol"
	"github.com/zeusync/deltasync/internal/core/protocol/memory"
	"github.com/zeusync/deltasync/internal/engine"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time          { return c.now }
func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func offline(t *testing.T) (*engine.Context, *clock) {
	t.Helper()
	clk := &clock{now: time.Unix(1_700_000_000, 0)}
	reg, err := components.NewRegistry()
	require.NoError(t, err)
	cfg := engine.DefaultConfig()
	cfg.Name = "solo"
	c, err := engine.NewContext(cfg, reg, nil, log.NewNop())
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Clock = clk.Now
	require.NoError(t, Install(c, opts))
	require.NoError(t, c.Init())
	return c, clk
}

func ship(t *testing.T, w *ecs.World) *ecs.Entity {
	t.Helper()
	e := shipOf(w, 0)
	require.NotNil(t, e)
	return e
}

func TestWorlds(t *testing.T) {
	c, _ := offline(t)
	assert.Equal(t, []string{"GameOver", "game", "lobby"}, c.Worlds())
	assert.Equal(t, []string{"Waiting for players"}, Capture(c.World()).Labels)

	require.NoError(t, c.SwitchWorld("game"))
	w := c.World()
	assert.Equal(t, []string{"Input", "Spawner", "Movement", "Collision", ecs.RendererName}, w.Systems())
	frame := Capture(w)
	require.Len(t, frame.Ships, 1)
	assert.Equal(t, ShipView{X: 64, Y: 120, Health: shipHealth}, frame.Ships[0])
	assert.Equal(t, 1, frame.Sprites)
}

func TestArrowKeysMoveShip(t *testing.T) {
	c, clk := offline(t)
	require.NoError(t, c.SwitchWorld("game"))
	w := c.World()

	ecs.Broadcast(w, engine.PlayerInput{Slot: 0, Event: protocol.KeyPressed(KeyRight, protocol.Modifiers{})})
	ecs.Broadcast(w, engine.PlayerInput{Slot: 0, Event: protocol.KeyPressed(KeyDown, protocol.Modifiers{})})
	assert.True(t, ecs.Has[*components.Moving](ship(t, w)), "a second key waits for the first move")

	clk.Advance(DefaultOptions().StepDuration)
	require.NoError(t, c.Frame())
	pos, err := ecs.Get[*components.Position](ship(t, w))
	require.NoError(t, err)
	assert.Equal(t, int32(112), pos.X)
	assert.Equal(t, int32(120), pos.Y)
	assert.False(t, ecs.Has[*components.Moving](ship(t, w)))
	assert.Equal(t, []ecs.ComponentType{ecs.TypeMoving}, ship(t, w).PendingRemovals())

	ecs.Broadcast(w, engine.PlayerInput{Slot: 0, Event: protocol.KeyPressed(KeyLeft, protocol.Modifiers{})})
	ecs.Broadcast(w, engine.PlayerInput{Slot: 0, Event: protocol.KeyReleased(KeyUp, protocol.Modifiers{})})
	ecs.Broadcast(w, engine.PlayerInput{Slot: 3, Event: protocol.KeyPressed(KeyUp, protocol.Modifiers{})})
	m, err := ecs.Get[*components.Moving](ship(t, w))
	require.NoError(t, err)
	assert.Equal(t, float32(-48), m.AmountX)
}

func TestShipStaysInArena(t *testing.T) {
	c, clk := offline(t)
	require.NoError(t, c.SwitchWorld("game"))
	w := c.World()
	for range 5 {
		ecs.Broadcast(w, engine.PlayerInput{Slot: 0, Event: protocol.KeyPressed(KeyLeft, protocol.Modifiers{})})
		clk.Advance(time.Second)
		require.NoError(t, c.Frame())
	}
	pos, err := ecs.Get[*components.Position](ship(t, w))
	require.NoError(t, err)
	assert.Equal(t, int32(0), pos.X)
}

func TestCollisionsEndTheGame(t *testing.T) {
	c, _ := offline(t)
	require.NoError(t, c.SwitchWorld("game"))
	w := c.World()
	var died []int
	ecs.Subscribe(w, func(ev engine.PlayerDied) { died = append(died, ev.Slot) })

	for hit := 1; hit <= shipHealth; hit++ {
		pos, err := ecs.Get[*components.Position](ship(t, w))
		require.NoError(t, err)
		rock := w.AddEntity(components.NewPosition(pos.X+8, pos.Y+8), components.NewCollision(0, 0, 32, 32))
		require.NoError(t, c.Frame())
		if hit < shipHealth {
			assert.False(t, w.Exists(rock.ID()))
			h, err := ecs.Get[*components.Health](ship(t, w))
			require.NoError(t, err)
			assert.Equal(t, int32(shipHealth-hit), h.Value)
		}
	}
	assert.Equal(t, []int{0}, died)
	assert.Equal(t, "GameOver", c.World().Name())
	assert.Equal(t, []string{"Game over"}, Capture(c.World()).Labels)
}

func TestDodgedAsteroidsScore(t *testing.T) {
	c, clk := offline(t)
	require.NoError(t, c.SwitchWorld("game"))
	w := c.World()
	opts := DefaultOptions()

	clk.Advance(opts.SpawnInterval)
	require.NoError(t, c.Frame())
	require.Equal(t, 2, w.Len(), "one asteroid spawned")
	var rock ecs.EntityID
	ecs.Each1(w, func(e *ecs.Entity, _ *components.Moving) { rock = e.ID() })
	require.NotZero(t, rock)

	clk.Advance(opts.AsteroidTravel)
	require.NoError(t, c.Frame())
	assert.False(t, w.Exists(rock))
	score, err := ecs.Get[*components.Score](ship(t, w))
	require.NoError(t, err)
	assert.Equal(t, int32(1), score.Value)
	assert.True(t, score.Changed())
}

type sink struct{ events []protocol.InputEvent }

func (s *sink) AddEvent(ev protocol.InputEvent) bool {
	s.events = append(s.events, ev)
	return true
}

func TestAutopilot(t *testing.T) {
	clk := &clock{now: time.Unix(0, 0)}
	out := &sink{}
	w := ecs.NewWorld("game")
	pilot := NewAutopilot(out, 100*time.Millisecond, clk.Now, 7)
	require.NoError(t, w.AddSystem(pilot))

	w.Tick()
	w.Tick()
	require.Len(t, out.events, 1)
	clk.Advance(100 * time.Millisecond)
	w.Tick()
	require.Len(t, out.events, 2)
	assert.Equal(t, 2, pilot.Sent())
	for _, ev := range out.events {
		assert.Equal(t, protocol.InputKeyPressed, ev.Kind)
		assert.Contains(t, arrows[:], ev.Code)
	}

	w.Players().SetOwn(1)
	clk.Advance(time.Second)
	w.Tick()
	assert.Len(t, out.events, 2, "only the local player's pass steers")
}

func TestReplicaGameWorld(t *testing.T) {
	s, err := network.NewSession(network.Config{Role: network.RoleClient, ServerAddr: memory.Addr("server")}, log.NewNop())
	require.NoError(t, err)
	reg, err := components.NewRegistry()
	require.NoError(t, err)
	c, err := engine.NewContext(engine.DefaultConfig(), reg, s, log.NewNop())
	require.NoError(t, err)
	opts := DefaultOptions()
	opts.Autopilot = true
	require.NoError(t, Install(c, opts))
	require.NoError(t, c.Init())

	require.NoError(t, c.SwitchWorld("game"))
	assert.Zero(t, c.World().Len(), "replicas wait for the server snapshot")
	assert.Equal(t, []string{"Autopilot", ecs.RendererName}, c.World().Systems())
}

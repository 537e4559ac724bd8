// Package engine drives a World and its network Session once per frame.
//
// A Context owns everything one simulation needs: the component registry, the
// entity id allocator, the player slots, the current World and an optional
// Session. Several contexts can live in one process. A Context is confined to
// the game goroutine; only Status may be called from elsewhere.
package engine

import (
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/zeusync/deltasync/internal/core/ecs"
	"github.com/zeusync/deltasync/internal/core/network"
	"github.com/zeusync/deltasync/internal/core/observability/log"
	"github.com/zeusync/deltasync/internal/core/protocol"
)

// LocalIDBase is where a replica starts allocating ids for its own entities,
// far above the ids the server hands out.
const LocalIDBase ecs.EntityID = 1 << 62

// WorldFactory populates a freshly created world with its systems and
// entities.
type WorldFactory func(c *Context, w *ecs.World) error

type Config struct {
	// Name tags logs and status, e.g. "server" or "client".
	Name          string
	TickRate      int
	InitialWorld  string
	GameWorld     string
	GameOverWorld string
	// AutoStart starts the game on the server once MinPlayers joined and the
	// lobby was open for LobbyDelay.
	AutoStart  bool
	MinPlayers int
	LobbyDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		Name:          "engine",
		TickRate:      60,
		InitialWorld:  "lobby",
		GameWorld:     "game",
		GameOverWorld: "GameOver",
		AutoStart:     true,
		MinPlayers:    2,
		LobbyDelay:    3 * time.Second,
	}
}

// TickInterval is the frame period.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

type Context struct {
	cfg      Config
	logger   log.Log
	registry *ecs.Registry
	ids      *ecs.IDAllocator
	players  *ecs.Players
	session  *network.Session
	now      func() time.Time

	factories map[string]WorldFactory
	world     *ecs.World
	retired   []*ecs.World
	openedAt  time.Time

	inputs map[int][]protocol.InputEvent
	// deletions committed before launch, sent with the first deltas
	unsent []ecs.EntityID

	// offline game over bookkeeping
	dead      map[int]bool
	needReset bool

	status atomic.Pointer[Status]
}

// NewContext seals reg and builds an idle context. session may be nil for an
// offline simulation.
func NewContext(cfg Config, reg *ecs.Registry, session *network.Session, logger log.Log) (*Context, error) {
	if cfg.TickRate <= 0 {
		return nil, ErrInvalidTickRate
	}
	if cfg.MinPlayers == 0 {
		cfg.MinPlayers = 2
	}
	if logger == nil {
		logger = log.Provide()
	}
	if cfg.Name == "" {
		cfg.Name = "engine"
	}
	reg.Seal()

	first := ecs.EntityID(1)
	if session != nil && !session.IsServer() {
		first = LocalIDBase
	}
	return &Context{
		cfg:       cfg,
		logger:    logger.With(log.String("component", "engine"), log.String("engine", cfg.Name)),
		registry:  reg,
		ids:       ecs.NewIDAllocator(first),
		players:   ecs.NewPlayers(),
		session:   session,
		now:       time.Now,
		factories: make(map[string]WorldFactory),
		inputs:    make(map[int][]protocol.InputEvent),
		dead:      make(map[int]bool),
	}, nil
}

func (c *Context) Config() Config            { return c.cfg }
func (c *Context) Logger() log.Log           { return c.logger }
func (c *Context) Registry() *ecs.Registry   { return c.registry }
func (c *Context) Players() *ecs.Players     { return c.players }
func (c *Context) Session() *network.Session { return c.session }
func (c *Context) IDs() *ecs.IDAllocator     { return c.ids }
func (c *Context) World() *ecs.World         { return c.world }

// SetClock replaces the time source used for the lobby delay.
func (c *Context) SetClock(now func() time.Time) { c.now = now }

// Authoritative reports whether this context owns the game state: a server
// or an offline simulation.
func (c *Context) Authoritative() bool {
	return c.session == nil || c.session.IsServer()
}

// AddWorldFactory registers the builder of a named world.
func (c *Context) AddWorldFactory(name string, factory WorldFactory) error {
	if _, ok := c.factories[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateWorld, name)
	}
	c.factories[name] = factory
	return nil
}

// Worlds returns the registered world names, sorted.
func (c *Context) Worlds() []string {
	names := make([]string, 0, len(c.factories))
	for name := range c.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Init builds the initial world. It is a no-op once a world exists.
func (c *Context) Init() error {
	if c.world != nil {
		return nil
	}
	if err := c.SwitchWorld(c.cfg.InitialWorld); err != nil {
		return err
	}
	c.publish()
	return nil
}

// SwitchWorld builds the named world and makes it current. The previous world
// keeps its systems until the start of the next frame.
func (c *Context) SwitchWorld(name string) error {
	factory, ok := c.factories[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWorld, name)
	}

	w := ecs.NewWorld(name,
		ecs.WithIDAllocator(c.ids),
		ecs.WithPlayers(c.players),
		ecs.WithLogger(c.logger),
	)
	w.SetPassHook(func(slot int) { c.deliverInputs(w, slot) })
	ecs.Subscribe(w, c.onPlayerDied)

	if err := factory(c, w); err != nil {
		w.Close()
		return fmt.Errorf("build world %s: %w", name, err)
	}

	from := ""
	if c.world != nil {
		from = c.world.Name()
		c.retired = append(c.retired, c.world)
	}
	c.world = w
	c.openedAt = c.now()
	c.logger.Info("World switched",
		log.String("from", from),
		log.String("to", name),
		log.Int("entities", w.Len()),
		log.Strings("systems", w.Systems()))
	return nil
}

// Close tears down every world.
func (c *Context) Close() {
	c.teardown()
	if c.world != nil {
		c.world.Close()
		c.world = nil
	}
}

func (c *Context) teardown() {
	for _, w := range c.retired {
		w.Close()
	}
	clear(c.retired)
	c.retired = c.retired[:0]
}

func (c *Context) deliverInputs(w *ecs.World, slot int) {
	events := c.inputs[slot]
	if len(events) == 0 {
		return
	}
	delete(c.inputs, slot)
	for _, ev := range events {
		ecs.Broadcast(w, PlayerInput{Slot: slot, Event: ev})
	}
}

func (c *Context) onPlayerDied(ev PlayerDied) {
	c.logger.Info("Player died", log.Int("slot", ev.Slot))
	if c.session == nil {
		c.dead[ev.Slot] = true
		if len(c.dead) >= c.players.Amount() {
			c.needReset = true
		}
		return
	}
	if c.session.IsServer() && c.session.MarkDead(ev.Slot) {
		c.session.SendGameOver()
	}
}

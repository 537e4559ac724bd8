package engine

import (
	"fmt"
	"time"

	"github.com/zeusync/deltasync/internal/core/ecs"
	"github.com/zeusync/deltasync/internal/core/network"
	"github.com/zeusync/deltasync/internal/core/observability/log"
)

// Status is a point-in-time copy of a context, safe to read from any
// goroutine.
type Status struct {
	Name      string          `json:"name"`
	World     string          `json:"world"`
	Frame     uint64          `json:"frame"`
	Entities  int             `json:"entities"`
	Checksum  string          `json:"checksum"`
	Players   int             `json:"players"`
	OwnSlot   int             `json:"own_slot"`
	Systems   []string        `json:"systems"`
	Session   *network.Status `json:"session,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Frame advances the simulation by one step:
//
//  1. retired worlds are torn down
//  2. network hand-offs are applied
//  3. the world ticks, inputs reaching the pass of their slot
//  4. a finished game switches to the game over world
//  5. deferred deletions are committed
//  6. the server sends this frame's deltas
func (c *Context) Frame() error {
	if c.world == nil {
		return ErrNotInitialized
	}
	c.teardown()
	if err := c.drain(); err != nil {
		return err
	}
	c.autoStart()

	c.world.Tick()
	clear(c.inputs)

	if err := c.checkReset(); err != nil {
		return err
	}
	c.replicate(c.world.CommitDeletions())
	c.publish()
	return nil
}

// Status returns the snapshot published by the last frame.
func (c *Context) Status() Status {
	if st := c.status.Load(); st != nil {
		return *st
	}
	return Status{Name: c.cfg.Name}
}

func (c *Context) drain() error {
	if c.session == nil {
		return nil
	}
	for _, in := range c.session.Drain() {
		switch in.Kind {
		case network.InboundUpdate:
			if err := network.ApplyUpdate(c.registry, c.world, in.Update); err != nil {
				c.logger.Warn("Update partially applied",
					log.Stringer("kind", in.Update.Kind),
					log.Error(err))
			}
		case network.InboundSwitchWorld:
			if err := c.SwitchWorld(c.cfg.GameWorld); err != nil {
				return err
			}
		case network.InboundBarrierComplete:
			c.players.SetAmount(in.Count)
			if err := c.SwitchWorld(c.cfg.GameWorld); err != nil {
				return err
			}
			c.session.SendInitializeGame(c.world)
		case network.InboundOwnSlot:
			c.players.SetOwn(in.Slot)
			c.players.SetCurrent(in.Slot)
		case network.InboundPlayerCount:
			c.players.SetAmount(in.Count)
		case network.InboundLaunch:
			ecs.Broadcast(c.world, GameLaunched{Players: c.players.Amount()})
		case network.InboundInputs:
			c.inputs[in.Slot] = append(c.inputs[in.Slot], in.Events...)
		default:
			return fmt.Errorf("engine: unexpected hand-off %s", in.Kind)
		}
	}
	return nil
}

func (c *Context) autoStart() {
	s := c.session
	if !c.cfg.AutoStart || s == nil || !s.IsServer() {
		return
	}
	if s.IsReadyToStart() || s.GameHasStarted() || c.now().Sub(c.openedAt) < c.cfg.LobbyDelay {
		return
	}
	if s.PeerCount() < c.cfg.MinPlayers {
		return
	}
	if err := s.StartGame(); err != nil {
		c.logger.Debug("Automatic start skipped", log.Error(err))
	}
}

func (c *Context) checkReset() error {
	reset := c.needReset || (c.session != nil && c.session.NeedToReset())
	if !reset {
		return nil
	}
	if err := c.SwitchWorld(c.cfg.GameOverWorld); err != nil {
		return err
	}
	if c.session != nil {
		c.session.Reset()
	}
	c.needReset = false
	clear(c.dead)
	clear(c.inputs)
	c.unsent = nil
	c.players.SetAmount(1)
	return nil
}

func (c *Context) replicate(deleted []ecs.EntityID) {
	s := c.session
	if s == nil || !s.IsServer() {
		return
	}
	switch {
	case s.GameHasStarted():
		if len(c.unsent) > 0 {
			deleted = append(c.unsent, deleted...)
			c.unsent = nil
		}
		s.SendDeltas(c.world, deleted)
	case s.IsReadyToStart():
		c.unsent = append(c.unsent, deleted...)
	}
}

func (c *Context) publish() {
	w := c.world
	st := &Status{
		Name:      c.cfg.Name,
		World:     w.Name(),
		Frame:     w.Frame(),
		Entities:  w.Len(),
		Checksum:  fmt.Sprintf("%016x", w.Checksum()),
		Players:   c.players.Amount(),
		OwnSlot:   c.players.Own(),
		Systems:   w.Systems(),
		UpdatedAt: c.now(),
	}
	if c.session != nil {
		ss := c.session.Status()
		st.Session = &ss
	}
	c.status.Store(st)
}

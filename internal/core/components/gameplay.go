package components

import (
	"github.com/zeusync/deltasync/internal/core/ecs"
	"github.com/zeusync/deltasync/pkg/encoding"
)

// Player marks the entity controlled by a lobby slot.
type Player struct {
	ecs.Base
	Slot int32
}

func (*Player) Type() ecs.ComponentType { return ecs.TypePlayer }

func (p *Player) Encode() []byte {
	w := encoding.NewWriter(4)
	w.Int32(p.Slot)
	return w.Bytes()
}

func (p *Player) Decode(data []byte) error {
	r := encoding.NewReader(data)
	p.Slot = r.Int32()
	return r.Expect()
}

// Health is the remaining hit points of an entity.
type Health struct {
	ecs.Base
	Value int32
}

func (*Health) Type() ecs.ComponentType { return ecs.TypeHealth }

// Alive reports whether any hit points remain.
func (h *Health) Alive() bool { return h.Value > 0 }

// Damage subtracts amount, never going below zero.
func (h *Health) Damage(amount int32) {
	h.Value = max(h.Value-amount, 0)
	h.SetChanged(true)
}

func (h *Health) Encode() []byte {
	w := encoding.NewWriter(4)
	w.Int32(h.Value)
	return w.Bytes()
}

func (h *Health) Decode(data []byte) error {
	r := encoding.NewReader(data)
	h.Value = r.Int32()
	return r.Expect()
}

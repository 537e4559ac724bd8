package components

import (
	"time"

	"github.com/zeusync/deltasync/internal/core/ecs"
	"github.com/zeusync/deltasync/pkg/encoding"
)

// Position is an integer world coordinate.
type Position struct {
	ecs.Base
	X, Y int32
}

func NewPosition(x, y int32) *Position { return &Position{X: x, Y: y} }

func (*Position) Type() ecs.ComponentType { return ecs.TypePosition }

func (p *Position) Encode() []byte {
	w := encoding.NewWriter(8)
	w.Int32(p.X)
	w.Int32(p.Y)
	return w.Bytes()
}

func (p *Position) Decode(data []byte) error {
	r := encoding.NewReader(data)
	p.X, p.Y = r.Int32(), r.Int32()
	return r.Expect()
}

// Speed is a scalar velocity in world units per tick.
type Speed struct {
	ecs.Base
	Value float32
}

func NewSpeed(v float32) *Speed { return &Speed{Value: v} }

func (*Speed) Type() ecs.ComponentType { return ecs.TypeSpeed }

func (s *Speed) Encode() []byte {
	w := encoding.NewWriter(4)
	w.Float32(s.Value)
	return w.Bytes()
}

func (s *Speed) Decode(data []byte) error {
	r := encoding.NewReader(data)
	s.Value = r.Float32()
	return r.Expect()
}

// Moving interpolates an entity from Initial to Initial+Amount over
// Duration milliseconds, starting at StartMillis (Unix milliseconds).
type Moving struct {
	ecs.Base
	InitialX, InitialY float32
	AmountX, AmountY   float32
	Duration           uint64
	StartMillis        uint64
}

// NewMoving starts a movement at now. A zero duration is raised to 1ms.
func NewMoving(fromX, fromY, byX, byY float32, duration time.Duration, now time.Time) *Moving {
	ms := uint64(duration.Milliseconds())
	if ms == 0 {
		ms = 1
	}
	return &Moving{
		InitialX: fromX, InitialY: fromY,
		AmountX: byX, AmountY: byY,
		Duration:    ms,
		StartMillis: uint64(now.UnixMilli()),
	}
}

func (*Moving) Type() ecs.ComponentType { return ecs.TypeMoving }

// Sample returns the interpolated coordinate at now and whether the
// movement is complete.
func (m *Moving) Sample(now time.Time) (x, y float32, done bool) {
	duration := m.Duration
	if duration == 0 {
		duration = 1
	}
	elapsed := int64(now.UnixMilli()) - int64(m.StartMillis)
	progress := float32(1)
	if elapsed < 0 {
		progress = 0
	} else if uint64(elapsed) < duration {
		progress = float32(elapsed) / float32(duration)
	}
	return m.InitialX + m.AmountX*progress, m.InitialY + m.AmountY*progress, progress >= 1
}

func (m *Moving) Encode() []byte {
	w := encoding.NewWriter(32)
	w.Float32(m.InitialX)
	w.Float32(m.InitialY)
	w.Float32(m.AmountX)
	w.Float32(m.AmountY)
	w.Uint64(m.Duration)
	w.Uint64(m.StartMillis)
	return w.Bytes()
}

func (m *Moving) Decode(data []byte) error {
	r := encoding.NewReader(data)
	m.InitialX, m.InitialY = r.Float32(), r.Float32()
	m.AmountX, m.AmountY = r.Float32(), r.Float32()
	m.Duration = r.Uint64()
	m.StartMillis = r.Uint64()
	return r.Expect()
}

// View is the camera centre.
type View struct {
	ecs.Base
	X, Y float32
}

func NewView(x, y float32) *View { return &View{X: x, Y: y} }

func (*View) Type() ecs.ComponentType { return ecs.TypeView }

func (v *View) Encode() []byte {
	w := encoding.NewWriter(8)
	w.Float32(v.X)
	w.Float32(v.Y)
	return w.Bytes()
}

func (v *View) Decode(data []byte) error {
	r := encoding.NewReader(data)
	v.X, v.Y = r.Float32(), r.Float32()
	return r.Expect()
}

// WorldMoveProgress tracks how far the level has scrolled.
type WorldMoveProgress struct {
	ecs.Base
	StartingTime uint64
	Progress     uint64
	Speed        uint64
}

func (*WorldMoveProgress) Type() ecs.ComponentType { return ecs.TypeWorldMoveProgress }

func (p *WorldMoveProgress) Encode() []byte {
	w := encoding.NewWriter(24)
	w.Uint64(p.StartingTime)
	w.Uint64(p.Progress)
	w.Uint64(p.Speed)
	return w.Bytes()
}

func (p *WorldMoveProgress) Decode(data []byte) error {
	r := encoding.NewReader(data)
	p.StartingTime, p.Progress, p.Speed = r.Uint64(), r.Uint64(), r.Uint64()
	return r.Expect()
}

package components

import (
	"github.com/zeusync/deltasync/internal/core/ecs"
	"github.com/zeusync/deltasync/pkg/encoding"
)

// Renderable describes a sprite. Only its description travels on the wire;
// texture loading belongs to the renderer.
type Renderable struct {
	ecs.Base
	X, Y           float32
	Priority       int32
	Rotation       float32
	ScaleX, ScaleY float32
	Width, Height  uint32
	Displayed      bool
	Path           string
	Name           string
}

func NewRenderable(path string, x, y float32, priority int32) *Renderable {
	return &Renderable{X: x, Y: y, Priority: priority, ScaleX: 1, ScaleY: 1, Displayed: true, Path: path}
}

func (*Renderable) Type() ecs.ComponentType { return ecs.TypeRenderable }

func (c *Renderable) Encode() []byte {
	w := encoding.NewWriter(41 + len(c.Path) + len(c.Name))
	w.Float32(c.X)
	w.Float32(c.Y)
	w.Int32(c.Priority)
	w.Float32(c.Rotation)
	w.Float32(c.ScaleX)
	w.Float32(c.ScaleY)
	w.Uint32(c.Width)
	w.Uint32(c.Height)
	w.Bool(c.Displayed)
	w.String(c.Path)
	w.String(c.Name)
	return w.Bytes()
}

func (c *Renderable) Decode(data []byte) error {
	r := encoding.NewReader(data)
	c.X, c.Y = r.Float32(), r.Float32()
	c.Priority = r.Int32()
	c.Rotation = r.Float32()
	c.ScaleX, c.ScaleY = r.Float32(), r.Float32()
	c.Width, c.Height = r.Uint32(), r.Uint32()
	c.Displayed = r.Bool()
	c.Path = r.String()
	c.Name = r.String()
	return r.Expect()
}

// Animation steps through frames of a sprite sheet.
type Animation struct {
	ecs.Base
	TextureLeft, TextureTop     int32
	TextureWidth, TextureHeight int32
	TileX, TileY                int32
	Frame                       int32
	Speed                       int32
	FrameCount                  int32
	Enabled                     bool
}

func (*Animation) Type() ecs.ComponentType { return ecs.TypeAnimation }

// Advance moves to the next frame, wrapping at FrameCount.
func (a *Animation) Advance() {
	if !a.Enabled || a.FrameCount <= 0 {
		return
	}
	a.Frame = (a.Frame + 1) % a.FrameCount
	a.SetChanged(true)
}

func (a *Animation) Encode() []byte {
	w := encoding.NewWriter(37)
	w.Int32(a.TextureLeft)
	w.Int32(a.TextureTop)
	w.Int32(a.TextureWidth)
	w.Int32(a.TextureHeight)
	w.Int32(a.TileX)
	w.Int32(a.TileY)
	w.Int32(a.Frame)
	w.Int32(a.Speed)
	w.Int32(a.FrameCount)
	w.Bool(a.Enabled)
	return w.Bytes()
}

func (a *Animation) Decode(data []byte) error {
	r := encoding.NewReader(data)
	a.TextureLeft, a.TextureTop = r.Int32(), r.Int32()
	a.TextureWidth, a.TextureHeight = r.Int32(), r.Int32()
	a.TileX, a.TileY = r.Int32(), r.Int32()
	a.Frame, a.Speed, a.FrameCount = r.Int32(), r.Int32(), r.Int32()
	a.Enabled = r.Bool()
	return r.Expect()
}

// Text is a label drawn by the local UI. It is never replicated.
type Text struct {
	ecs.Local
	Content string
	Size    int
}

// Score is a player's score.
type Score struct {
	ecs.Base
	Value int32
}

func (*Score) Type() ecs.ComponentType { return ecs.TypeScore }

// Add increases the score and marks it changed.
func (s *Score) Add(points int32) {
	s.Value += points
	s.SetChanged(true)
}

func (s *Score) Encode() []byte {
	w := encoding.NewWriter(4)
	w.Int32(s.Value)
	return w.Bytes()
}

func (s *Score) Decode(data []byte) error {
	r := encoding.NewReader(data)
	s.Value = r.Int32()
	return r.Expect()
}

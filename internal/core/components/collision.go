package components

import (
	"github.com/zeusync/deltasync/internal/core/ecs"
	"github.com/zeusync/deltasync/pkg/encoding"
)

// Rect is an axis-aligned rectangle.
type Rect struct {
	Left, Top, Width, Height float32
}

// Intersects reports whether r and o overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.Left < o.Left+o.Width && o.Left < r.Left+r.Width &&
		r.Top < o.Top+o.Height && o.Top < r.Top+r.Height
}

// Offset moves the rectangle by (x, y).
func (r Rect) Offset(x, y float32) Rect {
	return Rect{Left: r.Left + x, Top: r.Top + y, Width: r.Width, Height: r.Height}
}

// Collision is a hitbox relative to the entity position.
type Collision struct {
	ecs.Base
	Rect Rect
}

func NewCollision(left, top, width, height float32) *Collision {
	return &Collision{Rect: Rect{Left: left, Top: top, Width: width, Height: height}}
}

func (*Collision) Type() ecs.ComponentType { return ecs.TypeCollision }

func (c *Collision) Encode() []byte {
	w := encoding.NewWriter(16)
	w.Float32(c.Rect.Left)
	w.Float32(c.Rect.Top)
	w.Float32(c.Rect.Width)
	w.Float32(c.Rect.Height)
	return w.Bytes()
}

func (c *Collision) Decode(data []byte) error {
	r := encoding.NewReader(data)
	c.Rect = Rect{Left: r.Float32(), Top: r.Float32(), Width: r.Float32(), Height: r.Float32()}
	return r.Expect()
}

// ExcludeCollision disables collisions with one other entity.
type ExcludeCollision struct {
	ecs.Base
	ID ecs.EntityID
}

func (*ExcludeCollision) Type() ecs.ComponentType { return ecs.TypeExcludeCollision }

func (c *ExcludeCollision) Encode() []byte {
	w := encoding.NewWriter(8)
	w.Uint64(uint64(c.ID))
	return w.Bytes()
}

func (c *ExcludeCollision) Decode(data []byte) error {
	r := encoding.NewReader(data)
	c.ID = ecs.EntityID(r.Uint64())
	return r.Expect()
}

// Link attaches an entity to a parent entity.
type Link struct {
	ecs.Base
	Parent ecs.EntityID
}

func (*Link) Type() ecs.ComponentType { return ecs.TypeLink }

func (l *Link) Encode() []byte {
	w := encoding.NewWriter(8)
	w.Uint64(uint64(l.Parent))
	return w.Bytes()
}

func (l *Link) Decode(data []byte) error {
	r := encoding.NewReader(data)
	l.Parent = ecs.EntityID(r.Uint64())
	return r.Expect()
}

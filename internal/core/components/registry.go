// Package components holds the replicated component set and its registry.
package components

import (
	"errors"

	"github.com/zeusync/deltasync/internal/core/ecs"
)

// Register binds every replicated component of this package into r.
func Register(r *ecs.Registry) error {
	return errors.Join(
		ecs.Register(r, func() *Animation { return &Animation{} }),
		ecs.Register(r, func() *Collision { return &Collision{} }),
		ecs.Register(r, func() *ExcludeCollision { return &ExcludeCollision{} }),
		ecs.Register(r, func() *Moving { return &Moving{} }),
		ecs.Register(r, func() *Position { return &Position{} }),
		ecs.Register(r, func() *Renderable { return &Renderable{} }),
		ecs.Register(r, func() *Speed { return &Speed{} }),
		ecs.Register(r, func() *View { return &View{} }),
		ecs.Register(r, func() *WorldMoveProgress { return &WorldMoveProgress{} }),
		ecs.Register(r, func() *Player { return &Player{} }),
		ecs.Register(r, func() *Health { return &Health{} }),
		ecs.Register(r, func() *Score { return &Score{} }),
		ecs.Register(r, func() *Link { return &Link{} }),
	)
}

// NewRegistry returns a sealed registry holding every component of this package.
func NewRegistry() (*ecs.Registry, error) {
	r := ecs.NewRegistry()
	if err := Register(r); err != nil {
		return nil, err
	}
	r.Seal()
	return r, nil
}

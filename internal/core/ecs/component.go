package ecs

import (
	"fmt"

	"github.com/zeusync/deltasync/pkg/encoding"
)

// ComponentType tags a component on the wire. Values are part of the protocol
// and must not be reordered.
type ComponentType int32

const (
	TypeAnimation ComponentType = iota
	TypeCollision
	TypeExcludeCollision
	TypeMoving
	TypePosition
	TypeRenderable
	TypeSpeed
	TypeView
	TypeWorldMoveProgress
	TypeBaseBullet
	TypeEnemy
	TypeEnemyAttack
	TypeEnemyMovements
	TypeEnemyQueue
	TypeMissile
	TypePlayer
	TypeHealth
	TypeLayeredRenderable
	TypeLayeredAnimation
	TypeWeaponType
	TypeScore
	TypeBooster
	TypeIsBooster
	TypeBoosterActive
	TypeLink
	// TypeNone marks components that stay local and are never replicated.
	TypeNone
)

var componentTypeNames = [...]string{
	"Animation", "Collision", "ExcludeCollision", "Moving", "Position", "Renderable",
	"Speed", "View", "WorldMoveProgress", "BaseBullet", "Enemy", "EnemyAttack",
	"EnemyMovements", "EnemyQueue", "Missile", "Player", "Health", "LayeredRenderable",
	"LayeredAnimation", "WeaponType", "Score", "Booster", "IsBooster", "BoosterActive",
	"Link", "None",
}

func (t ComponentType) String() string {
	if t >= 0 && int(t) < len(componentTypeNames) {
		return componentTypeNames[t]
	}
	return fmt.Sprintf("ComponentType(%d)", int32(t))
}

// Valid reports whether t is a known tag, None included.
func (t ComponentType) Valid() bool {
	return t >= 0 && t <= TypeNone
}

// Networked reports whether components with this tag are replicated.
func (t ComponentType) Networked() bool {
	return t >= 0 && t < TypeNone
}

// Component is a piece of typed state attached to an entity.
//
// Changed is true for a freshly built component and after every mutation;
// the delta builder clears it once the component has been sent.
type Component interface {
	encoding.Serializable
	Type() ComponentType
	Changed() bool
	SetChanged(changed bool)
}

// Base provides the dirty flag. Embed it by value; the zero value is changed.
type Base struct {
	clean bool
}

func (b *Base) Changed() bool { return !b.clean }

func (b *Base) SetChanged(changed bool) { b.clean = !changed }

// Local is embedded by components that never leave the process.
type Local struct {
	Base
}

func (Local) Type() ComponentType { return TypeNone }

func (Local) Encode() []byte { return nil }

func (Local) Decode([]byte) error { return nil }

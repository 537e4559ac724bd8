package ecs

import "errors"

var (
	ErrEntityNotFound     = errors.New("ecs: entity not found")
	ErrComponentNotFound  = errors.New("ecs: component not found")
	ErrUnknownComponent   = errors.New("ecs: component type not registered")
	ErrDuplicateComponent = errors.New("ecs: component type already registered")
	ErrLocalComponent     = errors.New("ecs: local components cannot be registered")
	ErrRegistrySealed     = errors.New("ecs: registry is sealed")
	ErrDuplicateSystem    = errors.New("ecs: system already registered")
	ErrSystemNotFound     = errors.New("ecs: system not found")
)

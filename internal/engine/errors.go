package engine

import "errors"

var (
	ErrUnknownWorld    = errors.New("engine: unknown world")
	ErrDuplicateWorld  = errors.New("engine: world factory already registered")
	ErrNotInitialized  = errors.New("engine: context not initialized")
	ErrInvalidTickRate = errors.New("engine: tick rate must be positive")
)

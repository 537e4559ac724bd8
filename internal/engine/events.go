package engine

import "github.com/zeusync/deltasync/internal/core/protocol"

// PlayerInput is broadcast on the current world at the start of the logic
// pass of Slot, once per input event received from that player.
type PlayerInput struct {
	Slot  int
	Event protocol.InputEvent
}

// PlayerDied is broadcast by game content when the player of Slot is out.
// On the server it feeds the game over check.
type PlayerDied struct {
	Slot int
}

// GameLaunched is broadcast on the game world once every peer is initialized.
type GameLaunched struct {
	Players int
}

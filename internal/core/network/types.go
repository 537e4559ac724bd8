package network

import (
	"fmt"
	"strings"
	"time"

	"github.com/zeusync/deltasync/internal/core/protocol"
)

// Role selects which side of the protocol a Session plays.
type Role uint8

const (
	RoleServer Role = iota
	RoleClient
)

func (r Role) String() string {
	switch r {
	case RoleServer:
		return "server"
	case RoleClient:
		return "client"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "server":
		return RoleServer, nil
	case "client":
		return RoleClient, nil
	default:
		return RoleServer, fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// ConnState is the client's view of its connection.
type ConnState int32

const (
	StateDisconnected ConnState = iota
	StateAwaitingHandshake
	StateInLobby
	StateAwaitingWorldSwitch
	StateInGame
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateAwaitingHandshake:
		return "awaiting_handshake"
	case StateInLobby:
		return "in_lobby"
	case StateAwaitingWorldSwitch:
		return "awaiting_world_switch"
	case StateInGame:
		return "in_game"
	default:
		return "unknown"
	}
}

// MaxLobbySize is the fixed lobby capacity.
const MaxLobbySize = 4

const (
	DefaultHandshakeRetry = 500 * time.Millisecond
	DefaultInboundLimit   = 4096
	DefaultInputLimit     = 1024
)

// InboundKind tells the game goroutine what an Inbound item carries.
type InboundKind uint8

const (
	// InboundUpdate carries a server delta to apply.
	InboundUpdate InboundKind = iota
	// InboundSwitchWorld asks a client to enter the game world.
	InboundSwitchWorld
	// InboundBarrierComplete tells the server every peer switched world; Count
	// is the number of players.
	InboundBarrierComplete
	// InboundOwnSlot carries the client's own slot in Slot.
	InboundOwnSlot
	// InboundPlayerCount carries the number of players in Count.
	InboundPlayerCount
	// InboundLaunch signals the game started.
	InboundLaunch
	// InboundInputs carries input events of player Slot (server only).
	InboundInputs
)

func (k InboundKind) String() string {
	switch k {
	case InboundUpdate:
		return "update"
	case InboundSwitchWorld:
		return "switch_world"
	case InboundBarrierComplete:
		return "barrier_complete"
	case InboundOwnSlot:
		return "own_slot"
	case InboundPlayerCount:
		return "player_count"
	case InboundLaunch:
		return "launch"
	case InboundInputs:
		return "inputs"
	default:
		return "unknown"
	}
}

// Inbound is handed from the network goroutine to the game goroutine.
type Inbound struct {
	Kind   InboundKind
	Update protocol.ClientUpdate
	Slot   int
	Count  int
	Events []protocol.InputEvent
}

// PeerStatus describes one roster member.
type PeerStatus struct {
	Addr             string    `json:"addr"`
	State            string    `json:"state"`
	Slot             int       `json:"slot"`
	IsHost           bool      `json:"is_host"`
	HasSwitchedWorld bool      `json:"has_switched_world"`
	IsInitialized    bool      `json:"is_initialized"`
	IsAlive          bool      `json:"is_alive"`
	LastSeen         time.Time `json:"last_seen"`
}

// Status is a point-in-time copy of the session state.
type Status struct {
	ID             string       `json:"id"`
	Role           string       `json:"role"`
	State          string       `json:"state"`
	LocalAddr      string       `json:"local_addr,omitempty"`
	GameHasStarted bool         `json:"game_has_started"`
	ReadyToStart   bool         `json:"ready_to_start"`
	NeedToReset    bool         `json:"need_to_reset"`
	Peers          []PeerStatus `json:"peers,omitempty"`
	PacketsIn      uint64       `json:"packets_in"`
	PacketsOut     uint64       `json:"packets_out"`
	DecodeErrors   uint64       `json:"decode_errors"`
	InboundDropped uint64       `json:"inbound_dropped"`
}

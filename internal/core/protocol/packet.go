package protocol

import "fmt"

// PacketType is the 4-byte tag opening every datagram. Values are part of
// the wire format and must not be reordered.
type PacketType int32

const (
	PacketHandshakeRequest PacketType = iota
	PacketHandshakeResponse
	PacketSwitchWorld
	PacketSwitchWorldOkForMe
	PacketLeaveLobby
	PacketLeaveLobbyResponse
	PacketClientIndependentInitialization
	PacketInitializeGame
	PacketInitializeGameOkForMe
	PacketLaunchGame
	PacketKeyInputs
	PacketClientUpdate
	PacketClientUpdateACK
	PacketGlobalState
	PacketPlayerAction
	PacketActionOutcome
	PacketHeartbeat
	PacketPlayerDisconnected
	PacketError
	PacketErrorAcknowledged
	PacketEndGame
	PacketEndGameAcknowledged

	packetTypeCount
)

var packetTypeNames = [...]string{
	"HandshakeRequest", "HandshakeResponse", "SwitchWorld", "SwitchWorldOkForMe",
	"LeaveLobby", "LeaveLobbyResponse", "ClientIndependentInitialization", "InitializeGame",
	"InitializeGameOkForMe", "LaunchGame", "KeyInputs", "ClientUpdate", "ClientUpdateACK",
	"GlobalState", "PlayerAction", "ActionOutcome", "Heartbeat", "PlayerDisconnected",
	"Error", "ErrorAcknowledged", "EndGame", "EndGameAcknowledged",
}

func (t PacketType) String() string {
	if t.Valid() {
		return packetTypeNames[t]
	}
	return fmt.Sprintf("PacketType(%d)", int32(t))
}

func (t PacketType) Valid() bool {
	return t >= 0 && t < packetTypeCount
}

// UpdateKind selects the payload of a ClientUpdate packet.
type UpdateKind int32

const (
	UpdateAddComponents UpdateKind = iota
	UpdateRemoveComponents
	UpdateRemoveEntity
)

func (k UpdateKind) String() string {
	switch k {
	case UpdateAddComponents:
		return "AddComponents"
	case UpdateRemoveComponents:
		return "RemoveComponents"
	case UpdateRemoveEntity:
		return "RemoveEntity"
	default:
		return fmt.Sprintf("UpdateKind(%d)", int32(k))
	}
}

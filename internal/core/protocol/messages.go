package protocol

import "github.com/zeusync/deltasync/pkg/encoding"

// Packet is one datagram's worth of protocol message. The set of packets is
// closed: only the types in this package implement it.
type Packet interface {
	Type() PacketType
	encode(w *encoding.Writer)
}

// ComponentEntry is one serialized component: its tag and encoded payload.
type ComponentEntry struct {
	Type    int32
	Payload []byte
}

// EntityEntry carries components of one entity.
type EntityEntry struct {
	ID         uint64
	Components []ComponentEntry
}

// RemovedComponents lists tags removed from one entity.
type RemovedComponents struct {
	ID    uint64
	Types []int32
}

// HandshakeRequest asks the server for a lobby seat.
type HandshakeRequest struct {
	IsHost bool
}

func (HandshakeRequest) Type() PacketType { return PacketHandshakeRequest }

func (p HandshakeRequest) encode(w *encoding.Writer) { w.Bool(p.IsHost) }

// HandshakeResponse answers a HandshakeRequest.
type HandshakeResponse struct {
	Accepted bool
}

func (HandshakeResponse) Type() PacketType { return PacketHandshakeResponse }

func (p HandshakeResponse) encode(w *encoding.Writer) { w.Bool(p.Accepted) }

// ClientIndependentInitialization tells a client its player slot.
type ClientIndependentInitialization struct {
	Slot int32
}

func (ClientIndependentInitialization) Type() PacketType {
	return PacketClientIndependentInitialization
}

func (p ClientIndependentInitialization) encode(w *encoding.Writer) { w.Int32(p.Slot) }

// InitializeGame is the full snapshot sent once every client switched world.
type InitializeGame struct {
	PlayerCount int32
	Entities    []EntityEntry
}

func (InitializeGame) Type() PacketType { return PacketInitializeGame }

func (p InitializeGame) encode(w *encoding.Writer) {
	w.Int32(p.PlayerCount)
	w.Int32(int32(len(p.Entities)))
	writeEntities(w, p.Entities)
}

// KeyInputs is a batch of client input events.
type KeyInputs struct {
	Events []InputEvent
}

func (KeyInputs) Type() PacketType { return PacketKeyInputs }

func (p KeyInputs) encode(w *encoding.Writer) {
	w.Int32(int32(len(p.Events)))
	for _, ev := range p.Events {
		ev.encode(w)
	}
}

// ClientUpdate is one kind of server delta. Only the field matching Kind is
// serialized.
type ClientUpdate struct {
	Kind       UpdateKind
	Entities   []EntityEntry
	Removed    []RemovedComponents
	RemovedIDs []uint64
}

func (ClientUpdate) Type() PacketType { return PacketClientUpdate }

// Len returns the number of entries carried for Kind.
func (p ClientUpdate) Len() int {
	switch p.Kind {
	case UpdateAddComponents:
		return len(p.Entities)
	case UpdateRemoveComponents:
		return len(p.Removed)
	case UpdateRemoveEntity:
		return len(p.RemovedIDs)
	default:
		return 0
	}
}

func (p ClientUpdate) encode(w *encoding.Writer) {
	w.Int32(int32(p.Kind))
	w.Int32(int32(p.Len()))
	switch p.Kind {
	case UpdateAddComponents:
		writeEntities(w, p.Entities)
	case UpdateRemoveComponents:
		for _, entry := range p.Removed {
			w.Uint64(entry.ID)
			w.Int32(int32(len(entry.Types)))
			for _, tag := range entry.Types {
				w.Int32(tag)
			}
		}
	case UpdateRemoveEntity:
		for _, id := range p.RemovedIDs {
			w.Uint64(id)
		}
	}
}

// Signal is a packet without payload: SwitchWorld, LaunchGame, the
// acknowledgements and the reserved control packets.
type Signal struct {
	Kind PacketType
}

func (s Signal) Type() PacketType { return s.Kind }

func (Signal) encode(*encoding.Writer) {}

func writeEntities(w *encoding.Writer, entities []EntityEntry) {
	for _, entity := range entities {
		w.Uint64(entity.ID)
		w.Int32(int32(len(entity.Components)))
		for _, c := range entity.Components {
			w.Int32(c.Type)
			w.Block(c.Payload)
		}
	}
}

package network

import (
	"net"
	"slices"
	"time"

	"github.com/zeusync/deltasync/internal/core/protocol"
)

// ClientState is the lobby-level state of a peer as seen by the server.
type ClientState uint8

const (
	ClientInLobby ClientState = iota
	ClientInGame
	ClientDisconnected
)

func (s ClientState) String() string {
	switch s {
	case ClientInLobby:
		return "in_lobby"
	case ClientInGame:
		return "in_game"
	case ClientDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// NoSlot marks a peer that has not acknowledged the world switch yet.
const NoSlot = -1

// ClientInfo is the server's record of one peer.
type ClientInfo struct {
	Addr             net.Addr
	State            ClientState
	IsHost           bool
	HasSwitchedWorld bool
	IsInitialized    bool
	IsAlive          bool
	Slot             int
	JoinedAt         time.Time
	LastSeen         time.Time
}

// Roster is the ordered list of lobby members. It does no locking of its own.
type Roster struct {
	clients []*ClientInfo
	started bool
}

func NewRoster() *Roster {
	return &Roster{}
}

// Add appends a peer in join order and returns its record.
func (r *Roster) Add(addr net.Addr, isHost bool, now time.Time) *ClientInfo {
	c := &ClientInfo{
		Addr:     addr,
		State:    ClientInLobby,
		IsHost:   isHost,
		IsAlive:  true,
		Slot:     NoSlot,
		JoinedAt: now,
		LastSeen: now,
	}
	r.clients = append(r.clients, c)
	return c
}

// Remove takes the peer at addr out of the lobby and reports whether it was a
// connected member. A peer without a slot is dropped. A peer holding one is
// marked disconnected and dead, and its slot stays reserved until ResetGame:
// the other members keep the slots they were told.
func (r *Roster) Remove(addr net.Addr) bool {
	i := slices.IndexFunc(r.clients, func(c *ClientInfo) bool {
		return c.State != ClientDisconnected && protocol.SameAddr(c.Addr, addr)
	})
	if i < 0 {
		return false
	}
	c := r.clients[i]
	if c.Slot == NoSlot {
		r.clients = slices.Delete(r.clients, i, i+1)
		return true
	}
	c.State = ClientDisconnected
	c.IsAlive = false
	return true
}

// Find returns the connected member at addr, or nil.
func (r *Roster) Find(addr net.Addr) *ClientInfo {
	for _, c := range r.clients {
		if c.State != ClientDisconnected && protocol.SameAddr(c.Addr, addr) {
			return c
		}
	}
	return nil
}

// BySlot returns the member holding slot, or nil.
func (r *Roster) BySlot(slot int) *ClientInfo {
	if slot == NoSlot {
		return nil
	}
	for _, c := range r.clients {
		if c.Slot == slot {
			return c
		}
	}
	return nil
}

// Clients returns the members in join order. The slice is shared.
func (r *Roster) Clients() []*ClientInfo { return r.clients }

// Addrs returns the connected member addresses in join order.
func (r *Roster) Addrs() []net.Addr {
	out := make([]net.Addr, 0, len(r.clients))
	for _, c := range r.clients {
		if c.State != ClientDisconnected {
			out = append(out, c.Addr)
		}
	}
	return out
}

// Len counts every member, including departed ones holding a reserved slot.
func (r *Roster) Len() int { return len(r.clients) }

// Connected counts the members that have not left.
func (r *Roster) Connected() int {
	n := 0
	for _, c := range r.clients {
		if c.State != ClientDisconnected {
			n++
		}
	}
	return n
}

func (r *Roster) Clear() {
	r.clients = nil
	r.started = false
}

func (r *Roster) IsStarted() bool { return r.started }

// IsReadyToStart reports whether enough peers joined to play.
func (r *Roster) IsReadyToStart() bool { return r.Connected() >= 2 }

// AllSwitchedWorld reports whether every member acknowledged SwitchWorld.
// A roster without connected members never completes the barrier.
func (r *Roster) AllSwitchedWorld() bool {
	if r.Connected() == 0 {
		return false
	}
	for _, c := range r.clients {
		if !c.HasSwitchedWorld {
			return false
		}
	}
	return true
}

// AllInitializedGame reports whether every connected member acknowledged
// InitializeGame, and marks the roster started when so.
func (r *Roster) AllInitializedGame() bool {
	if r.Connected() == 0 {
		return false
	}
	for _, c := range r.clients {
		if c.State != ClientDisconnected && !c.IsInitialized {
			return false
		}
	}
	r.started = true
	return true
}

// AllDead reports whether no member is alive.
func (r *Roster) AllDead() bool {
	if len(r.clients) == 0 {
		return false
	}
	for _, c := range r.clients {
		if c.IsAlive {
			return false
		}
	}
	return true
}

// AssignSlot gives c the next free slot if it has none, in acknowledgment
// order.
func (r *Roster) AssignSlot(c *ClientInfo) int {
	if c.Slot != NoSlot {
		return c.Slot
	}
	next := 0
	for _, other := range r.clients {
		if other.Slot != NoSlot {
			next++
		}
	}
	c.Slot = next
	return next
}

// Acknowledged returns the connected members holding a slot, ordered by slot.
func (r *Roster) Acknowledged() []*ClientInfo {
	out := make([]*ClientInfo, 0, len(r.clients))
	for _, c := range r.clients {
		if c.Slot != NoSlot && c.State != ClientDisconnected {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b *ClientInfo) int { return a.Slot - b.Slot })
	return out
}

// ResetGame drops departed members and clears the per-game flags of the
// others.
func (r *Roster) ResetGame() {
	r.clients = slices.DeleteFunc(r.clients, func(c *ClientInfo) bool { return c.State == ClientDisconnected })
	for _, c := range r.clients {
		c.State = ClientInLobby
		c.HasSwitchedWorld = false
		c.IsInitialized = false
		c.IsAlive = true
		c.Slot = NoSlot
	}
	r.started = false
}

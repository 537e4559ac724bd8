package network

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/deltasync/internal/core/protocol/memory"
)

func TestRosterBarrierPredicates(t *testing.T) {
	r := NewRoster()
	now := time.Now()
	assert.False(t, r.AllSwitchedWorld())
	assert.False(t, r.AllInitializedGame())
	assert.False(t, r.AllDead())

	a := r.Add(memory.Addr("a"), true, now)
	assert.False(t, r.IsReadyToStart())
	b := r.Add(memory.Addr("b"), false, now)
	assert.True(t, r.IsReadyToStart())

	a.HasSwitchedWorld = true
	assert.False(t, r.AllSwitchedWorld())
	b.HasSwitchedWorld = true
	assert.True(t, r.AllSwitchedWorld())

	a.IsInitialized = true
	assert.False(t, r.AllInitializedGame())
	assert.False(t, r.IsStarted())
	b.IsInitialized = true
	assert.True(t, r.AllInitializedGame())
	assert.True(t, r.IsStarted())

	a.IsAlive = false
	assert.False(t, r.AllDead())
	b.IsAlive = false
	assert.True(t, r.AllDead())
}

func TestRosterSlotsFollowAcknowledgmentOrder(t *testing.T) {
	r := NewRoster()
	now := time.Now()
	a := r.Add(memory.Addr("a"), false, now)
	b := r.Add(memory.Addr("b"), false, now)
	c := r.Add(memory.Addr("c"), false, now)

	assert.Equal(t, 0, r.AssignSlot(c))
	assert.Equal(t, 1, r.AssignSlot(a))
	assert.Equal(t, 0, r.AssignSlot(c), "slot is stable")
	assert.Equal(t, 2, r.AssignSlot(b))
	assert.Same(t, b, r.BySlot(2))
	assert.Nil(t, r.BySlot(NoSlot))

	require.True(t, r.Remove(memory.Addr("c")))
	assert.False(t, r.Remove(memory.Addr("c")))
	assert.Equal(t, 1, a.Slot)
	assert.Equal(t, 2, b.Slot)
	assert.Equal(t, ClientDisconnected, c.State)
	assert.Equal(t, 0, c.Slot, "a departed member keeps its slot reserved")
	assert.Same(t, c, r.BySlot(0))
	assert.Nil(t, r.Find(memory.Addr("c")))
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, 2, r.Connected())
	assert.Equal(t, []*ClientInfo{a, b}, r.Acknowledged())
	assert.NotContains(t, r.Addrs(), memory.Addr("c"))

	r.ResetGame()
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, NoSlot, a.Slot)
}

func TestRosterLeaveBeforeSlot(t *testing.T) {
	r := NewRoster()
	now := time.Now()
	a := r.Add(memory.Addr("a"), false, now)
	b := r.Add(memory.Addr("b"), false, now)
	r.Add(memory.Addr("c"), false, now)

	a.HasSwitchedWorld, b.HasSwitchedWorld = true, true
	r.AssignSlot(a)
	r.AssignSlot(b)
	assert.False(t, r.AllSwitchedWorld())

	require.True(t, r.Remove(memory.Addr("c")))
	assert.Equal(t, 2, r.Len(), "a member without a slot is dropped")
	assert.True(t, r.AllSwitchedWorld())
	assert.Equal(t, 0, a.Slot)
	assert.Equal(t, 1, b.Slot)
}

func TestRosterPredicatesSkipDepartedMembers(t *testing.T) {
	r := NewRoster()
	now := time.Now()
	a := r.Add(memory.Addr("a"), false, now)
	b := r.Add(memory.Addr("b"), false, now)
	for _, c := range []*ClientInfo{a, b} {
		c.HasSwitchedWorld = true
		r.AssignSlot(c)
	}
	a.IsInitialized = true

	require.True(t, r.Remove(memory.Addr("b")))
	assert.True(t, r.AllSwitchedWorld())
	assert.True(t, r.AllInitializedGame(), "a departed member is not waited for")
	assert.False(t, r.IsReadyToStart())
	assert.False(t, r.AllDead())
	a.IsAlive = false
	assert.True(t, r.AllDead())

	require.True(t, r.Remove(memory.Addr("a")))
	assert.Zero(t, r.Connected())
	assert.False(t, r.AllSwitchedWorld())
	assert.False(t, r.AllInitializedGame())
}

func TestRosterFindAndReset(t *testing.T) {
	r := NewRoster()
	c := r.Add(memory.Addr("a"), false, time.Now())
	assert.Same(t, c, r.Find(memory.Addr("a")))
	assert.Nil(t, r.Find(memory.Addr("b")))

	c.HasSwitchedWorld, c.IsInitialized, c.IsAlive = true, true, false
	r.AssignSlot(c)
	require.True(t, r.AllInitializedGame())

	r.ResetGame()
	assert.False(t, r.IsStarted())
	assert.Equal(t, NoSlot, c.Slot)
	assert.True(t, c.IsAlive)
	assert.False(t, c.HasSwitchedWorld)
	assert.Equal(t, 1, r.Len())

	r.Clear()
	assert.Zero(t, r.Len())
}

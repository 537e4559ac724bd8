package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEntityBroadcastsCreation(t *testing.T) {
	w := NewWorld("game")
	var created []EntityID
	Subscribe(w, func(ev EntityCreated) { created = append(created, ev.Entity.ID()) })

	a := w.AddEntity(&testPosition{})
	b := w.AddEntity()

	assert.Equal(t, []EntityID{a.ID(), b.ID()}, created)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.True(t, Has[*testPosition](a))
}

func TestAddEntityWithIDReservesAllocator(t *testing.T) {
	ids := NewIDAllocator(1)
	w := NewWorld("game", WithIDAllocator(ids))

	w.AddEntityWithID(40)
	next := w.AddEntity()
	assert.Equal(t, EntityID(41), next.ID())

	again := w.AddEntityWithID(40)
	assert.Equal(t, EntityID(40), again.ID())
	assert.Equal(t, 2, w.Len())
}

func TestRemoveEntityIsDeferred(t *testing.T) {
	w := NewWorld("game")
	e := w.AddEntity()
	var destroyed []EntityID
	Subscribe(w, func(ev EntityDestroyed) { destroyed = append(destroyed, ev.ID) })

	w.RemoveEntity(e.ID())
	w.RemoveEntity(e.ID())
	w.RemoveEntity(999)
	assert.True(t, w.Exists(e.ID()))
	assert.Equal(t, []EntityID{e.ID(), 999}, w.PendingDeletions())

	removed := w.CommitDeletions()
	assert.Equal(t, []EntityID{e.ID()}, removed)
	assert.Equal(t, []EntityID{e.ID()}, destroyed)
	assert.False(t, w.Exists(e.ID()))
	assert.Empty(t, w.PendingDeletions())
	assert.Nil(t, w.CommitDeletions())
}

func TestEntityLookup(t *testing.T) {
	w := NewWorld("game")
	_, err := w.Entity(3)
	assert.ErrorIs(t, err, ErrEntityNotFound)

	e := w.AddEntity()
	got, err := w.Entity(e.ID())
	require.NoError(t, err)
	assert.Same(t, e, got)
}

func TestQueriesScanInIDOrder(t *testing.T) {
	w := NewWorld("game")
	a := w.AddEntity(&testPosition{X: 1}, &testSpeed{Value: 2})
	w.AddEntity(&testSpeed{Value: 3})
	c := w.AddEntity(&testPosition{X: 5})

	withPos := w.EntitiesWith(TypeOf[*testPosition]())
	require.Len(t, withPos, 2)
	assert.Equal(t, a.ID(), withPos[0].ID())
	assert.Equal(t, c.ID(), withPos[1].ID())

	var xs []int32
	Each1(w, func(_ *Entity, p *testPosition) { xs = append(xs, p.X) })
	assert.Equal(t, []int32{1, 5}, xs)

	calls := 0
	Each2(w, func(e *Entity, p *testPosition, s *testSpeed) {
		calls++
		assert.Equal(t, a.ID(), e.ID())
		assert.Equal(t, float32(2), s.Value)
	})
	assert.Equal(t, 1, calls)

	first, p, ok := First[*testPosition](w)
	require.True(t, ok)
	assert.Equal(t, a.ID(), first.ID())
	assert.Equal(t, int32(1), p.X)

	_, _, ok = First[*testLabel](w)
	assert.False(t, ok)
}

func TestEventsSubscribeUnsubscribe(t *testing.T) {
	type damage struct{ Amount int }
	w := NewWorld("game")
	total := 0
	id := Subscribe(w, func(d damage) { total += d.Amount })

	Broadcast(w, damage{Amount: 3})
	assert.True(t, Unsubscribe[damage](w, id))
	Broadcast(w, damage{Amount: 4})

	assert.Equal(t, 3, total)
	assert.False(t, Unsubscribe[damage](w, id))
}

func TestEventHandlersMayRebroadcast(t *testing.T) {
	type countdown struct{ N int }
	w := NewWorld("game")
	var seen []int
	Subscribe(w, func(c countdown) {
		seen = append(seen, c.N)
		if c.N > 0 {
			Broadcast(w, countdown{N: c.N - 1})
		}
	})

	Broadcast(w, countdown{N: 2})
	assert.Equal(t, []int{2, 1, 0}, seen)
}

func TestChecksumTracksReplicatedState(t *testing.T) {
	build := func() *World {
		w := NewWorld("game")
		w.AddEntityWithID(1, &testPosition{X: 10, Y: 20}, &testLabel{Text: "hud"})
		w.AddEntityWithID(2, &testSpeed{Value: 1.5})
		return w
	}
	a, b := build(), build()
	assert.Equal(t, a.Checksum(), b.Checksum())

	b.AddEntityWithID(3, &testLabel{Text: "local only"})
	assert.Equal(t, a.Checksum(), b.Checksum())

	e, _ := b.Entity(1)
	p, _ := Mut[*testPosition](e)
	p.X = 15
	assert.NotEqual(t, a.Checksum(), b.Checksum())
}

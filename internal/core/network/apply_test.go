package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/deltasync/internal/core/components"
	"github.com/zeusync/deltasync/internal/core/ecs"
	"github.com/zeusync/deltasync/internal/core/protocol"
)

func registry(t *testing.T) *ecs.Registry {
	t.Helper()
	reg, err := components.NewRegistry()
	require.NoError(t, err)
	return reg
}

func entry(c ecs.Component) protocol.ComponentEntry {
	return protocol.ComponentEntry{Type: int32(c.Type()), Payload: c.Encode()}
}

func TestApplyCreatesEntityWithWireID(t *testing.T) {
	reg := registry(t)
	w := newWorld()

	err := ApplyUpdate(reg, w, protocol.ClientUpdate{
		Kind: protocol.UpdateAddComponents,
		Entities: []protocol.EntityEntry{
			{ID: 42, Components: []protocol.ComponentEntry{entry(components.NewPosition(3, 4))}},
		},
	})
	require.NoError(t, err)

	e, err := w.Entity(42)
	require.NoError(t, err)
	pos, err := ecs.Get[*components.Position](e)
	require.NoError(t, err)
	assert.Equal(t, int32(3), pos.X)
	assert.Equal(t, int32(4), pos.Y)

	assert.Greater(t, uint64(w.AddEntity().ID()), uint64(42), "local ids never collide with wire ids")
}

func TestApplyReplacesComponentOfSameTag(t *testing.T) {
	reg := registry(t)
	w := newWorld()
	e := w.AddEntityWithID(7, components.NewPosition(0, 0), components.NewSpeed(2))

	update := protocol.ClientUpdate{
		Kind: protocol.UpdateAddComponents,
		Entities: []protocol.EntityEntry{
			{ID: 7, Components: []protocol.ComponentEntry{entry(components.NewPosition(8, 9))}},
		},
	}
	require.NoError(t, ApplyUpdate(reg, w, update))
	require.NoError(t, ApplyUpdate(reg, w, update))

	pos, err := ecs.Get[*components.Position](e)
	require.NoError(t, err)
	assert.Equal(t, int32(8), pos.X)
	assert.Equal(t, 2, e.Len())
	assert.Empty(t, e.PendingRemovals(), "received removals are not echoed")
}

func TestApplySkipsBadEntries(t *testing.T) {
	reg := registry(t)
	w := newWorld()

	err := ApplyUpdate(reg, w, protocol.ClientUpdate{
		Kind: protocol.UpdateAddComponents,
		Entities: []protocol.EntityEntry{
			{ID: 1, Components: []protocol.ComponentEntry{
				{Type: int32(ecs.TypeEnemy), Payload: []byte{1}},
				{Type: int32(ecs.TypePosition), Payload: []byte{1, 2}},
				entry(components.NewSpeed(5)),
			}},
			{ID: 2, Components: []protocol.ComponentEntry{{Type: 99}}},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ecs.ErrUnknownComponent)

	e, lookupErr := w.Entity(1)
	require.NoError(t, lookupErr)
	assert.True(t, ecs.Has[*components.Speed](e))
	assert.False(t, ecs.Has[*components.Position](e))
	assert.False(t, w.Exists(2), "entities without a usable component are not created")
}

func TestApplyRemovals(t *testing.T) {
	reg := registry(t)
	w := newWorld()
	e := w.AddEntityWithID(5, components.NewPosition(0, 0), components.NewSpeed(1))

	require.NoError(t, ApplyUpdate(reg, w, protocol.ClientUpdate{
		Kind:    protocol.UpdateRemoveComponents,
		Removed: []protocol.RemovedComponents{{ID: 5, Types: []int32{int32(ecs.TypeSpeed)}}, {ID: 6, Types: []int32{0}}},
	}))
	assert.False(t, ecs.Has[*components.Speed](e))
	assert.True(t, ecs.Has[*components.Position](e))

	require.NoError(t, ApplyUpdate(reg, w, protocol.ClientUpdate{
		Kind:       protocol.UpdateRemoveEntity,
		RemovedIDs: []uint64{5, 6},
	}))
	assert.True(t, w.Exists(5), "removal is deferred")
	assert.Equal(t, []ecs.EntityID{5}, w.CommitDeletions())

	err := ApplyUpdate(reg, w, protocol.ClientUpdate{Kind: 9})
	assert.ErrorIs(t, err, protocol.ErrUnknownUpdate)
}

package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/deltasync/internal/core/components"
	"github.com/zeusync/deltasync/internal/core/ecs"
	"github.com/zeusync/deltasync/internal/core/observability/log"
	"github.com/zeusync/deltasync/internal/core/protocol"
)

type hudLabel struct {
	ecs.Local
	Text string
}

func newWorld() *ecs.World {
	return ecs.NewWorld("test", ecs.WithLogger(log.NewNop()))
}

func TestBuildUpdatesSendsChangedComponentsOnce(t *testing.T) {
	w := newWorld()
	e := w.AddEntity(components.NewPosition(1, 2), components.NewSpeed(3), &hudLabel{Text: "hp"})

	updates := BuildUpdates(w, nil)
	require.Len(t, updates, 1)
	add := updates[0]
	assert.Equal(t, protocol.UpdateAddComponents, add.Kind)
	require.Len(t, add.Entities, 1)
	assert.Equal(t, uint64(e.ID()), add.Entities[0].ID)
	require.Len(t, add.Entities[0].Components, 2, "local components are not replicated")

	assert.Empty(t, BuildUpdates(w, nil), "clean components are not resent")

	pos, err := ecs.Mut[*components.Position](e)
	require.NoError(t, err)
	pos.X = 10
	updates = BuildUpdates(w, nil)
	require.Len(t, updates, 1)
	assert.Equal(t, int32(ecs.TypePosition), updates[0].Entities[0].Components[0].Type)
}

func TestBuildUpdatesOnlyChangedPosition(t *testing.T) {
	w := newWorld()
	player := w.AddEntity(components.NewPosition(0, 0), components.NewSpeed(1))
	sibling := w.AddEntity(components.NewPosition(5, 5))
	BuildUpdates(w, nil)

	pos, err := ecs.Mut[*components.Position](player)
	require.NoError(t, err)
	pos.Y = 7

	updates := BuildUpdates(w, nil)
	require.Len(t, updates, 1)
	require.Len(t, updates[0].Entities, 1)
	entry := updates[0].Entities[0]
	assert.Equal(t, uint64(player.ID()), entry.ID)
	assert.NotEqual(t, uint64(sibling.ID()), entry.ID)
	require.Len(t, entry.Components, 1)
	assert.Equal(t, int32(ecs.TypePosition), entry.Components[0].Type)
	assert.Equal(t, (&components.Position{X: 0, Y: 7}).Encode(), entry.Components[0].Payload)
}

func TestBuildUpdatesRemovals(t *testing.T) {
	w := newWorld()
	e := w.AddEntity(components.NewPosition(0, 0), components.NewSpeed(1), &components.Score{})
	gone := w.AddEntity(components.NewPosition(9, 9))
	BuildUpdates(w, nil)

	require.True(t, ecs.Remove[*components.Speed](e, true))
	require.True(t, ecs.Remove[*components.Score](e, true))
	e.Add(&components.Score{Value: 1})
	w.RemoveEntity(gone.ID())
	deleted := w.CommitDeletions()

	updates := BuildUpdates(w, deleted)
	require.Len(t, updates, 3)

	assert.Equal(t, protocol.UpdateAddComponents, updates[0].Kind)
	assert.Equal(t, int32(ecs.TypeScore), updates[0].Entities[0].Components[0].Type)

	assert.Equal(t, protocol.UpdateRemoveComponents, updates[1].Kind)
	assert.Equal(t, []protocol.RemovedComponents{{ID: uint64(e.ID()), Types: []int32{int32(ecs.TypeSpeed)}}}, updates[1].Removed)
	assert.Empty(t, e.PendingRemovals())

	assert.Equal(t, protocol.UpdateRemoveEntity, updates[2].Kind)
	assert.Equal(t, []uint64{uint64(gone.ID())}, updates[2].RemovedIDs)

	assert.Empty(t, BuildUpdates(w, nil))
}

func TestSnapshotClearsFlags(t *testing.T) {
	w := newWorld()
	w.AddEntity(components.NewPosition(1, 1))
	w.AddEntity(&hudLabel{})

	entities := Snapshot(w)
	require.Len(t, entities, 1)
	assert.Empty(t, Snapshot(w))
}

package network

import (
	"github.com/zeusync/deltasync/internal/core/ecs"
	"github.com/zeusync/deltasync/internal/core/protocol"
)

// Snapshot encodes every changed networked component of every entity and
// marks them clean. Entities without such a component are left out.
func Snapshot(w *ecs.World) []protocol.EntityEntry {
	var out []protocol.EntityEntry
	for _, e := range w.Entities() {
		var comps []protocol.ComponentEntry
		for _, c := range e.Components() {
			if !c.Type().Networked() || !c.Changed() {
				continue
			}
			comps = append(comps, protocol.ComponentEntry{Type: int32(c.Type()), Payload: c.Encode()})
			c.SetChanged(false)
		}
		if len(comps) > 0 {
			out = append(out, protocol.EntityEntry{ID: uint64(e.ID()), Components: comps})
		}
	}
	return out
}

// BuildUpdates computes one tick of delta: changed components, pending
// component removals and the given deleted entities. Kinds with no entry are
// omitted. Change flags and removal lists are cleared as they are encoded.
func BuildUpdates(w *ecs.World, deleted []ecs.EntityID) []protocol.ClientUpdate {
	updates := make([]protocol.ClientUpdate, 0, 3)

	if entities := Snapshot(w); len(entities) > 0 {
		updates = append(updates, protocol.ClientUpdate{Kind: protocol.UpdateAddComponents, Entities: entities})
	}

	var removed []protocol.RemovedComponents
	for _, e := range w.Entities() {
		pending := e.PendingRemovals()
		if len(pending) == 0 {
			continue
		}
		tags := make([]int32, 0, len(pending))
		for _, tag := range pending {
			// re-added within the same tick: the add entry already replaces it
			if e.HasTag(tag) {
				continue
			}
			tags = append(tags, int32(tag))
		}
		e.ClearPendingRemovals()
		if len(tags) > 0 {
			removed = append(removed, protocol.RemovedComponents{ID: uint64(e.ID()), Types: tags})
		}
	}
	if len(removed) > 0 {
		updates = append(updates, protocol.ClientUpdate{Kind: protocol.UpdateRemoveComponents, Removed: removed})
	}

	if len(deleted) > 0 {
		ids := make([]uint64, len(deleted))
		for i, id := range deleted {
			ids[i] = uint64(id)
		}
		updates = append(updates, protocol.ClientUpdate{Kind: protocol.UpdateRemoveEntity, RemovedIDs: ids})
	}
	return updates
}

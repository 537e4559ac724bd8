package network

import (
	"errors"
	"fmt"

	"github.com/zeusync/deltasync/internal/core/ecs"
	"github.com/zeusync/deltasync/internal/core/protocol"
)

// ApplyEntities installs received components. Absent entities are created
// with the wire id. A component replaces the one holding the same tag. Entries
// with an unknown tag or an undecodable payload are skipped and reported in
// the joined error; the rest still apply.
func ApplyEntities(reg *ecs.Registry, w *ecs.World, entities []protocol.EntityEntry) error {
	var all error
	for _, entry := range entities {
		comps := make([]ecs.Component, 0, len(entry.Components))
		for _, ce := range entry.Components {
			c, err := reg.Decode(ecs.ComponentType(ce.Type), ce.Payload)
			if err != nil {
				all = errors.Join(all, fmt.Errorf("entity %d: %w", entry.ID, err))
				continue
			}
			comps = append(comps, c)
		}
		if len(comps) == 0 {
			continue
		}

		id := ecs.EntityID(entry.ID)
		e, err := w.Entity(id)
		if err != nil {
			e = w.AddEntityWithID(id)
		}
		for _, c := range comps {
			reg.Destroy(e, c.Type())
			reg.Add(e, c)
		}
	}
	return all
}

// ApplyUpdate applies one server delta to w.
func ApplyUpdate(reg *ecs.Registry, w *ecs.World, update protocol.ClientUpdate) error {
	switch update.Kind {
	case protocol.UpdateAddComponents:
		return ApplyEntities(reg, w, update.Entities)
	case protocol.UpdateRemoveComponents:
		for _, entry := range update.Removed {
			e, err := w.Entity(ecs.EntityID(entry.ID))
			if err != nil {
				continue
			}
			for _, tag := range entry.Types {
				reg.Destroy(e, ecs.ComponentType(tag))
			}
		}
		return nil
	case protocol.UpdateRemoveEntity:
		for _, id := range update.RemovedIDs {
			if w.Exists(ecs.EntityID(id)) {
				w.RemoveEntity(ecs.EntityID(id))
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %d", protocol.ErrUnknownUpdate, update.Kind)
	}
}

package store

import (
	"fmt"

	snapv1 "dungeonsim.ai/internal/persistence/snapshot"
	"dungeonsim.ai/internal/sim/catalogs"
	"dungeonsim.ai/internal/sim/world/kernel/model"
)

// ExportSlabs copies the grid into snapshot form.
func (m *SlabMap) ExportSlabs() []snapv1.SlabV1 {
	out := make([]snapv1.SlabV1, len(m.Slabs))
	for i, s := range m.Slabs {
		out[i] = snapv1.SlabV1{
			Kind:       uint8(s.Kind),
			Health:     s.Health,
			Owner:      int8(s.Owner),
			RoomID:     uint32(s.RoomID),
			NextInRoom: s.NextInRoom,
		}
	}
	return out
}

// ImportSlabs rebuilds a slab map from snapshot slabs.
func ImportSlabs(w, h int, defs *catalogs.SlabCatalog, slabs []snapv1.SlabV1) (*SlabMap, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("snapshot map size %dx%d", w, h)
	}
	if len(slabs) != w*h {
		return nil, fmt.Errorf("snapshot slabs length mismatch: got %d want %d", len(slabs), w*h)
	}
	m := NewSlabMap(w, h, defs)
	for i, s := range slabs {
		if catalogs.SlabKind(s.Kind) >= catalogs.SlabKindCount {
			return nil, fmt.Errorf("snapshot slab %d: unknown kind %d", i, s.Kind)
		}
		if s.NextInRoom < NoSlab || int(s.NextInRoom) >= len(slabs) {
			return nil, fmt.Errorf("snapshot slab %d: room link %d out of range", i, s.NextInRoom)
		}
		m.Slabs[i] = Slab{
			Kind:       catalogs.SlabKind(s.Kind),
			Health:     s.Health,
			Owner:      model.PlayerID(s.Owner),
			RoomID:     model.RoomID(s.RoomID),
			NextInRoom: s.NextInRoom,
		}
	}
	m.dirty = true
	return m, nil
}

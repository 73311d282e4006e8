package store

import (
	"fmt"

	"dungeonsim.ai/internal/sim/world/kernel/model"
)

// LinkRoomSlab puts slab idx at the head of the room's slab chain.
func (m *SlabMap) LinkRoomSlab(idx int, r *model.Room) {
	if idx < 0 || idx >= len(m.Slabs) || r == nil {
		return
	}
	s := &m.Slabs[idx]
	s.RoomID = r.ID
	s.NextInRoom = int32(r.FirstSlab)
	r.FirstSlab = idx
	r.SlabCount++
	m.dirty = true
}

// UnlinkRoomSlab removes slab idx from the room chain.
func (m *SlabMap) UnlinkRoomSlab(idx int, r *model.Room) error {
	if r == nil {
		return nil
	}
	prev := -1
	cur := r.FirstSlab
	for k := 0; cur >= 0; k++ {
		if k > m.Cells() {
			return fmt.Errorf("room %d slab chain: %w", r.ID, ErrSweepGuard)
		}
		if cur >= len(m.Slabs) {
			return fmt.Errorf("room %d slab chain: index %d out of range", r.ID, cur)
		}
		next := int(m.Slabs[cur].NextInRoom)
		if cur == idx {
			if prev < 0 {
				r.FirstSlab = next
			} else {
				m.Slabs[prev].NextInRoom = int32(next)
			}
			m.Slabs[cur].RoomID = 0
			m.Slabs[cur].NextInRoom = NoSlab
			r.SlabCount--
			m.dirty = true
			return nil
		}
		prev = cur
		cur = next
	}
	return nil
}

// RoomSlabs walks the room chain. On ErrSweepGuard the slabs visited so far
// are returned.
func (m *SlabMap) RoomSlabs(r *model.Room) ([]int, error) {
	if r == nil {
		return nil, nil
	}
	out := make([]int, 0, r.SlabCount)
	cur := r.FirstSlab
	for k := 0; cur >= 0; k++ {
		if k > m.Cells() || cur >= len(m.Slabs) {
			return out, fmt.Errorf("room %d slab chain: %w", r.ID, ErrSweepGuard)
		}
		out = append(out, cur)
		cur = int(m.Slabs[cur].NextInRoom)
	}
	return out, nil
}

// IsRoomBorder reports whether any of the eight neighbours of idx lies
// outside its room.
func (m *SlabMap) IsRoomBorder(idx int) bool {
	p := m.PosOf(idx)
	room := m.Slabs[idx].RoomID
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			s, ok := m.Get(p.X+dx, p.Y+dy)
			if !ok || s.RoomID != room {
				return true
			}
		}
	}
	return false
}

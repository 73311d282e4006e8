package store

import (
	"dungeonsim.ai/internal/sim/catalogs"
	"dungeonsim.ai/internal/sim/world/kernel/model"
)

func (m *SlabMap) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.W && y < m.H
}

// Get returns the slab at x,y or nil,false when out of range. Callers must check.
func (m *SlabMap) Get(x, y int) (*Slab, bool) {
	if m == nil || !m.InBounds(x, y) {
		return nil, false
	}
	return &m.Slabs[m.Index(x, y)], true
}

func (m *SlabMap) At(p model.SlabPos) (*Slab, bool) { return m.Get(p.X, p.Y) }

// Touch marks the map dirty after an in-place edit through a Get pointer.
func (m *SlabMap) Touch() { m.dirty = true }

func (m *SlabMap) SetHealth(x, y, health int) {
	s, ok := m.Get(x, y)
	if !ok {
		return
	}
	if health < 0 {
		health = 0
	}
	if s.Health != health {
		s.Health = health
		m.dirty = true
	}
}

// Place sets the slab kind and owner and resets health from the catalog.
// Room membership is left alone; callers unlink first.
func (m *SlabMap) Place(x, y int, kind catalogs.SlabKind, owner model.PlayerID) {
	s, ok := m.Get(x, y)
	if !ok {
		return
	}
	from := *s
	s.Kind = kind
	s.Owner = owner
	s.Health = m.def(kind).Health
	m.dirty = true
	if m.onChange != nil && (from.Kind != kind || from.Owner != owner) {
		m.onChange(x, y, from, *s)
	}
}

// ConvertToFloor digs or mines a block out to neutral path.
func (m *SlabMap) ConvertToFloor(x, y int) {
	m.Place(x, y, catalogs.SlabPath, model.PlayerNeutral)
}

// ConvertToEarth knocks a fortified wall back down to neutral earth.
func (m *SlabMap) ConvertToEarth(x, y int) {
	m.Place(x, y, catalogs.SlabEarth, model.PlayerNeutral)
}

// IsOpen reports whether creatures can stand on the slab.
func (m *SlabMap) IsOpen(x, y int) bool {
	s, ok := m.Get(x, y)
	if !ok {
		return false
	}
	return !m.def(s.Kind).Solid
}

// OwnsGroundNear reports whether owner has claimed ground or a room slab
// orthogonally adjacent to x,y.
func (m *SlabMap) OwnsGroundNear(x, y int, owner model.PlayerID) bool {
	for _, d := range model.SmallAround {
		s, ok := m.Get(x+d[0], y+d[1])
		if !ok || s.Owner != owner {
			continue
		}
		if s.Kind == catalogs.SlabClaimed || s.RoomID != 0 {
			return true
		}
	}
	return false
}

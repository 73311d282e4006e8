package store

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"

	"dungeonsim.ai/internal/sim/catalogs"
	"dungeonsim.ai/internal/sim/world/kernel/model"
)

// ErrSweepGuard reports a linked-list walk that exceeded its bound.
var ErrSweepGuard = errors.New("sweep guard exceeded")

// NoSlab terminates a room slab chain.
const NoSlab int32 = -1

type Slab struct {
	Kind   catalogs.SlabKind
	Health int
	Owner  model.PlayerID

	RoomID     model.RoomID
	NextInRoom int32
}

// ChangeFunc observes kind or owner changes made through Place.
type ChangeFunc func(x, y int, from, to Slab)

// SlabMap is the terrain grid. Cells are stored row-major.
type SlabMap struct {
	W, H  int
	Slabs []Slab

	defs *catalogs.SlabCatalog

	onChange ChangeFunc

	dirty bool
	hash  [32]byte
}

func NewSlabMap(w, h int, defs *catalogs.SlabCatalog) *SlabMap {
	m := &SlabMap{
		W:     w,
		H:     h,
		Slabs: make([]Slab, w*h),
		defs:  defs,
		dirty: true,
	}
	for i := range m.Slabs {
		m.Slabs[i] = Slab{Kind: catalogs.SlabRock, Owner: model.PlayerNeutral, NextInRoom: NoSlab}
		m.Slabs[i].Health = m.def(catalogs.SlabRock).Health
	}
	return m
}

// SetOnChange installs fn as the change observer; nil removes it.
func (m *SlabMap) SetOnChange(fn ChangeFunc) { m.onChange = fn }

func (m *SlabMap) def(k catalogs.SlabKind) catalogs.SlabDef {
	if m.defs == nil {
		return catalogs.SlabDef{}
	}
	return m.defs.Def(k)
}

// Def exposes the catalog entry for k.
func (m *SlabMap) Def(k catalogs.SlabKind) catalogs.SlabDef { return m.def(k) }

// Cells is the sweep bound for any walk over map-sized lists.
func (m *SlabMap) Cells() int { return m.W * m.H }

func (m *SlabMap) Index(x, y int) int { return x + y*m.W }

func (m *SlabMap) PosOf(idx int) model.SlabPos {
	return model.SlabPos{X: idx % m.W, Y: idx / m.W}
}

func (m *SlabMap) Digest() [32]byte {
	if m.dirty || m.hash == ([32]byte{}) {
		h := sha256.New()
		var tmp [16]byte
		for _, s := range m.Slabs {
			tmp[0] = byte(s.Kind)
			tmp[1] = byte(s.Owner)
			binary.LittleEndian.PutUint32(tmp[2:], uint32(int32(s.Health)))
			binary.LittleEndian.PutUint32(tmp[6:], uint32(s.RoomID))
			binary.LittleEndian.PutUint32(tmp[10:], uint32(s.NextInRoom))
			h.Write(tmp[:14])
		}
		copy(m.hash[:], h.Sum(nil))
		m.dirty = false
	}
	return m.hash
}

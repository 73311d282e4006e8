package world

import (
	"errors"
	"fmt"

	"dungeonsim.ai/internal/sim/catalogs"
	"dungeonsim.ai/internal/sim/world/feature/instances"
	"dungeonsim.ai/internal/sim/world/kernel/model"
	"dungeonsim.ai/internal/sim/world/policy/rules"
	"dungeonsim.ai/internal/sim/world/terrain/store"
)

var errTooManyRooms = errors.New("room limit reached")

// createRoom turns cells into one room of kind owned by owner and links it at
// the head of the owner's chain for that kind.
func (w *World) createRoom(kind catalogs.RoomKind, owner PlayerID, cells []SlabPos) (*Room, error) {
	if len(w.rooms) >= model.MaxRooms {
		return nil, errTooManyRooms
	}
	def := w.catalogs.Rooms.Def(kind)
	if def.Name == "" {
		return nil, fmt.Errorf("room kind %v: %w", kind, catalogs.ErrUnknownName)
	}
	w.nextRoom++
	r := &Room{ID: RoomID(w.nextRoom), Kind: kind, Owner: owner, FirstSlab: -1}
	for _, c := range cells {
		s, ok := w.slabs.At(c)
		if !ok || s.RoomID != 0 {
			continue
		}
		w.slabs.Place(c.X, c.Y, def.SlabKind, owner)
		w.slabs.LinkRoomSlab(w.slabs.Index(c.X, c.Y), r)
	}
	if r.SlabCount == 0 {
		return nil, fmt.Errorf("room %v: no free cells", kind)
	}
	r.Central = cells[len(cells)/2]
	if s, ok := w.slabs.At(r.Central); !ok || s.RoomID != r.ID {
		r.Central = w.slabs.PosOf(r.FirstSlab)
	}
	w.resetRoomStats(r)
	w.rooms[r.ID] = r
	w.linkRoomToOwner(r)
	return r, nil
}

// resetRoomStats recomputes capacity and claim resistance from the slab count.
func (w *World) resetRoomStats(r *Room) {
	def := w.catalogs.Rooms.Def(r.Kind)
	r.ClaimResistance = rules.RoomClaimResistance(def.ClaimResistancePerSlab, r.SlabCount)
	r.StorageCapacity = int64(def.StoragePerSlab) * int64(r.SlabCount)
}

func (w *World) linkRoomToOwner(r *Room) {
	d := w.dungeon(r.Owner)
	if d == nil {
		r.NextOfOwner = 0
		return
	}
	r.NextOfOwner = d.RoomHeads[r.Kind]
	d.RoomHeads[r.Kind] = r.ID
}

func (w *World) unlinkRoomFromOwner(r *Room) {
	d := w.dungeon(r.Owner)
	if d == nil {
		return
	}
	var prev *Room
	id := d.RoomHeads[r.Kind]
	for k := 0; id != 0; k++ {
		if k > model.MaxRooms {
			w.logf("room %d: owner %d chain: %v", r.ID, r.Owner, store.ErrSweepGuard)
			return
		}
		if id == r.ID {
			if prev == nil {
				d.RoomHeads[r.Kind] = r.NextOfOwner
			} else {
				prev.NextOfOwner = r.NextOfOwner
			}
			r.NextOfOwner = 0
			return
		}
		prev = w.rooms[id]
		if prev == nil {
			w.logf("room %d: owner %d chain: jump to invalid room %d", r.ID, r.Owner, id)
			return
		}
		id = prev.NextOfOwner
	}
}

// changeRoomOwner hands the room, its slabs and its stored gold to owner.
func (w *World) changeRoomOwner(r *Room, owner PlayerID) {
	if r.Owner == owner {
		return
	}
	if old := w.dungeon(r.Owner); old != nil {
		old.TotalMoneyOwned -= r.StorageUsed
	}
	w.unlinkRoomFromOwner(r)
	r.Owner = owner
	w.linkRoomToOwner(r)
	if d := w.dungeon(owner); d != nil {
		d.TotalMoneyOwned += r.StorageUsed
	}

	slabs, err := w.slabs.RoomSlabs(r)
	if err != nil {
		w.logf("room %d: %v", r.ID, err)
	}
	for _, idx := range slabs {
		p := w.slabs.PosOf(idx)
		s := w.slabs.Slabs[idx]
		w.slabs.Place(p.X, p.Y, s.Kind, owner)
		if h := w.hoardAt(p); h != nil {
			h.Owner = owner
		}
	}
	w.resetRoomStats(r)
}

func (w *World) claimNeutralRoom(r *Room, cr *Creature) {
	w.changeRoomOwner(r, cr.Owner)
	if d := w.dungeon(cr.Owner); d != nil {
		d.Stats.RoomsClaimed++
	}
}

func (w *World) claimEnemyRoom(r *Room, cr *Creature) {
	if loser := w.dungeon(r.Owner); loser != nil {
		loser.Stats.RoomsLost++
	}
	w.changeRoomOwner(r, cr.Owner)
	if d := w.dungeon(cr.Owner); d != nil {
		d.Stats.RoomsClaimed++
	}
}

// deleteRoomSlab returns one room slab to neutral path. Gold stored on it is
// lost. The room is dissolved when its last slab goes.
func (w *World) deleteRoomSlab(x, y int) {
	s, ok := w.slabs.Get(x, y)
	if !ok || s.RoomID == 0 {
		return
	}
	r := w.rooms[s.RoomID]
	idx := w.slabs.Index(x, y)
	if r == nil {
		w.logf("slab %d,%d: room %d: %v", x, y, s.RoomID, instances.ErrStaleReference)
		s.RoomID = 0
		s.NextInRoom = store.NoSlab
		w.slabs.ConvertToFloor(x, y)
		return
	}
	if err := w.slabs.UnlinkRoomSlab(idx, r); err != nil {
		w.logf("room %d: %v", r.ID, err)
	}
	pos := SlabPos{X: x, Y: y}
	if h := w.hoardAt(pos); h != nil {
		r.StorageUsed -= h.Gold
		if r.StorageUsed < 0 {
			r.StorageUsed = 0
		}
		if d := w.dungeon(r.Owner); d != nil {
			d.TotalMoneyOwned -= h.Gold
		}
		w.removeThing(h.ID)
	}
	w.slabs.ConvertToFloor(x, y)

	if r.SlabCount <= 0 || r.FirstSlab < 0 {
		w.unlinkRoomFromOwner(r)
		delete(w.rooms, r.ID)
		return
	}
	if r.Central == pos {
		r.Central = w.slabs.PosOf(r.FirstSlab)
	}
	w.resetRoomStats(r)
}

// clearDigOnRoomSlabs drops owner's dig tasks that point into the room.
func (w *World) clearDigOnRoomSlabs(r *Room, owner PlayerID) {
	d := w.dungeon(owner)
	if d == nil || r == nil {
		return
	}
	for i, t := range d.Tasks {
		if t.Kind == model.TaskNone {
			continue
		}
		s, ok := w.slabs.At(t.Target)
		if ok && s.RoomID == r.ID {
			d.RemoveTask(i)
		}
	}
}

// effectsOnRoomSlabs plays kind on every slab of the room.
func (w *World) effectsOnRoomSlabs(r *Room, kind model.EffectKind, owner PlayerID) {
	slabs, err := w.slabs.RoomSlabs(r)
	if err != nil {
		w.logf("room %d: %v", r.ID, err)
	}
	for _, idx := range slabs {
		w.recordEffect(kind, w.slabs.PosOf(idx), owner, 0, 0)
	}
}

package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sort"
)

// stateDigest hashes everything that influences future ticks. Per-tick
// buffers and observers are excluded.
func (w *World) stateDigest(nowTick uint64) string {
	h := sha256.New()
	var tmp [8]byte

	digestWriteU64(h, &tmp, nowTick)
	digestWriteI64(h, &tmp, w.cfg.Seed)
	digestWriteU64(h, &tmp, uint64(w.nextThing))
	digestWriteU64(h, &tmp, uint64(w.nextRoom))
	digestWriteU64(h, &tmp, w.nextEvent)

	slabs := w.slabs.Digest()
	h.Write(slabs[:])

	w.digestRooms(h, &tmp)
	w.digestDungeons(h, &tmp)
	w.digestCreatures(h, &tmp)
	w.digestThings(h, &tmp)
	w.digestEvents(h, &tmp)
	for _, ex := range w.explored {
		if ex == nil {
			digestWriteU64(h, &tmp, 0)
			continue
		}
		for _, b := range ex.bits {
			digestWriteU64(h, &tmp, b)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (w *World) digestRooms(h hashWriter, tmp *[8]byte) {
	for _, id := range sortedRoomIDs(w.rooms) {
		r := w.rooms[id]
		digestWriteU64(h, tmp, uint64(r.ID))
		digestWriteU64(h, tmp, uint64(r.Kind))
		digestWriteI64(h, tmp, int64(r.Owner))
		digestWriteI64(h, tmp, int64(r.ClaimResistance))
		digestWriteI64(h, tmp, int64(r.FirstSlab))
		digestWriteI64(h, tmp, int64(r.SlabCount))
		digestWriteI64(h, tmp, int64(r.Central.X))
		digestWriteI64(h, tmp, int64(r.Central.Y))
		digestWriteU64(h, tmp, uint64(r.NextOfOwner))
		digestWriteI64(h, tmp, r.StorageCapacity)
		digestWriteI64(h, tmp, r.StorageUsed)
	}
}

func (w *World) digestDungeons(h hashWriter, tmp *[8]byte) {
	for _, d := range w.dungeons {
		if d == nil {
			continue
		}
		digestWriteI64(h, tmp, int64(d.Owner))
		digestWriteI64(h, tmp, d.TotalMoneyOwned)
		digestWriteI64(h, tmp, d.OffmapMoneyOwned)
		digestWriteI64(h, tmp, int64(d.TotalArea))
		digestWriteI64(h, tmp, int64(d.RoomManageArea))
		s := d.Stats
		digestWriteI64(h, tmp, s.GoldMined)
		for _, v := range []int{s.TerritoryLost, s.TerritoryDestroyed, s.AreaClaimed, s.RoomsDestroyed, s.RoomsLost, s.RoomsClaimed} {
			digestWriteI64(h, tmp, int64(v))
		}
		for i, t := range d.Tasks {
			if t.Kind == 0 {
				continue
			}
			digestWriteU64(h, tmp, uint64(i))
			digestWriteU64(h, tmp, uint64(t.Kind))
			digestWriteI64(h, tmp, int64(t.Target.X))
			digestWriteI64(h, tmp, int64(t.Target.Y))
		}
		for _, id := range d.RoomHeads {
			digestWriteU64(h, tmp, uint64(id))
		}
	}
}

func (w *World) digestCreatures(h hashWriter, tmp *[8]byte) {
	for _, id := range sortedCreatureIDs(w.creatures) {
		c := w.creatures[id]
		digestWriteU64(h, tmp, uint64(c.ID))
		digestWriteI64(h, tmp, int64(c.Kind))
		digestWriteI64(h, tmp, int64(c.Owner))
		digestWriteI64(h, tmp, int64(c.Pos.X))
		digestWriteI64(h, tmp, int64(c.Pos.Y))
		digestWriteI64(h, tmp, int64(c.Level))
		digestWriteI64(h, tmp, int64(c.Health))
		digestWriteI64(h, tmp, int64(c.MaxHealth))
		digestWriteI64(h, tmp, c.GoldCarried)
		h.Write([]byte{boolByte(c.Possessed), boolByte(c.Inst.InterruptRequested)})
		digestWriteU64(h, tmp, uint64(c.CombatTarget))
		for _, p := range []SlabPos{c.TargetPos, c.DigTarget, c.DamageWallTarget, c.TunnelTarget} {
			digestWriteI64(h, tmp, int64(p.X))
			digestWriteI64(h, tmp, int64(p.Y))
		}
		digestWriteI64(h, tmp, int64(c.DigTask))
		digestWriteI64(h, tmp, int64(c.ReinforceProgress))
		digestWriteI64(h, tmp, int64(c.HungerAmount))
		digestWriteI64(h, tmp, int64(c.HungerLevel))
		digestWriteI64(h, tmp, int64(c.Inst.Active))
		digestWriteI64(h, tmp, int64(c.Inst.Elapsed))
		digestWriteI64(h, tmp, int64(c.Inst.TriggerTick))
		digestWriteI64(h, tmp, int64(c.Inst.CompletionTick))
		for _, v := range c.Inst.LastUsedTick {
			digestWriteU64(h, tmp, v)
		}
		h.Write(c.Instances)
	}
}

func (w *World) digestThings(h hashWriter, tmp *[8]byte) {
	for _, id := range sortedThingIDs(w.things) {
		t := w.things[id]
		digestWriteU64(h, tmp, uint64(t.ID))
		digestWriteU64(h, tmp, uint64(t.Class))
		digestWriteI64(h, tmp, int64(t.Model))
		digestWriteI64(h, tmp, int64(t.Owner))
		digestWriteI64(h, tmp, int64(t.Pos.X))
		digestWriteI64(h, tmp, int64(t.Pos.Y))
		digestWriteI64(h, tmp, t.Gold)
		digestWriteI64(h, tmp, int64(t.HitType))
		digestWriteU64(h, tmp, uint64(t.TargetID))
		digestWriteU64(h, tmp, t.CreatedTick)
	}
}

func (w *World) digestEvents(h hashWriter, tmp *[8]byte) {
	evs := append(w.events[:0:0], w.events...)
	sort.Slice(evs, func(i, j int) bool { return evs[i].ID < evs[j].ID })
	for _, ev := range evs {
		digestWriteU64(h, tmp, ev.ID)
		h.Write([]byte(ev.Kind))
		digestWriteI64(h, tmp, int64(ev.Owner))
		digestWriteI64(h, tmp, int64(ev.Pos.X))
		digestWriteI64(h, tmp, int64(ev.Pos.Y))
		digestWriteI64(h, tmp, int64(ev.Target))
		digestWriteU64(h, tmp, ev.CreatedAt)
		digestWriteU64(h, tmp, ev.UpdatedAt)
		digestWriteU64(h, tmp, ev.ExpiresAt)
		digestWriteI64(h, tmp, int64(ev.Refreshes))
	}
}

func digestWriteU64(h hashWriter, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func digestWriteI64(h hashWriter, tmp *[8]byte, v int64) {
	digestWriteU64(h, tmp, uint64(v))
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

type hashWriter interface {
	Write(p []byte) (n int, err error)
}

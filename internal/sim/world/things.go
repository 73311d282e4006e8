package world

import (
	"fmt"

	"dungeonsim.ai/internal/sim/catalogs"
	"dungeonsim.ai/internal/sim/world/feature/economy"
	"dungeonsim.ai/internal/sim/world/kernel/model"
	"dungeonsim.ai/internal/sim/world/logic/mathx"
	"dungeonsim.ai/internal/sim/world/terrain/store"
)

// ShotLifetimeTicks is how long a fired shot stays in the world. Flight and
// impact are not simulated.
const ShotLifetimeTicks = 20

func (w *World) hoardAt(pos SlabPos) *Thing {
	id, ok := w.hoards[pos]
	if !ok {
		return nil
	}
	return w.things[id]
}

func (w *World) createHoard(pos SlabPos, owner PlayerID) *Thing {
	if h := w.hoardAt(pos); h != nil {
		return h
	}
	t := &Thing{
		ID:          w.allocThingID(),
		Class:       model.ClassObject,
		Model:       model.ObjectGoldHoard,
		Owner:       owner,
		Pos:         pos,
		CreatedTick: w.tick.Load(),
	}
	w.things[t.ID] = t
	w.hoards[pos] = t.ID
	return t
}

func (w *World) removeThing(id ThingID) {
	t := w.things[id]
	if t == nil {
		return
	}
	if t.Class == model.ClassObject && t.Model == model.ObjectGoldHoard && w.hoards[t.Pos] == id {
		delete(w.hoards, t.Pos)
	}
	delete(w.things, id)
}

func (w *World) trapAt(pos SlabPos) *Thing {
	for _, id := range sortedThingIDs(w.things) {
		if t := w.things[id]; t.Class == model.ClassTrap && t.Pos == pos {
			return t
		}
	}
	return nil
}

// placeTrap puts a trap on the owner's own claimed ground. Room slabs and
// slabs that already hold a trap are refused.
func (w *World) placeTrap(owner PlayerID, pos SlabPos, trapModel int) (*Thing, error) {
	s, ok := w.slabs.At(pos)
	if !ok {
		return nil, fmt.Errorf("slab %d,%d out of range", pos.X, pos.Y)
	}
	if s.Kind != catalogs.SlabClaimed || s.Owner != owner || s.RoomID != 0 {
		return nil, fmt.Errorf("slab %d,%d (%s owner %d) cannot hold a trap of player %d", pos.X, pos.Y, s.Kind, s.Owner, owner)
	}
	if w.trapAt(pos) != nil {
		return nil, fmt.Errorf("slab %d,%d already has a trap", pos.X, pos.Y)
	}
	t := &Thing{
		ID:          w.allocThingID(),
		Class:       model.ClassTrap,
		Model:       trapModel,
		Owner:       owner,
		Pos:         pos,
		CreatedTick: w.tick.Load(),
	}
	w.things[t.ID] = t
	return t, nil
}

// removeTraps destroys every trap within radius slabs of c and returns the
// summed sell value of what was removed.
func (w *World) removeTraps(c SlabPos, radius int) int64 {
	var value int64
	for _, id := range sortedThingIDs(w.things) {
		t := w.things[id]
		if t.Class != model.ClassTrap || t.Pos.Dist(c) > radius {
			continue
		}
		if def, ok := w.catalogs.Traps.Get(t.Model); ok {
			value += def.SellValue
		}
		w.removeThing(id)
	}
	return value
}

// removeTrapsAround destroys traps on x,y and its eight neighbours.
func (w *World) removeTrapsAround(x, y int) {
	w.removeTraps(SlabPos{X: x, Y: y}, 1)
}

// sellTrap removes the traps on pos and refunds their sell value to seller
// as off-map gold.
func (w *World) sellTrap(seller PlayerID, pos SlabPos) int64 {
	value := w.removeTraps(pos, 0)
	if value == 0 {
		w.logf("player %d sold traps at %d,%d worth nothing", seller, pos.X, pos.Y)
		return 0
	}
	economy.AddOffmapGold(w.dungeon(seller), value)
	w.recordEffect(model.EffectPrice, pos, seller, 0, int(value))
	return value
}

func (w *World) createShot(cr *Creature, target ThingID, shot int, hitType int) {
	if _, ok := w.catalogs.Shots.Get(shot); !ok {
		w.logf("creature %d: shot %d: %v", cr.ID, shot, catalogs.ErrUnknownName)
		return
	}
	t := &Thing{
		ID:          w.allocThingID(),
		Class:       model.ClassShot,
		Model:       shot,
		Owner:       cr.Owner,
		Pos:         cr.Pos,
		HitType:     hitType,
		TargetID:    target,
		CreatedTick: w.tick.Load(),
	}
	w.things[t.ID] = t
	w.recordEffect(model.EffectShot, cr.Pos, cr.Owner, hitType, shot)
}

// expireShots drops shots older than ShotLifetimeTicks.
func (w *World) expireShots(nowTick uint64) {
	for _, id := range sortedThingIDs(w.things) {
		t := w.things[id]
		if t.Class == model.ClassShot && nowTick >= t.CreatedTick+ShotLifetimeTicks {
			delete(w.things, id)
		}
	}
}

func (w *World) castSpell(cr *Creature, pos SlabPos, spell int) {
	w.recordEffect(model.EffectSpell, pos, cr.Owner, 0, spell)
}

func (w *World) recordEffect(kind model.EffectKind, pos SlabPos, owner PlayerID, hitType, modelID int) {
	w.tickEffects = append(w.tickEffects, EffectRecord{
		Kind:    string(kind),
		Owner:   int(owner),
		Pos:     [2]int{pos.X, pos.Y},
		HitType: hitType,
		Model:   modelID,
	})
}

// playSound picks a sample from base..base+variants-1 using a per-creature,
// per-tick draw so replays choose the same sample.
func (w *World) playSound(cr *Creature, base, variants int) int {
	sample := base + mathx.Draw(w.cfg.Seed, w.tick.Load(), uint32(cr.ID), variants)
	w.tickSounds++
	return sample
}

// auditSlabChange is installed as the slab map change observer.
func (w *World) auditSlabChange(x, y int, from, to store.Slab) {
	w.tickAudits = append(w.tickAudits, AuditEntry{
		Tick:   w.tick.Load(),
		Actor:  uint32(w.curActor),
		Action: "SET_SLAB",
		Pos:    [2]int{x, y},
		From:   uint8(from.Kind),
		To:     uint8(to.Kind),
		Owner:  int(to.Owner),
	})
}

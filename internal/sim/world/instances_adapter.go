package world

import (
	"dungeonsim.ai/internal/sim/catalogs"
	"dungeonsim.ai/internal/sim/world/feature/economy"
	"dungeonsim.ai/internal/sim/world/feature/instances"
	"dungeonsim.ai/internal/sim/world/kernel/model"
	"dungeonsim.ai/internal/sim/world/policy/rules"
	"dungeonsim.ai/internal/sim/world/terrain/store"
)

// instanceEnv exposes the world to instance handlers.
type instanceEnv struct{ w *World }

var _ instances.Env = (*instanceEnv)(nil)

func (e *instanceEnv) Instances() *catalogs.InstanceCatalog { return &e.w.catalogs.Instances }
func (e *instanceEnv) Spell(id int) (catalogs.SpellDef, bool) {
	return e.w.catalogs.Spells.Get(id)
}
func (e *instanceEnv) Params() instances.Params        { return e.w.cfg.Handlers }
func (e *instanceEnv) NowTick() uint64                 { return e.w.tick.Load() }
func (e *instanceEnv) Logf(format string, args ...any) { e.w.logf(format, args...) }

func (e *instanceEnv) Slabs() *store.SlabMap            { return e.w.slabs }
func (e *instanceEnv) Room(id model.RoomID) *model.Room { return e.w.rooms[id] }
func (e *instanceEnv) DeleteRoomSlab(x, y int)          { e.w.deleteRoomSlab(x, y) }

func (e *instanceEnv) NeutraliseEnemyBlock(x, y int, _ model.PlayerID) {
	s, ok := e.w.slabs.Get(x, y)
	if !ok || s.RoomID != 0 {
		return
	}
	e.w.slabs.Place(x, y, catalogs.SlabPath, model.PlayerNeutral)
}

func (e *instanceEnv) RemoveTrapsAround(x, y int) { e.w.removeTrapsAround(x, y) }

// CanPrettify accepts neutral path next to the creature owner's ground.
func (e *instanceEnv) CanPrettify(cr *model.Creature, x, y int) bool {
	s, ok := e.w.slabs.Get(x, y)
	if !ok || s.Kind != catalogs.SlabPath || s.Owner != model.PlayerNeutral {
		return false
	}
	return e.w.slabs.OwnsGroundNear(x, y, cr.Owner)
}

func (e *instanceEnv) Dungeon(owner model.PlayerID) *model.Dungeon { return e.w.dungeon(owner) }

func (e *instanceEnv) DigDamage(cr *model.Creature, _ *store.Slab) int {
	def, _ := e.w.catalogs.Creatures.Get(cr.Kind)
	return rules.DigDamage(def.DigSkill, cr.Level, e.w.digParams())
}

func (e *instanceEnv) GoldYield(cr *model.Creature, s *store.Slab, damage int) int64 {
	return rules.GoldYield(damage, cr.Level, s.Kind, e.w.digParams())
}

func (e *instanceEnv) ChangeArea(owner model.PlayerID, delta int) {
	d := e.w.dungeon(owner)
	if d == nil {
		return
	}
	d.TotalArea += delta
	if d.TotalArea < 0 {
		d.TotalArea = 0
	}
}

func (e *instanceEnv) DigHasRevealedArea(x, y int, owner model.PlayerID) bool {
	return e.w.digHasRevealedArea(x, y, owner)
}
func (e *instanceEnv) CheckMapExplored(cr *model.Creature, x, y int) { e.w.checkMapExplored(cr, x, y) }
func (e *instanceEnv) Event(kind model.EventKind, pos model.SlabPos, owner model.PlayerID, target int) {
	e.w.raiseEvent(kind, pos, owner, target)
}
func (e *instanceEnv) ClearDigOnRoomSlabs(r *model.Room, owner model.PlayerID) {
	e.w.clearDigOnRoomSlabs(r, owner)
}
func (e *instanceEnv) ClaimNeutralRoom(r *model.Room, cr *model.Creature) {
	e.w.claimNeutralRoom(r, cr)
}
func (e *instanceEnv) ClaimEnemyRoom(r *model.Room, cr *model.Creature) { e.w.claimEnemyRoom(r, cr) }

func (e *instanceEnv) Effect(kind model.EffectKind, pos model.SlabPos, owner model.PlayerID, hitType int) {
	e.w.recordEffect(kind, pos, owner, hitType, 0)
}
func (e *instanceEnv) EffectsOnRoomSlabs(r *model.Room, kind model.EffectKind, owner model.PlayerID) {
	e.w.effectsOnRoomSlabs(r, kind, owner)
}
func (e *instanceEnv) PlaySound(cr *model.Creature, base, variants int) {
	e.w.playSound(cr, base, variants)
}

func (e *instanceEnv) Target(id model.ThingID) (model.ThingClass, model.PlayerID, bool) {
	if cr := e.w.creatures[id]; cr != nil {
		if !cr.Alive() {
			return model.ClassNone, 0, false
		}
		return model.ClassCreature, cr.Owner, true
	}
	if t := e.w.things[id]; t != nil {
		return t.Class, t.Owner, true
	}
	return model.ClassNone, 0, false
}

func (e *instanceEnv) CreateShot(cr *model.Creature, target model.ThingID, shot int, hitType int) {
	e.w.createShot(cr, target, shot, hitType)
}

func (e *instanceEnv) CastSpellAtThing(cr *model.Creature, target model.ThingID, spell int) {
	pos := cr.Pos
	if t := e.w.creatures[target]; t != nil {
		pos = t.Pos
	} else if th := e.w.things[target]; th != nil {
		pos = th.Pos
	}
	e.w.castSpell(cr, pos, spell)
}

func (e *instanceEnv) CastSpellAtPos(cr *model.Creature, pos model.SlabPos, spell int) {
	e.w.castSpell(cr, pos, spell)
}

// economyEnv exposes the world to the treasury functions.
type economyEnv struct{ w *World }

var _ economy.Env = (*economyEnv)(nil)

func (e *economyEnv) Slabs() *store.SlabMap                       { return e.w.slabs }
func (e *economyEnv) Dungeon(owner model.PlayerID) *model.Dungeon { return e.w.dungeon(owner) }
func (e *economyEnv) Dungeons() []*model.Dungeon                  { return e.w.dungeons }
func (e *economyEnv) Room(id model.RoomID) *model.Room            { return e.w.rooms[id] }
func (e *economyEnv) HoardAt(pos model.SlabPos) *model.Thing      { return e.w.hoardAt(pos) }
func (e *economyEnv) CreateHoard(pos model.SlabPos, owner model.PlayerID) *model.Thing {
	return e.w.createHoard(pos, owner)
}
func (e *economyEnv) RemoveThing(id model.ThingID) { e.w.removeThing(id) }
func (e *economyEnv) Event(kind model.EventKind, pos model.SlabPos, owner model.PlayerID, target int) {
	e.w.raiseEvent(kind, pos, owner, target)
}
func (e *economyEnv) GoldLowThreshold() int64         { return e.w.cfg.GoldLowThreshold }
func (e *economyEnv) Logf(format string, args ...any) { e.w.logf(format, args...) }

func (w *World) digParams() rules.DigParams {
	p := w.cfg.Dig
	p.GoldSlabHealth = w.catalogs.Slabs.Def(catalogs.SlabGold).Health
	return p
}

func (w *World) recalcAreaScores() { economy.CalculateAreaScores(w.ecoEnv) }

package instances

import (
	"dungeonsim.ai/internal/sim/catalogs"
	"dungeonsim.ai/internal/sim/world/kernel/model"
	"dungeonsim.ai/internal/sim/world/terrain/store"
)

// FirstPersonShot is the utility shot a possessed imp fires when there is
// nothing to prettify.
const FirstPersonShot = 23

type Outcome int

const (
	OutcomeContinue  Outcome = 0
	OutcomeCompleted Outcome = 1
)

func (o Outcome) String() string {
	if o == OutcomeCompleted {
		return "COMPLETED"
	}
	return "CONTINUE"
}

// Params are the handler constants taken from tuning.
type Params struct {
	FoodHealthGain    int
	ReinforceSteps    int
	WallHitDamage     int
	RoomSlabHitDamage int
}

type CatalogEnv interface {
	Instances() *catalogs.InstanceCatalog
	Spell(id int) (catalogs.SpellDef, bool)
	Params() Params
	NowTick() uint64
	Logf(format string, args ...any)
}

type TerrainEnv interface {
	Slabs() *store.SlabMap
	Room(id model.RoomID) *model.Room

	// DeleteRoomSlab turns a room slab into neutral path and dissolves the
	// room once it has no slabs left.
	DeleteRoomSlab(x, y int)
	// NeutraliseEnemyBlock turns claimed ground back into neutral path.
	NeutraliseEnemyBlock(x, y int, by model.PlayerID)
	RemoveTrapsAround(x, y int)
	// CanPrettify reports whether the slab qualifies for a pretty-path pass.
	CanPrettify(cr *model.Creature, x, y int) bool
}

type EconomyEnv interface {
	Dungeon(owner model.PlayerID) *model.Dungeon
	DigDamage(cr *model.Creature, s *store.Slab) int
	GoldYield(cr *model.Creature, s *store.Slab, damage int) int64
	ChangeArea(owner model.PlayerID, delta int)
}

type MapEnv interface {
	DigHasRevealedArea(x, y int, owner model.PlayerID) bool
	CheckMapExplored(cr *model.Creature, x, y int)
	Event(kind model.EventKind, pos model.SlabPos, owner model.PlayerID, target int)

	ClearDigOnRoomSlabs(r *model.Room, owner model.PlayerID)
	ClaimNeutralRoom(r *model.Room, cr *model.Creature)
	ClaimEnemyRoom(r *model.Room, cr *model.Creature)
}

type EffectEnv interface {
	Effect(kind model.EffectKind, pos model.SlabPos, owner model.PlayerID, hitType int)
	EffectsOnRoomSlabs(r *model.Room, kind model.EffectKind, owner model.PlayerID)
	// PlaySound picks one of variants samples starting at base.
	PlaySound(cr *model.Creature, base, variants int)
}

type CombatEnv interface {
	// Target reports the class and owner of a combat target.
	Target(id model.ThingID) (model.ThingClass, model.PlayerID, bool)
	CreateShot(cr *model.Creature, target model.ThingID, shot int, hitType int)
	CastSpellAtThing(cr *model.Creature, target model.ThingID, spell int)
	CastSpellAtPos(cr *model.Creature, pos model.SlabPos, spell int)
}

// Env is everything a handler may touch. The world implements it; tests use
// stubs.
type Env interface {
	CatalogEnv
	TerrainEnv
	EconomyEnv
	MapEnv
	EffectEnv
	CombatEnv
}

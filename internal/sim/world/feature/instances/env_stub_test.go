package instances

import (
	"fmt"

	"dungeonsim.ai/internal/sim/catalogs"
	"dungeonsim.ai/internal/sim/world/kernel/model"
	"dungeonsim.ai/internal/sim/world/terrain/store"
)

type stubShot struct {
	target  model.ThingID
	shot    int
	hitType int
}

type stubSpell struct {
	target model.ThingID
	pos    model.SlabPos
	spell  int
	atPos  bool
}

type stubEvent struct {
	kind  model.EventKind
	pos   model.SlabPos
	owner model.PlayerID
}

// stubEnv is an in-memory Env. Every dig hit does digDamage and gold yield is
// 2 per point of damage.
type stubEnv struct {
	now       uint64
	inst      *catalogs.InstanceCatalog
	spells    map[int]catalogs.SpellDef
	params    Params
	slabs     *store.SlabMap
	rooms     map[model.RoomID]*model.Room
	dungeons  map[model.PlayerID]*model.Dungeon
	targets   map[model.ThingID]model.Thing
	digDamage int
	reveal    bool
	prettify  bool

	logs         []string
	events       []stubEvent
	effects      []model.EffectKind
	sounds       int
	shots        []stubShot
	casts        []stubSpell
	areaDelta    map[model.PlayerID]int
	claimedBy    map[model.RoomID]string
	cleared      []model.RoomID
	neutralised  []model.SlabPos
	trapsRemoved int
	deleted      []model.SlabPos
	explored     int
}

func testSlabDefs() *catalogs.SlabCatalog {
	c := &catalogs.SlabCatalog{}
	c.Defs[catalogs.SlabRock] = catalogs.SlabDef{Name: "ROCK", Health: 1000, Solid: true}
	c.Defs[catalogs.SlabGold] = catalogs.SlabDef{Name: "GOLD", Health: 1000, Solid: true, Diggable: true}
	c.Defs[catalogs.SlabGems] = catalogs.SlabDef{Name: "GEMS", Health: 1000, Solid: true, Diggable: true}
	c.Defs[catalogs.SlabEarth] = catalogs.SlabDef{Name: "EARTH", Health: 500, Solid: true, Diggable: true}
	c.Defs[catalogs.SlabTorchDirt] = catalogs.SlabDef{Name: "TORCH_DIRT", Health: 500, Solid: true, Diggable: true}
	c.Defs[catalogs.SlabWall] = catalogs.SlabDef{Name: "WALL", Health: 1000, Solid: true}
	c.Defs[catalogs.SlabPath] = catalogs.SlabDef{Name: "PATH", Health: 5}
	c.Defs[catalogs.SlabClaimed] = catalogs.SlabDef{Name: "CLAIMED", Health: 5}
	c.Defs[catalogs.SlabTreasure] = catalogs.SlabDef{Name: "TREASURE", Health: 10}
	return c
}

func testInstances() *catalogs.InstanceCatalog {
	c, err := catalogs.NewInstanceCatalog([]catalogs.InstanceInfo{
		{ID: 0, Name: "NONE", Func: "none"},
		{ID: 1, Name: "SNACK", Func: "creature_eat", Time: 5, ActionTime: 3, ResetTime: 10, FPTime: 2, FPActionTime: 1, FPResetTime: 4},
		{ID: 2, Name: "GULP", Func: "creature_eat", Time: 2, ActionTime: 2},
		{ID: 3, Name: "IDLE", Func: "none", Time: 2, ActionTime: 1},
	})
	if err != nil {
		panic(err)
	}
	return c
}

func newStubEnv() *stubEnv {
	e := &stubEnv{
		now:       1,
		inst:      testInstances(),
		spells:    map[int]catalogs.SpellDef{},
		params:    Params{FoodHealthGain: 25, ReinforceSteps: 25, WallHitDamage: 2, RoomSlabHitDamage: 2},
		slabs:     store.NewSlabMap(8, 8, testSlabDefs()),
		rooms:     map[model.RoomID]*model.Room{},
		dungeons:  map[model.PlayerID]*model.Dungeon{0: model.NewDungeon(0), 1: model.NewDungeon(1)},
		targets:   map[model.ThingID]model.Thing{},
		areaDelta: map[model.PlayerID]int{},
		claimedBy: map[model.RoomID]string{},
		digDamage: 6,
	}
	return e
}

func (e *stubEnv) Instances() *catalogs.InstanceCatalog { return e.inst }
func (e *stubEnv) Spell(id int) (catalogs.SpellDef, bool) {
	s, ok := e.spells[id]
	return s, ok
}
func (e *stubEnv) Params() Params  { return e.params }
func (e *stubEnv) NowTick() uint64 { return e.now }
func (e *stubEnv) Logf(format string, args ...any) {
	e.logs = append(e.logs, fmt.Sprintf(format, args...))
}

func (e *stubEnv) Slabs() *store.SlabMap            { return e.slabs }
func (e *stubEnv) Room(id model.RoomID) *model.Room { return e.rooms[id] }
func (e *stubEnv) DeleteRoomSlab(x, y int) {
	e.deleted = append(e.deleted, model.SlabPos{X: x, Y: y})
	e.slabs.ConvertToFloor(x, y)
}
func (e *stubEnv) NeutraliseEnemyBlock(x, y int, _ model.PlayerID) {
	e.neutralised = append(e.neutralised, model.SlabPos{X: x, Y: y})
	e.slabs.Place(x, y, catalogs.SlabPath, model.PlayerNeutral)
}
func (e *stubEnv) RemoveTrapsAround(int, int)                 { e.trapsRemoved++ }
func (e *stubEnv) CanPrettify(*model.Creature, int, int) bool { return e.prettify }
func (e *stubEnv) Dungeon(o model.PlayerID) *model.Dungeon    { return e.dungeons[o] }
func (e *stubEnv) DigDamage(*model.Creature, *store.Slab) int { return e.digDamage }
func (e *stubEnv) ChangeArea(owner model.PlayerID, delta int) { e.areaDelta[owner] += delta }
func (e *stubEnv) GoldYield(_ *model.Creature, _ *store.Slab, damage int) int64 {
	return int64(damage) * 2
}

func (e *stubEnv) DigHasRevealedArea(int, int, model.PlayerID) bool { return e.reveal }
func (e *stubEnv) CheckMapExplored(*model.Creature, int, int)       { e.explored++ }
func (e *stubEnv) Event(kind model.EventKind, pos model.SlabPos, owner model.PlayerID, _ int) {
	e.events = append(e.events, stubEvent{kind: kind, pos: pos, owner: owner})
}
func (e *stubEnv) ClearDigOnRoomSlabs(r *model.Room, _ model.PlayerID) {
	e.cleared = append(e.cleared, r.ID)
}
func (e *stubEnv) ClaimNeutralRoom(r *model.Room, cr *model.Creature) {
	e.claimedBy[r.ID] = "neutral"
	r.Owner = cr.Owner
}
func (e *stubEnv) ClaimEnemyRoom(r *model.Room, cr *model.Creature) {
	e.claimedBy[r.ID] = "enemy"
	r.Owner = cr.Owner
}

func (e *stubEnv) Effect(kind model.EffectKind, _ model.SlabPos, _ model.PlayerID, _ int) {
	e.effects = append(e.effects, kind)
}
func (e *stubEnv) EffectsOnRoomSlabs(_ *model.Room, kind model.EffectKind, _ model.PlayerID) {
	e.effects = append(e.effects, kind)
}
func (e *stubEnv) PlaySound(*model.Creature, int, int) { e.sounds++ }

func (e *stubEnv) Target(id model.ThingID) (model.ThingClass, model.PlayerID, bool) {
	t, ok := e.targets[id]
	return t.Class, t.Owner, ok
}
func (e *stubEnv) CreateShot(_ *model.Creature, target model.ThingID, shot int, hitType int) {
	e.shots = append(e.shots, stubShot{target: target, shot: shot, hitType: hitType})
}
func (e *stubEnv) CastSpellAtThing(_ *model.Creature, target model.ThingID, spell int) {
	e.casts = append(e.casts, stubSpell{target: target, spell: spell})
}
func (e *stubEnv) CastSpellAtPos(_ *model.Creature, pos model.SlabPos, spell int) {
	e.casts = append(e.casts, stubSpell{pos: pos, spell: spell, atPos: true})
}

func newCreature(owner model.PlayerID, pos model.SlabPos) *model.Creature {
	cr := model.NewCreature(1, 0, owner, pos, 4)
	cr.Health = 50
	cr.MaxHealth = 100
	return cr
}

package instances

import (
	"testing"

	"dungeonsim.ai/internal/sim/catalogs"
	"dungeonsim.ai/internal/sim/world/kernel/model"
)

func setupDig(env *stubEnv, kind model.TaskKind, slab catalogs.SlabKind, health int) *model.Creature {
	target := model.SlabPos{X: 3, Y: 3}
	env.slabs.Place(target.X, target.Y, slab, model.PlayerNeutral)
	env.slabs.SetHealth(target.X, target.Y, health)
	idx, _ := env.dungeons[0].AddTask(model.MapTask{Kind: kind, Target: target})
	cr := newCreature(0, model.SlabPos{X: 3, Y: 4})
	cr.DigTask = idx
	cr.DigTarget = target
	return cr
}

func TestDig_MineGoldTwoHits(t *testing.T) {
	env := newStubEnv()
	env.reveal = true
	cr := setupDig(env, model.TaskMineGold, catalogs.SlabGold, 10)

	if out := Dig(env, cr, 0); out != OutcomeContinue {
		t.Fatalf("first hit outcome=%v", out)
	}
	s, _ := env.slabs.Get(3, 3)
	if s.Health != 4 {
		t.Fatalf("health after first hit=%d", s.Health)
	}
	if cr.GoldCarried != 12 || env.dungeons[0].Stats.GoldMined != 12 {
		t.Fatalf("gold after first hit: carried=%d mined=%d", cr.GoldCarried, env.dungeons[0].Stats.GoldMined)
	}

	if out := Dig(env, cr, 0); out != OutcomeCompleted {
		t.Fatalf("second hit outcome=%v", out)
	}
	if cr.GoldCarried != 20 {
		t.Fatalf("second hit must credit yield(4) only, carried=%d", cr.GoldCarried)
	}
	if _, ok := env.dungeons[0].Task(cr.DigTask); ok {
		t.Fatalf("task not removed")
	}
	if s.Kind != catalogs.SlabPath || s.Owner != model.PlayerNeutral {
		t.Fatalf("slab not mined out: %+v", s)
	}
	if len(env.events) != 1 || env.events[0].kind != model.EventAreaDiscovered {
		t.Fatalf("events=%+v", env.events)
	}
	if env.explored != 1 {
		t.Fatalf("exploration not re-evaluated")
	}
}

func TestDig_EarthGivesNoGold(t *testing.T) {
	env := newStubEnv()
	cr := setupDig(env, model.TaskDigEarth, catalogs.SlabEarth, 6)
	if out := Dig(env, cr, 0); out != OutcomeCompleted {
		t.Fatalf("outcome=%v", out)
	}
	if cr.GoldCarried != 0 {
		t.Fatalf("earth paid gold: %d", cr.GoldCarried)
	}
	if len(env.events) != 0 {
		t.Fatalf("unexpected events: %+v", env.events)
	}
}

func TestDig_GemsNeverLoseHealth(t *testing.T) {
	env := newStubEnv()
	cr := setupDig(env, model.TaskMineGold, catalogs.SlabGems, 1000)
	for i := 0; i < 3; i++ {
		Dig(env, cr, 0)
	}
	s, _ := env.slabs.Get(3, 3)
	if s.Health != 1000 || s.Kind != catalogs.SlabGems {
		t.Fatalf("gems changed: %+v", s)
	}
	if cr.GoldCarried != 36 {
		t.Fatalf("gems must still pay gold, carried=%d", cr.GoldCarried)
	}
}

func TestDig_StaleTask(t *testing.T) {
	env := newStubEnv()
	cr := setupDig(env, model.TaskMineGold, catalogs.SlabGold, 10)
	cr.DigTarget = model.SlabPos{X: 5, Y: 5}
	if out := Dig(env, cr, 0); out != OutcomeContinue {
		t.Fatalf("outcome=%v", out)
	}
	s, _ := env.slabs.Get(3, 3)
	if s.Health != 10 || cr.GoldCarried != 0 {
		t.Fatalf("stale task had side effects: %+v gold=%d", s, cr.GoldCarried)
	}
	if len(env.logs) != 1 {
		t.Fatalf("expected stale log, got %v", env.logs)
	}
}

func addRoom(env *stubEnv, id model.RoomID, owner model.PlayerID, resistance int, cells ...model.SlabPos) *model.Room {
	r := &model.Room{ID: id, Kind: catalogs.RoomTreasure, Owner: owner, ClaimResistance: resistance, FirstSlab: -1}
	for _, c := range cells {
		env.slabs.Place(c.X, c.Y, catalogs.SlabTreasure, owner)
		env.slabs.LinkRoomSlab(env.slabs.Index(c.X, c.Y), r)
	}
	r.Central = cells[0]
	env.rooms[id] = r
	return r
}

func TestDestroy_EnemyRoomNeedsResistanceHits(t *testing.T) {
	env := newStubEnv()
	pos := model.SlabPos{X: 2, Y: 2}
	r := addRoom(env, 4, 1, 3, pos, model.SlabPos{X: 3, Y: 2})
	cr := newCreature(0, pos)

	for i, want := range []int{2, 1} {
		if out := Destroy(env, cr, 0); out != OutcomeContinue {
			t.Fatalf("call %d outcome=%v", i+1, out)
		}
		if r.ClaimResistance != want || r.Owner != 1 {
			t.Fatalf("call %d: resistance=%d owner=%d", i+1, r.ClaimResistance, r.Owner)
		}
	}
	if out := Destroy(env, cr, 0); out != OutcomeCompleted {
		t.Fatalf("third call outcome=%v", out)
	}
	if env.claimedBy[4] != "enemy" || r.Owner != 0 {
		t.Fatalf("room not claimed: %v owner=%d", env.claimedBy, r.Owner)
	}
	if len(env.events) != 1 || env.events[0].kind != model.EventRoomLost || env.events[0].owner != 1 {
		t.Fatalf("expected ROOM_LOST for loser, got %+v", env.events)
	}
	if len(env.cleared) != 1 {
		t.Fatalf("dig marks not cleared")
	}
}

func TestDestroy_NeutralRoom(t *testing.T) {
	env := newStubEnv()
	pos := model.SlabPos{X: 2, Y: 2}
	addRoom(env, 5, model.PlayerNeutral, 1, pos)
	cr := newCreature(0, pos)
	if out := Destroy(env, cr, 0); out != OutcomeCompleted {
		t.Fatalf("outcome=%v", out)
	}
	if env.claimedBy[5] != "neutral" || len(env.events) != 0 {
		t.Fatalf("neutral claim: %v events=%+v", env.claimedBy, env.events)
	}
}

func TestDestroy_EnemyGround(t *testing.T) {
	env := newStubEnv()
	pos := model.SlabPos{X: 2, Y: 2}
	env.slabs.Place(pos.X, pos.Y, catalogs.SlabClaimed, 1)
	env.slabs.SetHealth(pos.X, pos.Y, 2)
	cr := newCreature(0, pos)

	if out := Destroy(env, cr, 0); out != OutcomeContinue {
		t.Fatalf("first outcome=%v", out)
	}
	if out := Destroy(env, cr, 0); out != OutcomeCompleted {
		t.Fatalf("second outcome=%v", out)
	}
	if env.dungeons[1].Stats.TerritoryLost != 1 || env.dungeons[0].Stats.TerritoryDestroyed != 1 {
		t.Fatalf("stats: lost=%d destroyed=%d", env.dungeons[1].Stats.TerritoryLost, env.dungeons[0].Stats.TerritoryDestroyed)
	}
	if env.areaDelta[1] != -1 || len(env.neutralised) != 1 || env.trapsRemoved != 1 {
		t.Fatalf("area=%v neutralised=%v traps=%d", env.areaDelta, env.neutralised, env.trapsRemoved)
	}
}

func TestAttackRoomSlab(t *testing.T) {
	env := newStubEnv()
	pos := model.SlabPos{X: 2, Y: 2}
	addRoom(env, 6, 1, 1, pos)
	env.slabs.SetHealth(pos.X, pos.Y, 4)
	cr := newCreature(0, pos)

	if out := AttackRoomSlab(env, cr, 0); out != OutcomeCompleted {
		t.Fatalf("outcome=%v", out)
	}
	s, _ := env.slabs.Get(pos.X, pos.Y)
	if s.Health != 2 || len(env.deleted) != 0 {
		t.Fatalf("first hit: health=%d deleted=%v", s.Health, env.deleted)
	}
	AttackRoomSlab(env, cr, 0)
	if len(env.deleted) != 1 || env.dungeons[1].Stats.RoomsDestroyed != 1 {
		t.Fatalf("slab not destroyed: deleted=%v stats=%+v", env.deleted, env.dungeons[1].Stats)
	}

	off := newCreature(0, model.SlabPos{X: 6, Y: 6})
	if out := AttackRoomSlab(env, off, 0); out != OutcomeContinue {
		t.Fatalf("non-room slab outcome=%v", out)
	}
}

func TestDamageWall(t *testing.T) {
	env := newStubEnv()
	wall := model.SlabPos{X: 4, Y: 4}
	env.slabs.Place(wall.X, wall.Y, catalogs.SlabWall, 1)
	env.slabs.SetHealth(wall.X, wall.Y, 3)
	cr := newCreature(0, model.SlabPos{X: 4, Y: 5})
	cr.DamageWallTarget = wall

	DamageWall(env, cr, 0)
	s, _ := env.slabs.Get(wall.X, wall.Y)
	if s.Health != 1 || s.Kind != catalogs.SlabWall {
		t.Fatalf("first hit: %+v", s)
	}
	if out := DamageWall(env, cr, 0); out != OutcomeCompleted {
		t.Fatalf("outcome=%v", out)
	}
	if s.Kind != catalogs.SlabEarth || s.Owner != model.PlayerNeutral {
		t.Fatalf("wall not knocked down: %+v", s)
	}
	cr.DamageWallTarget = model.SlabPos{X: -1, Y: 0}
	if out := DamageWall(env, cr, 0); out != OutcomeContinue {
		t.Fatalf("invalid slab outcome=%v", out)
	}
}

func TestEat(t *testing.T) {
	env := newStubEnv()
	cr := newCreature(0, model.SlabPos{X: 1, Y: 1})
	cr.HungerAmount = 2
	cr.HungerLevel = 40
	cr.Health = 90
	if out := Eat(env, cr, 0); out != OutcomeCompleted {
		t.Fatalf("outcome=%v", out)
	}
	if cr.HungerAmount != 1 || cr.HungerLevel != 0 || cr.Health != 100 {
		t.Fatalf("after eat: %+v", cr)
	}
}

func TestFart_StampsCooldown(t *testing.T) {
	env := newStubEnv()
	env.now = 77
	cr := newCreature(0, model.SlabPos{X: 1, Y: 1})
	cr.Inst.Active = 3
	Fart(env, cr, 0)
	if cr.Inst.LastUsedTick[3] != 77 {
		t.Fatalf("cooldown not stamped: %v", cr.Inst.LastUsedTick)
	}
	if len(env.effects) != 1 || env.effects[0] != model.EffectGas {
		t.Fatalf("effects=%v", env.effects)
	}
}

func TestPrettyPath(t *testing.T) {
	env := newStubEnv()
	pos := model.SlabPos{X: 2, Y: 5}
	env.slabs.Place(pos.X, pos.Y, catalogs.SlabPath, model.PlayerNeutral)
	cr := newCreature(1, pos)
	if out := PrettyPath(env, cr, 0); out != OutcomeCompleted {
		t.Fatalf("outcome=%v", out)
	}
	s, _ := env.slabs.Get(pos.X, pos.Y)
	if s.Kind != catalogs.SlabClaimed || s.Owner != 1 {
		t.Fatalf("slab not claimed: %+v", s)
	}
	if env.areaDelta[1] != 1 || env.dungeons[1].Stats.AreaClaimed != 1 {
		t.Fatalf("area=%v stats=%+v", env.areaDelta, env.dungeons[1].Stats)
	}
	if len(env.events) != 1 || env.events[0].kind != model.EventClaimed {
		t.Fatalf("events=%+v", env.events)
	}
}

func TestReinforce(t *testing.T) {
	env := newStubEnv()
	target := model.SlabPos{X: 3, Y: 3}
	env.slabs.Place(target.X, target.Y, catalogs.SlabEarth, model.PlayerNeutral)
	env.slabs.Place(3, 4, catalogs.SlabClaimed, 0)
	cr := newCreature(0, model.SlabPos{X: 3, Y: 4})
	cr.DigTarget = target

	for i := 0; i <= env.params.ReinforceSteps; i++ {
		if out := Reinforce(env, cr, 0); out != OutcomeContinue {
			t.Fatalf("step %d outcome=%v", i, out)
		}
	}
	s, _ := env.slabs.Get(target.X, target.Y)
	if s.Kind != catalogs.SlabEarth || cr.ReinforceProgress != env.params.ReinforceSteps+1 {
		t.Fatalf("wall built too early: %+v progress=%d", s, cr.ReinforceProgress)
	}
	Reinforce(env, cr, 0)
	if s.Kind != catalogs.SlabWall || s.Owner != 0 || cr.ReinforceProgress != 0 {
		t.Fatalf("wall not built: %+v progress=%d", s, cr.ReinforceProgress)
	}
	if out := Reinforce(env, cr, 0); out != OutcomeContinue || cr.ReinforceProgress != 0 {
		t.Fatalf("walls are not reinforceable")
	}
}

func TestReinforce_NeedsOwnGround(t *testing.T) {
	env := newStubEnv()
	env.slabs.Place(3, 3, catalogs.SlabEarth, model.PlayerNeutral)
	cr := newCreature(0, model.SlabPos{X: 3, Y: 4})
	cr.DigTarget = model.SlabPos{X: 3, Y: 3}
	Reinforce(env, cr, 0)
	if cr.ReinforceProgress != 0 {
		t.Fatalf("reinforced without adjacent claimed ground")
	}
}

func TestTunnel(t *testing.T) {
	env := newStubEnv()
	env.slabs.Place(5, 5, catalogs.SlabEarth, model.PlayerNeutral)
	env.slabs.SetHealth(5, 5, 2)
	cr := newCreature(0, model.SlabPos{X: 5, Y: 6})
	cr.TunnelTarget = model.SlabPos{X: 5, Y: 5}
	Tunnel(env, cr, 0)
	s, _ := env.slabs.Get(5, 5)
	if s.Health != 1 || s.Kind != catalogs.SlabEarth {
		t.Fatalf("first hit: %+v", s)
	}
	if out := Tunnel(env, cr, 0); out != OutcomeCompleted || s.Kind != catalogs.SlabPath {
		t.Fatalf("not dug out: %+v outcome=%v", s, out)
	}
}

func TestFireShot_HitTypes(t *testing.T) {
	cases := []struct {
		name      string
		possessed bool
		target    *model.Thing
		want      int
	}{
		{"auto no target", false, nil, model.HitTypeCrtrsOnlyNotOwn},
		{"possessed no target", true, nil, model.HitTypeCrtrsNObjcts},
		{"auto object", false, &model.Thing{Class: model.ClassObject, Owner: 1}, model.HitTypeCrtrsNObjcts},
		{"auto ally", false, &model.Thing{Class: model.ClassCreature, Owner: 0}, model.HitTypeCrtrsOnly},
		{"auto enemy", false, &model.Thing{Class: model.ClassCreature, Owner: 1}, model.HitTypeCrtrsOnlyNotOwn},
		{"possessed enemy", true, &model.Thing{Class: model.ClassCreature, Owner: 1}, model.HitTypeCrtrsOnly},
		{"possessed object", true, &model.Thing{Class: model.ClassObject, Owner: 1}, model.HitTypeCrtrsNObjcts},
	}
	for _, tc := range cases {
		env := newStubEnv()
		cr := newCreature(0, model.SlabPos{X: 1, Y: 1})
		cr.Possessed = tc.possessed
		if tc.target != nil {
			env.targets[9] = *tc.target
			cr.CombatTarget = 9
		}
		if out := FireShot(env, cr, 5); out != OutcomeContinue {
			t.Fatalf("%s: outcome=%v", tc.name, out)
		}
		if len(env.shots) != 1 || env.shots[0].hitType != tc.want || env.shots[0].shot != 5 {
			t.Fatalf("%s: shots=%+v", tc.name, env.shots)
		}
	}
}

func TestFireShot_VanishedTarget(t *testing.T) {
	env := newStubEnv()
	cr := newCreature(0, model.SlabPos{X: 1, Y: 1})
	cr.CombatTarget = 42
	FireShot(env, cr, 5)
	if len(env.shots) != 0 {
		t.Fatalf("fired at vanished target")
	}
}

func TestCastSpell(t *testing.T) {
	env := newStubEnv()
	env.spells[3] = catalogs.SpellDef{ID: 3, Name: "SLOW", CastAtThing: true}
	env.spells[4] = catalogs.SpellDef{ID: 4, Name: "FEAR"}
	env.targets[9] = model.Thing{Class: model.ClassCreature, Owner: 1}
	cr := newCreature(0, model.SlabPos{X: 1, Y: 1})
	cr.CombatTarget = 9
	cr.TargetPos = model.SlabPos{X: 6, Y: 2}

	CastSpell(env, cr, 3)
	CastSpell(env, cr, 4)
	cr.CombatTarget = 10
	CastSpell(env, cr, 3)
	CastSpell(env, cr, 99)

	if len(env.casts) != 3 {
		t.Fatalf("casts=%+v", env.casts)
	}
	if env.casts[0].atPos || env.casts[0].target != 9 {
		t.Fatalf("expected thing cast: %+v", env.casts[0])
	}
	if !env.casts[1].atPos || env.casts[1].pos != cr.TargetPos {
		t.Fatalf("expected position cast: %+v", env.casts[1])
	}
	if !env.casts[2].atPos {
		t.Fatalf("vanished target must fall back to position: %+v", env.casts[2])
	}
}

func TestFirstPersonDoImpTask(t *testing.T) {
	env := newStubEnv()
	cr := newCreature(0, model.SlabPos{X: 2, Y: 2})
	cr.Possessed = true
	if out := FirstPersonDoImpTask(env, cr, 0); out != OutcomeCompleted {
		t.Fatalf("outcome=%v", out)
	}
	if len(env.shots) != 1 || env.shots[0].shot != FirstPersonShot {
		t.Fatalf("expected utility shot, got %+v", env.shots)
	}

	env = newStubEnv()
	env.prettify = true
	FirstPersonDoImpTask(env, cr, 0)
	if len(env.shots) != 0 || env.dungeons[0].Stats.AreaClaimed != 1 {
		t.Fatalf("expected pretty path, shots=%+v", env.shots)
	}
}

func TestHandlerTable(t *testing.T) {
	if handlerFor(catalogs.FuncNull) != nil || handlerFor(catalogs.FuncNone) != nil {
		t.Fatalf("null and none must have no handler")
	}
	for k := catalogs.FuncAttackRoomSlab; k < catalogs.FuncNone; k++ {
		if handlerFor(k) == nil {
			t.Fatalf("kind %v has no handler", k)
		}
	}
	if handlerFor(catalogs.FuncKindCount) != nil {
		t.Fatalf("out of range kind resolved")
	}
}

func TestTortured(t *testing.T) {
	env := newStubEnv()
	cr := newCreature(0, model.SlabPos{X: 1, Y: 1})
	if Tortured(env, cr, 0) != OutcomeCompleted || env.sounds != 0 {
		t.Fatalf("tortured must be a silent completion")
	}
}

package world

import (
	"testing"

	"dungeonsim.ai/internal/protocol"
	"dungeonsim.ai/internal/sim/catalogs"
	"dungeonsim.ai/internal/sim/world/kernel/model"
)

func TestCommands_DigGoldFlow(t *testing.T) {
	w := newTestWorld(t, 5)
	step(t, w)
	h := heartOf(t, w, 0)
	target := h.Add(4, 0)
	w.slabs.Place(target.X, target.Y, catalogs.SlabGold, model.PlayerNeutral)
	w.slabs.SetHealth(target.X, target.Y, 1)
	imp := firstImp(t, w, 0)

	res := step(t, w, protocol.CommandReq{ID: "mark", Op: protocol.OpMarkDig, Owner: 0, Pos: [2]int{target.X, target.Y}})
	if !res[0].OK {
		t.Fatalf("mark dig: %+v", res[0])
	}
	slot := int(res[0].Ref)
	if task, _ := w.dungeon(0).Task(slot); task.Kind != model.TaskMineGold {
		t.Fatalf("task kind=%v", task.Kind)
	}

	res = step(t, w,
		protocol.CommandReq{ID: "assign", Op: protocol.OpAssignDig, Creature: uint32(imp.ID), Slot: slot},
		protocol.CommandReq{ID: "start", Op: protocol.OpStartInstance, Creature: uint32(imp.ID), Instance: "DIG"},
	)
	for _, r := range res {
		if !r.OK {
			t.Fatalf("%s: %+v", r.ID, r)
		}
	}
	for i := 0; i < 8; i++ {
		step(t, w)
	}

	s, _ := w.slabs.At(target)
	if s.Kind != catalogs.SlabPath || s.Owner != model.PlayerNeutral {
		t.Fatalf("dug slab kind=%v owner=%d", s.Kind, s.Owner)
	}
	if imp.GoldCarried < 1 || w.dungeon(0).Stats.GoldMined != imp.GoldCarried {
		t.Fatalf("carried=%d mined=%d", imp.GoldCarried, w.dungeon(0).Stats.GoldMined)
	}
	if _, ok := w.dungeon(0).Task(slot); ok {
		t.Fatalf("task %d still present", slot)
	}
	if imp.Inst.Active != catalogs.InstNone {
		t.Fatalf("dig still active: %d", imp.Inst.Active)
	}
}

func TestCommands_StartInstanceBusyThenCooldown(t *testing.T) {
	w := newTestWorld(t, 5)
	step(t, w)
	imp := firstImp(t, w, 0)
	start := protocol.CommandReq{ID: "s", Op: protocol.OpStartInstance, Creature: uint32(imp.ID), Instance: "REINFORCE"}

	res := step(t, w, start, start)
	if !res[0].OK || res[1].Code != protocol.ErrBusy {
		t.Fatalf("want ok then busy, got %+v", res)
	}
	for imp.Inst.Active != catalogs.InstNone {
		step(t, w)
	}
	res = step(t, w, start)
	if res[0].Code != protocol.ErrCooldown {
		t.Fatalf("want cooldown, got %+v", res[0])
	}
}

func TestCommands_UnlearnedInstanceIsUnavailable(t *testing.T) {
	w := newTestWorld(t, 5)
	imp := firstImp(t, w, 0)
	res := step(t, w, protocol.CommandReq{ID: "f", Op: protocol.OpStartInstance, Creature: uint32(imp.ID), Instance: "FIREBALL"})
	if res[0].Code != protocol.ErrCooldown {
		t.Fatalf("got %+v", res[0])
	}
}

func TestCommands_Errors(t *testing.T) {
	w := newTestWorld(t, 5)
	imp := firstImp(t, w, 0)
	cases := []struct {
		cmd  protocol.CommandReq
		code string
	}{
		{protocol.CommandReq{ID: "1", Op: "SING"}, protocol.ErrBadRequest},
		{protocol.CommandReq{ID: "2", Op: protocol.OpInterrupt, Creature: 9999}, protocol.ErrNotFound},
		{protocol.CommandReq{ID: "3", Op: protocol.OpMove, Creature: uint32(imp.ID), Pos: [2]int{0, 0}}, protocol.ErrInvalidTarget},
		{protocol.CommandReq{ID: "4", Op: protocol.OpTakeGold, Owner: 0, Amount: 1 << 40, Flag: true}, protocol.ErrNoResource},
		{protocol.CommandReq{ID: "5", Op: protocol.OpTakeGold, Owner: 7, Amount: 10}, protocol.ErrBadRequest},
		{protocol.CommandReq{ID: "6", Op: protocol.OpSpawn, Kind: "DRAGON", Owner: 0}, protocol.ErrBadRequest},
		{protocol.CommandReq{ID: "7", Op: protocol.OpMarkDig, Owner: 0, Pos: [2]int{-1, 3}}, protocol.ErrInvalidTarget},
		{protocol.CommandReq{ID: "8", Op: protocol.OpAssignDig, Creature: uint32(imp.ID), Slot: 5}, protocol.ErrInvalidTarget},
		{protocol.CommandReq{ID: "9", Op: protocol.OpInterrupt, Creature: uint32(imp.ID)}, protocol.ErrInvalidTarget},
	}
	for _, tc := range cases {
		res := step(t, w, tc.cmd)
		if res[0].OK || res[0].Code != tc.code {
			t.Fatalf("%s %s: got %+v want %s", tc.cmd.ID, tc.cmd.Op, res[0], tc.code)
		}
		if !protocol.IsKnownCode(res[0].Code) {
			t.Fatalf("unknown code %q", res[0].Code)
		}
	}
}

func TestCommands_GoldAndSpawn(t *testing.T) {
	w := newTestWorld(t, 5)
	d := w.dungeon(1)
	before := d.TotalMoneyOwned

	res := step(t, w, protocol.CommandReq{ID: "add", Op: protocol.OpAddGold, Owner: 1, Amount: 5000})
	if !res[0].OK || d.TotalMoneyOwned != before+5000 {
		t.Fatalf("add gold: %+v total=%d", res[0], d.TotalMoneyOwned)
	}
	// 6000 of treasury space, 3000 already used.
	if d.OffmapMoneyOwned != 2000 {
		t.Fatalf("offmap=%d", d.OffmapMoneyOwned)
	}

	res = step(t, w, protocol.CommandReq{ID: "take", Op: protocol.OpTakeGold, Owner: 1, Amount: 2500})
	if !res[0].OK || res[0].Ref != 2500 || d.OffmapMoneyOwned != 0 || d.TotalMoneyOwned != before+2500 {
		t.Fatalf("take gold: %+v total=%d offmap=%d", res[0], d.TotalMoneyOwned, d.OffmapMoneyOwned)
	}

	h := heartOf(t, w, 1)
	pos := h.Add(2, 0)
	res = step(t, w, protocol.CommandReq{ID: "spawn", Op: protocol.OpSpawn, Kind: "wizard", Owner: 1, Pos: [2]int{pos.X, pos.Y}})
	if !res[0].OK {
		t.Fatalf("spawn: %+v", res[0])
	}
	cr := w.creatures[ThingID(res[0].Ref)]
	if cr == nil || cr.Owner != 1 || cr.Health != cr.MaxHealth || cr.Health == 0 {
		t.Fatalf("spawned creature %+v", cr)
	}
	fb, _ := w.catalogs.Instances.ResolveInstance("FIREBALL")
	heal, _ := w.catalogs.Instances.ResolveInstance("HEAL")
	if cr.Instances[fb] != 1 || cr.Instances[heal] != 0 {
		t.Fatalf("learned fireball=%d heal=%d", cr.Instances[fb], cr.Instances[heal])
	}
}

func TestCommands_FeedPossessMove(t *testing.T) {
	w := newTestWorld(t, 5)
	imp := firstImp(t, w, 0)
	h := heartOf(t, w, 0)
	to := h.Add(3, -3)
	res := step(t, w,
		protocol.CommandReq{ID: "feed", Op: protocol.OpFeed, Creature: uint32(imp.ID), Amount: 2},
		protocol.CommandReq{ID: "pos", Op: protocol.OpPossess, Creature: uint32(imp.ID), Flag: true},
		protocol.CommandReq{ID: "mv", Op: protocol.OpMove, Creature: uint32(imp.ID), Pos: [2]int{to.X, to.Y}},
	)
	for _, r := range res {
		if !r.OK {
			t.Fatalf("%s: %+v", r.ID, r)
		}
	}
	if imp.HungerAmount != 2 || !imp.Possessed || imp.Pos != to {
		t.Fatalf("imp hunger=%d possessed=%v pos=%v", imp.HungerAmount, imp.Possessed, imp.Pos)
	}
}

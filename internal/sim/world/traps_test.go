package world

import (
	"testing"

	"dungeonsim.ai/internal/protocol"
	"dungeonsim.ai/internal/sim/catalogs"
	"dungeonsim.ai/internal/sim/world/kernel/model"
)

func placeTrapCmd(id string, owner int, pos SlabPos, kind string) protocol.CommandReq {
	return protocol.CommandReq{ID: id, Op: protocol.OpPlaceTrap, Owner: owner, Pos: [2]int{pos.X, pos.Y}, Kind: kind}
}

func TestDestroy_RemovesNearbyTraps(t *testing.T) {
	w := newTestWorld(t, 5)
	step(t, w)
	h := heartOf(t, w, 0)
	target, near, far := h.Add(3, 0), h.Add(3, 1), h.Add(-3, 0)
	for _, p := range []SlabPos{target, near, far} {
		w.slabs.Place(p.X, p.Y, catalogs.SlabClaimed, 1)
	}
	w.slabs.SetHealth(target.X, target.Y, 1)

	res := step(t, w,
		placeTrapCmd("t1", 1, target, "BOULDER"),
		placeTrapCmd("t2", 1, near, "ALARM"),
		placeTrapCmd("t3", 1, far, "LAVA"),
	)
	for _, r := range res {
		if !r.OK {
			t.Fatalf("%s: %+v", r.ID, r)
		}
	}
	farTrap := ThingID(res[2].Ref)

	imp := firstImp(t, w, 0)
	res = step(t, w,
		protocol.CommandReq{ID: "move", Op: protocol.OpMove, Creature: uint32(imp.ID), Pos: [2]int{target.X, target.Y}},
		protocol.CommandReq{ID: "destroy", Op: protocol.OpStartInstance, Creature: uint32(imp.ID), Instance: "DESTROY"},
	)
	for _, r := range res {
		if !r.OK {
			t.Fatalf("%s: %+v", r.ID, r)
		}
	}
	for i := 0; i < 10; i++ {
		step(t, w)
	}

	if s, _ := w.slabs.At(target); s.Owner != model.PlayerNeutral {
		t.Fatalf("target owner=%d", s.Owner)
	}
	if w.trapAt(target) != nil || w.trapAt(near) != nil {
		t.Fatalf("traps next to the destroyed slab survived")
	}
	if tr := w.trapAt(far); tr == nil || tr.ID != farTrap {
		t.Fatalf("distant trap removed")
	}
	if w.dungeon(1).Stats.TerritoryLost != 1 {
		t.Fatalf("territory lost=%d", w.dungeon(1).Stats.TerritoryLost)
	}
	// Destroyed traps are not refunded.
	if w.dungeon(1).OffmapMoneyOwned != 0 {
		t.Fatalf("offmap=%d", w.dungeon(1).OffmapMoneyOwned)
	}
}

func TestPlaceTrap_Rejects(t *testing.T) {
	w := newTestWorld(t, 5)
	h := heartOf(t, w, 0)
	spot := h.Add(-3, 0)

	res := step(t, w,
		placeTrapCmd("ok", 0, spot, "boulder"),
		placeTrapCmd("twice", 0, spot, "ALARM"),
		placeTrapCmd("room", 0, h, "ALARM"),
		placeTrapCmd("foreign", 1, spot.Add(0, 1), "ALARM"),
		placeTrapCmd("unknown", 0, spot.Add(0, 1), "SPIKES"),
		placeTrapCmd("nobody", 6, spot.Add(0, 1), "ALARM"),
	)
	want := []string{"", protocol.ErrInvalidTarget, protocol.ErrInvalidTarget, protocol.ErrInvalidTarget, protocol.ErrBadRequest, protocol.ErrBadRequest}
	for i, r := range res {
		if r.Code != want[i] {
			t.Fatalf("%s: code=%q want %q (%s)", r.ID, r.Code, want[i], r.Message)
		}
	}
	if tr := w.trapAt(spot); tr == nil || tr.Owner != 0 || tr.Class != model.ClassTrap {
		t.Fatalf("trap=%+v", tr)
	}
}

func TestSellTrap_RefundsOffmap(t *testing.T) {
	w := newTestWorld(t, 5)
	h := heartOf(t, w, 0)
	spot, next := h.Add(-3, 0), h.Add(-3, 1)
	d := w.dungeon(0)

	step(t, w, placeTrapCmd("a", 0, spot, "BOULDER"), placeTrapCmd("b", 0, next, "ALARM"))
	boulder, _ := w.catalogs.Traps.IDByName("BOULDER")
	value := w.catalogs.Traps.ByID[boulder].SellValue
	offmap, total := d.OffmapMoneyOwned, d.TotalMoneyOwned

	w.slabs.Place(h.X+3, h.Y, catalogs.SlabClaimed, 1)
	step(t, w, placeTrapCmd("enemy", 1, h.Add(3, 0), "ALARM"))

	res := step(t, w,
		protocol.CommandReq{ID: "sell", Op: protocol.OpSellTrap, Owner: 0, Pos: [2]int{spot.X, spot.Y}},
		protocol.CommandReq{ID: "again", Op: protocol.OpSellTrap, Owner: 0, Pos: [2]int{spot.X, spot.Y}},
		protocol.CommandReq{ID: "enemy", Op: protocol.OpSellTrap, Owner: 0, Pos: [2]int{h.X + 3, h.Y}},
	)
	if !res[0].OK || res[0].Ref != value {
		t.Fatalf("sell: %+v want ref %d", res[0], value)
	}
	if res[1].Code != protocol.ErrNotFound || res[2].Code != protocol.ErrInvalidTarget {
		t.Fatalf("codes %q %q", res[1].Code, res[2].Code)
	}
	if d.OffmapMoneyOwned != offmap+value || d.TotalMoneyOwned != total+value {
		t.Fatalf("offmap=%d total=%d", d.OffmapMoneyOwned, d.TotalMoneyOwned)
	}
	if w.trapAt(next) == nil {
		t.Fatalf("selling one slab removed its neighbour")
	}
	var priced bool
	for _, e := range w.tickEffects {
		if e.Kind == string(model.EffectPrice) && e.Model == int(value) {
			priced = true
		}
	}
	if !priced {
		t.Fatalf("no price effect in %+v", w.tickEffects)
	}
}

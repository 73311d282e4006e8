package world

import (
	"encoding/json"
	"testing"

	"dungeonsim.ai/internal/observerproto"
	"dungeonsim.ai/internal/protocol"
	"dungeonsim.ai/internal/sim/catalogs"
	"dungeonsim.ai/internal/sim/world/kernel/model"
)

func TestObserver_MapThenTickFrames(t *testing.T) {
	w := newTestWorld(t, 13)
	tickOut := make(chan []byte, 1)
	dataOut := make(chan []byte, 4)
	w.handleObserverJoin(ObserverJoinRequest{SessionID: "o1", TickOut: tickOut, DataOut: dataOut, Owners: []int{1}})

	var m observerproto.MapMsg
	if err := json.Unmarshal(<-dataOut, &m); err != nil {
		t.Fatalf("map: %v", err)
	}
	if m.Type != "MAP" || m.Width != 48 || len(m.Kinds) != 48*48 || len(m.Owners) != len(m.Kinds) {
		t.Fatalf("bad map msg: type=%s w=%d kinds=%d", m.Type, m.Width, len(m.Kinds))
	}

	res := step(t, w, protocol.CommandReq{ID: "a", Op: protocol.OpAddGold, Owner: 1, Amount: 10})
	if !res[0].OK {
		t.Fatalf("add gold: %+v", res[0])
	}

	var tm observerproto.TickMsg
	if err := json.Unmarshal(<-tickOut, &tm); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if tm.Type != "TICK" || tm.Digest == "" || len(tm.Creatures) != 4 {
		t.Fatalf("bad tick msg: %+v", tm)
	}
	if len(tm.Dungeons) != 1 || tm.Dungeons[0].Owner != 1 {
		t.Fatalf("owner filter not applied: %+v", tm.Dungeons)
	}
	if len(tm.Commands) != 1 || tm.Commands[0].ID != "a" || tm.Commands[0].Code != "" {
		t.Fatalf("commands=%+v", tm.Commands)
	}
	if tm.Creatures[0].Kind != "IMP" {
		t.Fatalf("creature kind=%q", tm.Creatures[0].Kind)
	}

	w.handleObserverLeave("o1")
	step(t, w)
	select {
	case <-tickOut:
		t.Fatalf("frame after leave")
	default:
	}
}

func TestObserver_SlabPatchesAndNoMap(t *testing.T) {
	w := newTestWorld(t, 13)
	full := make(chan []byte, 1)
	quiet := make(chan []byte, 1)
	quietData := make(chan []byte, 1)
	w.handleObserverJoin(ObserverJoinRequest{SessionID: "full", TickOut: full})
	w.handleObserverJoin(ObserverJoinRequest{SessionID: "quiet", TickOut: quiet, DataOut: quietData, NoMap: true})
	if len(quietData) != 0 {
		t.Fatalf("no_map observer got a map")
	}

	h := heartOf(t, w, 0)
	target := h.Add(4, 0)
	w.slabs.Place(target.X, target.Y, catalogs.SlabEarth, model.PlayerNeutral)
	res := step(t, w, protocol.CommandReq{ID: "m", Op: protocol.OpMarkDig, Owner: 0, Pos: [2]int{target.X, target.Y}})
	if !res[0].OK {
		t.Fatalf("mark: %+v", res[0])
	}
	imp := firstImp(t, w, 0)
	imp.DigTask = int(res[0].Ref)
	imp.DigTarget = target
	w.slabs.SetHealth(target.X, target.Y, 1)
	step(t, w, protocol.CommandReq{ID: "d", Op: protocol.OpStartInstance, Creature: uint32(imp.ID), Instance: "DIG"})

	var patched bool
	for i := 0; i < 8 && !patched; i++ {
		var tm observerproto.TickMsg
		if err := json.Unmarshal(<-full, &tm); err != nil {
			t.Fatalf("tick: %v", err)
		}
		for _, p := range tm.Slabs {
			if p.Pos == [2]int{target.X, target.Y} && p.Kind == uint8(catalogs.SlabPath) {
				patched = true
			}
		}
		var qm observerproto.TickMsg
		if err := json.Unmarshal(<-quiet, &qm); err != nil {
			t.Fatalf("quiet tick: %v", err)
		}
		if len(qm.Slabs) != 0 {
			t.Fatalf("no_map observer got slab patches")
		}
		step(t, w)
	}
	if !patched {
		t.Fatalf("dig never produced a slab patch")
	}
}

func TestBootstrap(t *testing.T) {
	w := newTestWorld(t, 13)
	b := w.Bootstrap()
	if b.RunID != "test" || b.WorldParams.Width != 48 || b.WorldParams.Players != 2 {
		t.Fatalf("bootstrap %+v", b)
	}
	if len(b.SlabPalette) != int(catalogs.SlabKindCount) || b.SlabPalette[catalogs.SlabGold] != "GOLD" {
		t.Fatalf("palette %v", b.SlabPalette)
	}
	if b.Instances[0] != "NONE" || len(b.CatalogDigests) == 0 {
		t.Fatalf("instances=%v digests=%v", b.Instances, b.CatalogDigests)
	}
}

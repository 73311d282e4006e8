package world

import (
	"testing"

	"dungeonsim.ai/internal/sim/catalogs"
	"dungeonsim.ai/internal/sim/world/kernel/model"
)

func TestCheckMapExplored_FloodsOpenRegion(t *testing.T) {
	w := newTestWorld(t, 11)
	imp := firstImp(t, w, 0)
	ex := w.exploredOf(0)

	// A closed corridor far from both keepers.
	y := w.cfg.Height / 2
	for x := 20; x <= 26; x++ {
		for dy := -1; dy <= 1; dy++ {
			w.slabs.Place(x, y+dy, catalogs.SlabRock, model.PlayerNeutral)
		}
	}
	for x := 22; x <= 26; x++ {
		w.slabs.Place(x, y, catalogs.SlabPath, model.PlayerNeutral)
	}
	for x := 20; x <= 26; x++ {
		if ex.get(x, y) {
			t.Fatalf("%d,%d explored before dig", x, y)
		}
	}
	if !w.digHasRevealedArea(21, y, 0) {
		t.Fatalf("expected reveal next to unexplored corridor")
	}

	w.slabs.ConvertToFloor(21, y)
	w.checkMapExplored(imp, 21, y)

	for x := 21; x <= 26; x++ {
		if !ex.get(x, y) {
			t.Fatalf("%d,%d not explored", x, y)
		}
	}
	// Bounding walls are explored, the region beyond them is not.
	if !ex.get(24, y+1) || ex.get(24, y+2) {
		t.Fatalf("wall=%v beyond=%v", ex.get(24, y+1), ex.get(24, y+2))
	}
	if w.digHasRevealedArea(21, y, 0) {
		t.Fatalf("no reveal expected once explored")
	}
	if w.exploredOf(1).get(23, y) {
		t.Fatalf("other keeper's map changed")
	}
}

func TestExploredMap_Bounds(t *testing.T) {
	ex := newExploredMap(5, 4)
	if ex.set(-1, 0) || ex.set(5, 0) || ex.get(0, 4) {
		t.Fatalf("out of range access changed state")
	}
	if !ex.set(4, 3) || ex.set(4, 3) {
		t.Fatalf("set should report only the first change")
	}
	if ex.count() != 1 {
		t.Fatalf("count=%d", ex.count())
	}
	var nilMap *exploredMap
	if nilMap.get(0, 0) || nilMap.set(0, 0) {
		t.Fatalf("nil map must be inert")
	}
}

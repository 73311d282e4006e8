package world

import "dungeonsim.ai/internal/sim/world/kernel/model"

// exploredMap is one keeper's packed row-major explored bitmap.
type exploredMap struct {
	w, h int
	bits []uint64
}

func newExploredMap(w, h int) *exploredMap {
	return &exploredMap{w: w, h: h, bits: make([]uint64, (w*h+63)/64)}
}

func (e *exploredMap) in(x, y int) bool { return x >= 0 && y >= 0 && x < e.w && y < e.h }

func (e *exploredMap) get(x, y int) bool {
	if e == nil || !e.in(x, y) {
		return false
	}
	i := x + y*e.w
	return e.bits[i/64]&(1<<(uint(i)%64)) != 0
}

// set marks x,y explored and reports whether it was new.
func (e *exploredMap) set(x, y int) bool {
	if e == nil || !e.in(x, y) {
		return false
	}
	i := x + y*e.w
	mask := uint64(1) << (uint(i) % 64)
	if e.bits[i/64]&mask != 0 {
		return false
	}
	e.bits[i/64] |= mask
	return true
}

func (e *exploredMap) count() int {
	n := 0
	for _, b := range e.bits {
		for ; b != 0; b &= b - 1 {
			n++
		}
	}
	return n
}

func (w *World) exploredOf(owner PlayerID) *exploredMap {
	if owner < 0 || int(owner) >= len(w.explored) {
		return nil
	}
	return w.explored[owner]
}

// digHasRevealedArea reports whether opening x,y exposes an open slab owner
// has not explored yet.
func (w *World) digHasRevealedArea(x, y int, owner PlayerID) bool {
	ex := w.exploredOf(owner)
	if ex == nil {
		return false
	}
	for _, d := range model.SmallAround {
		nx, ny := x+d[0], y+d[1]
		if w.slabs.IsOpen(nx, ny) && !ex.get(nx, ny) {
			return true
		}
	}
	return false
}

// checkMapExplored marks the dug slab and its neighbours explored, then
// floods any open region reachable from them.
func (w *World) checkMapExplored(cr *Creature, x, y int) {
	if cr == nil {
		return
	}
	ex := w.exploredOf(cr.Owner)
	if ex == nil {
		return
	}
	ex.set(x, y)
	var seeds []SlabPos
	for _, d := range model.SmallAround {
		nx, ny := x+d[0], y+d[1]
		if ex.set(nx, ny) && w.slabs.IsOpen(nx, ny) {
			seeds = append(seeds, SlabPos{X: nx, Y: ny})
		}
	}
	if len(seeds) > 0 {
		w.floodExplore(ex, seeds)
	}
}

// floodExplore marks every open slab connected to seeds, plus the solid
// slabs bounding the region. The walk visits each cell at most once.
func (w *World) floodExplore(ex *exploredMap, seeds []SlabPos) {
	queue := append([]SlabPos(nil), seeds...)
	limit := w.slabs.Cells()
	for k := 0; len(queue) > 0; k++ {
		if k > limit {
			w.logf("explore: flood fill exceeded %d cells", limit)
			return
		}
		p := queue[0]
		queue = queue[1:]
		for _, d := range model.SmallAround {
			nx, ny := p.X+d[0], p.Y+d[1]
			if !ex.set(nx, ny) {
				continue
			}
			if w.slabs.IsOpen(nx, ny) {
				queue = append(queue, SlabPos{X: nx, Y: ny})
			}
		}
	}
}

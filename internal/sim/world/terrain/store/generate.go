package store

import (
	"dungeonsim.ai/internal/sim/world/kernel/model"
	genpkg "dungeonsim.ai/internal/sim/world/terrain/gen"
)

// Generate fills the whole map with base terrain.
func (m *SlabMap) Generate(g *genpkg.Generator) {
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			m.Place(x, y, g.KindAt(x, y, m.W, m.H), model.PlayerNeutral)
		}
	}
}

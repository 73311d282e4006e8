package economy

import (
	"dungeonsim.ai/internal/sim/catalogs"
	"dungeonsim.ai/internal/sim/world/kernel/model"
)

// CalculateAreaScores recounts every keeper's territory from the slab map.
// Room interiors count towards both totals, claimed ground only towards
// TotalArea. Neutral slabs are skipped.
func CalculateAreaScores(env Env) {
	for _, d := range env.Dungeons() {
		if d == nil {
			continue
		}
		d.TotalArea = 0
		d.RoomManageArea = 0
	}
	m := env.Slabs()
	for i := range m.Slabs {
		s := &m.Slabs[i]
		if s.Owner == model.PlayerNeutral {
			continue
		}
		d := env.Dungeon(s.Owner)
		if d == nil {
			continue
		}
		switch m.Def(s.Kind).Category {
		case catalogs.SlabCatRoomInterior:
			d.TotalArea++
			d.RoomManageArea++
		case catalogs.SlabCatClaimed:
			d.TotalArea++
		}
	}
}

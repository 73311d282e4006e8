package world

import (
	"fmt"

	"dungeonsim.ai/internal/sim/catalogs"
	"dungeonsim.ai/internal/sim/world/feature/economy"
	"dungeonsim.ai/internal/sim/world/kernel/model"
	"dungeonsim.ai/internal/sim/world/terrain/gen"
)

// generate carves base terrain and one keeper area per player: claimed ground
// around a 3x3 heart, a lair row above it and a treasury below.
func (w *World) generate() error {
	g := gen.New(w.cfg.Gen)
	w.slabs.Generate(g)

	r := g.Params().HeartClearRadius
	sites := g.HeartSites(w.cfg.Width, w.cfg.Height, w.cfg.Players)
	if len(sites) < w.cfg.Players {
		return fmt.Errorf("map has room for %d keepers, want %d", len(sites), w.cfg.Players)
	}
	w.dungeons = make([]*Dungeon, w.cfg.Players)
	w.explored = make([]*exploredMap, w.cfg.Players)
	for p := range w.dungeons {
		owner := PlayerID(p)
		w.dungeons[p] = model.NewDungeon(owner)
		w.explored[p] = newExploredMap(w.cfg.Width, w.cfg.Height)
		if err := w.buildKeeperArea(owner, sites[p], r); err != nil {
			return err
		}
	}
	w.recalcAreaScores()
	// Terrain placed during setup is not an audited change.
	w.tickAudits = w.tickAudits[:0]
	return nil
}

func (w *World) buildKeeperArea(owner PlayerID, c SlabPos, r int) error {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			w.slabs.Place(c.X+dx, c.Y+dy, catalogs.SlabClaimed, owner)
		}
	}
	var heart, lair, treasury []SlabPos
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			heart = append(heart, c.Add(dx, dy))
		}
	}
	for dx := -1; dx <= 1; dx++ {
		lair = append(lair, c.Add(dx, -2))
		treasury = append(treasury, c.Add(dx, 2))
	}
	if r >= 3 {
		for dx := -1; dx <= 1; dx++ {
			treasury = append(treasury, c.Add(dx, 3))
		}
	}
	if _, err := w.createRoom(catalogs.RoomDungeonHeart, owner, heart); err != nil {
		return err
	}
	if _, err := w.createRoom(catalogs.RoomLair, owner, lair); err != nil {
		return err
	}
	tr, err := w.createRoom(catalogs.RoomTreasure, owner, treasury)
	if err != nil {
		return err
	}

	d := w.dungeon(owner)
	if w.cfg.StartingGold > 0 {
		stored := economy.StoreGold(w.ecoEnv, tr, w.storagePerSlab(tr), w.cfg.StartingGold)
		economy.AddOffmapGold(d, w.cfg.StartingGold-stored)
	}

	// Everything within the keeper area starts explored.
	ex := w.explored[owner]
	for dy := -r - 1; dy <= r+1; dy++ {
		for dx := -r - 1; dx <= r+1; dx++ {
			ex.set(c.X+dx, c.Y+dy)
		}
	}

	if impKind, ok := w.catalogs.Creatures.KindByName("IMP"); ok {
		for i := 0; i < w.cfg.StartingImps; i++ {
			pos := c.Add(-r+i%(2*r+1), r)
			if _, err := w.spawnCreature(impKind, owner, pos); err != nil {
				return err
			}
		}
	}
	return nil
}

// spawnCreature creates a creature with the instances its kind knows at level 1.
func (w *World) spawnCreature(kind int, owner PlayerID, pos SlabPos) (*Creature, error) {
	def, ok := w.catalogs.Creatures.Get(kind)
	if !ok {
		return nil, fmt.Errorf("creature kind %d: %w", kind, catalogs.ErrUnknownName)
	}
	if !w.slabs.IsOpen(pos.X, pos.Y) {
		return nil, fmt.Errorf("spawn at %d,%d: slab is solid", pos.X, pos.Y)
	}
	cr := model.NewCreature(w.allocThingID(), kind, owner, pos, w.catalogs.Instances.Count())
	cr.MaxHealth = def.Health
	cr.Health = def.Health
	w.learnInstances(cr)
	w.creatures[cr.ID] = cr
	return cr, nil
}

// learnInstances grants every instance the kind learns at or below cr.Level.
func (w *World) learnInstances(cr *Creature) {
	def, ok := w.catalogs.Creatures.Get(cr.Kind)
	if !ok {
		return
	}
	for _, li := range def.Learned {
		if li.Level > cr.Level {
			continue
		}
		id, err := w.catalogs.Instances.ResolveInstance(li.Instance)
		if err != nil || int(id) >= len(cr.Instances) {
			w.logf("creature %s: learned %s: %v", def.Name, li.Instance, err)
			continue
		}
		if cr.Instances[id] < 255 {
			cr.Instances[id]++
		}
	}
}

func (w *World) storagePerSlab(r *Room) int64 {
	if r == nil {
		return 0
	}
	return int64(w.catalogs.Rooms.Def(r.Kind).StoragePerSlab)
}

package world

import (
	"sort"

	"dungeonsim.ai/internal/persistence/snapshot"
)

func (w *World) exportSnapshot(nowTick uint64) snapshot.SnapshotV1 {
	// Snapshot must be called from the world loop goroutine.
	s := snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version: snapshot.Version,
			RunID:   w.cfg.RunID,
			Tick:    nowTick,
		},
		Seed:           w.cfg.Seed,
		TickRate:       w.cfg.TickRateHz,
		Width:          w.cfg.Width,
		Height:         w.cfg.Height,
		Players:        w.cfg.Players,
		CatalogDigests: w.catalogs.Digests(),
		Slabs:          w.slabs.ExportSlabs(),
		Counters: snapshot.CountersV1{
			NextThing: uint64(w.nextThing),
			NextRoom:  uint64(w.nextRoom),
			NextEvent: w.nextEvent,
		},
	}

	for _, id := range sortedRoomIDs(w.rooms) {
		r := w.rooms[id]
		s.Rooms = append(s.Rooms, snapshot.RoomV1{
			ID:              uint32(r.ID),
			Kind:            uint8(r.Kind),
			Owner:           int8(r.Owner),
			ClaimResistance: r.ClaimResistance,
			FirstSlab:       r.FirstSlab,
			SlabCount:       r.SlabCount,
			Central:         [2]int{r.Central.X, r.Central.Y},
			NextOfOwner:     uint32(r.NextOfOwner),
			StorageCapacity: r.StorageCapacity,
			StorageUsed:     r.StorageUsed,
		})
	}

	for _, d := range w.dungeons {
		if d == nil {
			continue
		}
		dv := snapshot.DungeonV1{
			Owner:            int8(d.Owner),
			TotalMoneyOwned:  d.TotalMoneyOwned,
			OffmapMoneyOwned: d.OffmapMoneyOwned,
			TotalArea:        d.TotalArea,
			RoomManageArea:   d.RoomManageArea,
			Stats: snapshot.StatsV1{
				GoldMined:          d.Stats.GoldMined,
				TerritoryLost:      d.Stats.TerritoryLost,
				TerritoryDestroyed: d.Stats.TerritoryDestroyed,
				AreaClaimed:        d.Stats.AreaClaimed,
				RoomsDestroyed:     d.Stats.RoomsDestroyed,
				RoomsLost:          d.Stats.RoomsLost,
				RoomsClaimed:       d.Stats.RoomsClaimed,
			},
			RoomHeads: make([]uint32, len(d.RoomHeads)),
		}
		for i, t := range d.Tasks {
			if t.Kind == 0 {
				continue
			}
			dv.Tasks = append(dv.Tasks, snapshot.TaskV1{
				Slot:   i,
				Kind:   uint8(t.Kind),
				Target: [2]int{t.Target.X, t.Target.Y},
			})
		}
		for i, h := range d.RoomHeads {
			dv.RoomHeads[i] = uint32(h)
		}
		s.Dungeons = append(s.Dungeons, dv)
	}

	for _, id := range sortedCreatureIDs(w.creatures) {
		c := w.creatures[id]
		s.Creatures = append(s.Creatures, snapshot.CreatureV1{
			ID:                uint32(c.ID),
			Kind:              c.Kind,
			Owner:             int8(c.Owner),
			Pos:               [2]int{c.Pos.X, c.Pos.Y},
			Level:             c.Level,
			Health:            c.Health,
			MaxHealth:         c.MaxHealth,
			GoldCarried:       c.GoldCarried,
			Possessed:         c.Possessed,
			CombatTarget:      uint32(c.CombatTarget),
			TargetPos:         [2]int{c.TargetPos.X, c.TargetPos.Y},
			DigTask:           c.DigTask,
			DigTarget:         [2]int{c.DigTarget.X, c.DigTarget.Y},
			DamageWallTarget:  [2]int{c.DamageWallTarget.X, c.DamageWallTarget.Y},
			TunnelTarget:      [2]int{c.TunnelTarget.X, c.TunnelTarget.Y},
			ReinforceProgress: c.ReinforceProgress,
			HungerAmount:      c.HungerAmount,
			HungerLevel:       c.HungerLevel,
			Instance: snapshot.InstanceStateV1{
				Active:             int(c.Inst.Active),
				Elapsed:            c.Inst.Elapsed,
				TriggerTick:        c.Inst.TriggerTick,
				CompletionTick:     c.Inst.CompletionTick,
				InterruptRequested: c.Inst.InterruptRequested,
				LastUsedTick:       append([]uint64(nil), c.Inst.LastUsedTick...),
			},
			Instances: append([]uint8(nil), c.Instances...),
		})
	}

	for _, id := range sortedThingIDs(w.things) {
		t := w.things[id]
		s.Things = append(s.Things, snapshot.ThingV1{
			ID:          uint32(t.ID),
			Class:       uint8(t.Class),
			Model:       t.Model,
			Owner:       int8(t.Owner),
			Pos:         [2]int{t.Pos.X, t.Pos.Y},
			Gold:        t.Gold,
			HitType:     t.HitType,
			TargetID:    uint32(t.TargetID),
			CreatedTick: t.CreatedTick,
		})
	}

	evs := append(w.events[:0:0], w.events...)
	sort.SliceStable(evs, func(i, j int) bool { return evs[i].ID < evs[j].ID })
	for _, ev := range evs {
		s.Events = append(s.Events, snapshot.EventV1{
			ID:        ev.ID,
			Kind:      string(ev.Kind),
			Owner:     int8(ev.Owner),
			Pos:       [2]int{ev.Pos.X, ev.Pos.Y},
			Target:    ev.Target,
			CreatedAt: ev.CreatedAt,
			UpdatedAt: ev.UpdatedAt,
			ExpiresAt: ev.ExpiresAt,
			Refreshes: ev.Refreshes,
		})
	}

	for _, ex := range w.explored {
		if ex == nil {
			s.Explored = append(s.Explored, nil)
			continue
		}
		s.Explored = append(s.Explored, append([]uint64(nil), ex.bits...))
	}
	return s
}

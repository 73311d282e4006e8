package world

import (
	"fmt"

	"dungeonsim.ai/internal/persistence/snapshot"
	"dungeonsim.ai/internal/sim/catalogs"
	"dungeonsim.ai/internal/sim/world/kernel/model"
	"dungeonsim.ai/internal/sim/world/terrain/store"
)

func (w *World) importSnapshotV1(s snapshot.SnapshotV1) error {
	if s.Header.Version != snapshot.Version {
		return fmt.Errorf("unsupported snapshot version: %d", s.Header.Version)
	}
	if s.Players <= 0 || s.Players > model.MaxPlayers {
		return fmt.Errorf("snapshot players=%d out of range", s.Players)
	}
	if len(s.Dungeons) != s.Players {
		return fmt.Errorf("snapshot dungeons=%d want %d", len(s.Dungeons), s.Players)
	}
	for name, want := range s.CatalogDigests {
		if got := w.catalogs.Digests()[name]; got != "" && got != want {
			return fmt.Errorf("catalog %s digest mismatch: snapshot %s loaded %s", name, want, got)
		}
	}
	m, err := store.ImportSlabs(s.Width, s.Height, &w.catalogs.Slabs, s.Slabs)
	if err != nil {
		return err
	}

	w.cfg.RunID = s.Header.RunID
	w.cfg.Seed = s.Seed
	w.cfg.Gen.Seed = s.Seed
	if s.TickRate > 0 {
		w.cfg.TickRateHz = s.TickRate
	}
	w.cfg.Width = s.Width
	w.cfg.Height = s.Height
	w.cfg.Players = s.Players

	w.resetState(m)
	w.nextThing = uint32(s.Counters.NextThing)
	w.nextRoom = uint32(s.Counters.NextRoom)
	w.nextEvent = s.Counters.NextEvent

	for _, rv := range s.Rooms {
		if catalogs.RoomKind(rv.Kind) >= catalogs.RoomKindCount {
			return fmt.Errorf("snapshot room %d: unknown kind %d", rv.ID, rv.Kind)
		}
		w.rooms[RoomID(rv.ID)] = &Room{
			ID:              RoomID(rv.ID),
			Kind:            catalogs.RoomKind(rv.Kind),
			Owner:           PlayerID(rv.Owner),
			ClaimResistance: rv.ClaimResistance,
			FirstSlab:       rv.FirstSlab,
			SlabCount:       rv.SlabCount,
			Central:         SlabPos{X: rv.Central[0], Y: rv.Central[1]},
			NextOfOwner:     RoomID(rv.NextOfOwner),
			StorageCapacity: rv.StorageCapacity,
			StorageUsed:     rv.StorageUsed,
		}
	}

	w.dungeons = make([]*Dungeon, s.Players)
	for i, dv := range s.Dungeons {
		if int(dv.Owner) != i {
			return fmt.Errorf("snapshot dungeon %d has owner %d", i, dv.Owner)
		}
		d := model.NewDungeon(PlayerID(dv.Owner))
		d.TotalMoneyOwned = dv.TotalMoneyOwned
		d.OffmapMoneyOwned = dv.OffmapMoneyOwned
		d.TotalArea = dv.TotalArea
		d.RoomManageArea = dv.RoomManageArea
		d.Stats = model.LevelStats{
			GoldMined:          dv.Stats.GoldMined,
			TerritoryLost:      dv.Stats.TerritoryLost,
			TerritoryDestroyed: dv.Stats.TerritoryDestroyed,
			AreaClaimed:        dv.Stats.AreaClaimed,
			RoomsDestroyed:     dv.Stats.RoomsDestroyed,
			RoomsLost:          dv.Stats.RoomsLost,
			RoomsClaimed:       dv.Stats.RoomsClaimed,
		}
		for _, tv := range dv.Tasks {
			if tv.Slot < 0 || tv.Slot >= len(d.Tasks) {
				return fmt.Errorf("snapshot dungeon %d: task slot %d out of range", i, tv.Slot)
			}
			d.Tasks[tv.Slot] = model.MapTask{
				Kind:   model.TaskKind(tv.Kind),
				Target: SlabPos{X: tv.Target[0], Y: tv.Target[1]},
			}
		}
		for k := 0; k < len(dv.RoomHeads) && k < len(d.RoomHeads); k++ {
			d.RoomHeads[k] = RoomID(dv.RoomHeads[k])
		}
		w.dungeons[i] = d
	}

	n := w.catalogs.Instances.Count()
	for _, cv := range s.Creatures {
		c := model.NewCreature(ThingID(cv.ID), cv.Kind, PlayerID(cv.Owner), SlabPos{X: cv.Pos[0], Y: cv.Pos[1]}, n)
		c.Level = cv.Level
		c.Health = cv.Health
		c.MaxHealth = cv.MaxHealth
		c.GoldCarried = cv.GoldCarried
		c.Possessed = cv.Possessed
		c.CombatTarget = ThingID(cv.CombatTarget)
		c.TargetPos = SlabPos{X: cv.TargetPos[0], Y: cv.TargetPos[1]}
		c.DigTask = cv.DigTask
		c.DigTarget = SlabPos{X: cv.DigTarget[0], Y: cv.DigTarget[1]}
		c.DamageWallTarget = SlabPos{X: cv.DamageWallTarget[0], Y: cv.DamageWallTarget[1]}
		c.TunnelTarget = SlabPos{X: cv.TunnelTarget[0], Y: cv.TunnelTarget[1]}
		c.ReinforceProgress = cv.ReinforceProgress
		c.HungerAmount = cv.HungerAmount
		c.HungerLevel = cv.HungerLevel
		c.Inst.Active = catalogs.InstanceID(cv.Instance.Active)
		c.Inst.Elapsed = cv.Instance.Elapsed
		c.Inst.TriggerTick = cv.Instance.TriggerTick
		c.Inst.CompletionTick = cv.Instance.CompletionTick
		c.Inst.InterruptRequested = cv.Instance.InterruptRequested
		copy(c.Inst.LastUsedTick, cv.Instance.LastUsedTick)
		copy(c.Instances, cv.Instances)
		w.creatures[c.ID] = c
	}

	for _, tv := range s.Things {
		t := &Thing{
			ID:          ThingID(tv.ID),
			Class:       model.ThingClass(tv.Class),
			Model:       tv.Model,
			Owner:       PlayerID(tv.Owner),
			Pos:         SlabPos{X: tv.Pos[0], Y: tv.Pos[1]},
			Gold:        tv.Gold,
			HitType:     tv.HitType,
			TargetID:    ThingID(tv.TargetID),
			CreatedTick: tv.CreatedTick,
		}
		w.things[t.ID] = t
		if t.Class == model.ClassObject && t.Model == model.ObjectGoldHoard {
			w.hoards[t.Pos] = t.ID
		}
	}

	for _, ev := range s.Events {
		w.events = append(w.events, &model.Event{
			ID:        ev.ID,
			Kind:      model.EventKind(ev.Kind),
			Owner:     PlayerID(ev.Owner),
			Pos:       SlabPos{X: ev.Pos[0], Y: ev.Pos[1]},
			Target:    ev.Target,
			CreatedAt: ev.CreatedAt,
			UpdatedAt: ev.UpdatedAt,
			ExpiresAt: ev.ExpiresAt,
			Refreshes: ev.Refreshes,
		})
	}

	w.explored = make([]*exploredMap, s.Players)
	for i := range w.explored {
		ex := newExploredMap(s.Width, s.Height)
		if i < len(s.Explored) {
			if len(s.Explored[i]) != len(ex.bits) {
				return fmt.Errorf("snapshot explored[%d] length %d want %d", i, len(s.Explored[i]), len(ex.bits))
			}
			copy(ex.bits, s.Explored[i])
		}
		w.explored[i] = ex
	}

	w.tickAudits = w.tickAudits[:0]
	w.tick.Store(s.Header.Tick + 1)
	return nil
}

package world

import (
	"time"

	"dungeonsim.ai/internal/sim/catalogs"
	"dungeonsim.ai/internal/sim/world/feature/instances"
)

// stepInternal runs one tick: commands in arrival order, then every creature
// in ascending id order, then periodic bookkeeping. It returns the digest of
// the state after the tick.
func (w *World) stepInternal(cmds []CommandEnvelope) string {
	stepStart := time.Now()
	nowTick := w.tick.Load()

	w.tickFired = w.tickFired[:0]
	w.tickEvents = w.tickEvents[:0]
	w.tickEffects = w.tickEffects[:0]
	w.tickAudits = w.tickAudits[:0]
	w.tickSounds = 0

	recorded := make([]RecordedCommand, 0, len(cmds))
	for _, env := range cmds {
		w.curActor = 0
		rec, res := w.applyCommand(env.Cmd, nowTick)
		recorded = append(recorded, rec)
		if env.Resp != nil {
			select {
			case env.Resp <- res:
			default:
			}
		}
	}

	for _, id := range sortedCreatureIDs(w.creatures) {
		cr := w.creatures[id]
		if !cr.Alive() {
			continue
		}
		active := cr.Inst.Active
		w.curActor = cr.ID
		r := instances.Advance(w.instEnv, cr, nowTick)
		if r.Fired != catalogs.InstNone {
			w.tickFired = append(w.tickFired, FiredInstance{
				Creature: uint32(cr.ID),
				Instance: w.instanceName(active),
				Outcome:  r.Outcome.String(),
			})
		}
	}
	w.curActor = 0

	var stats []DungeonStat
	if every := uint64(w.cfg.AreaScoreEveryTicks); every > 0 && nowTick%every == 0 {
		w.recalcAreaScores()
		stats = w.dungeonStats()
	}
	w.expireEvents(nowTick)
	w.expireShots(nowTick)

	digest := w.stateDigest(nowTick)

	w.stepObservers(nowTick, digest, recorded)

	if w.tickLogger != nil {
		entry := TickLogEntry{
			Tick:     nowTick,
			Commands: recorded,
			Fired:    append([]FiredInstance(nil), w.tickFired...),
			Events:   append([]EventRecord(nil), w.tickEvents...),
			Dungeons: stats,
			Digest:   digest,
		}
		if err := w.tickLogger.WriteTick(entry); err != nil {
			w.logf("tick log: %v", err)
		}
	}
	if w.auditLogger != nil {
		for _, a := range w.tickAudits {
			if err := w.auditLogger.WriteAudit(a); err != nil {
				w.logf("audit log: %v", err)
				break
			}
		}
	}

	// Snapshot every N ticks, starting after tick 0.
	if w.snapshotSink != nil && nowTick != 0 && w.cfg.SnapshotEveryTicks > 0 {
		if nowTick%uint64(w.cfg.SnapshotEveryTicks) == 0 {
			snap := w.ExportSnapshot(nowTick)
			select {
			case w.snapshotSink <- snap:
			default:
				// Drop snapshot if sink is backed up.
			}
		}
	}

	stepMS := float64(time.Since(stepStart).Microseconds()) / 1000.0
	nextTick := w.tick.Add(1)
	w.metrics.Store(WorldMetrics{
		Tick:      nextTick,
		Creatures: len(w.creatures),
		Rooms:     len(w.rooms),
		Things:    len(w.things),
		Events:    len(w.events),
		Observers: len(w.observers),
		QueueDepths: QueueDepths{
			Commands: len(w.commands),
			Admin:    len(w.admin),
		},
		StepMS:        stepMS,
		FiredLastTick: len(w.tickFired),
		SoundsLast:    w.tickSounds,
		Dungeons:      w.dungeonStats(),
	})
	return digest
}

func (w *World) instanceName(id catalogs.InstanceID) string {
	info, err := w.catalogs.Instances.Describe(id)
	if err != nil {
		return "INVALID"
	}
	return info.Name
}

func (w *World) dungeonStats() []DungeonStat {
	out := make([]DungeonStat, 0, len(w.dungeons))
	for _, d := range w.dungeons {
		if d == nil {
			continue
		}
		out = append(out, DungeonStat{
			Owner:        int(d.Owner),
			Gold:         d.TotalMoneyOwned,
			OffmapGold:   d.OffmapMoneyOwned,
			TotalArea:    d.TotalArea,
			RoomArea:     d.RoomManageArea,
			GoldMined:    d.Stats.GoldMined,
			AreaClaimed:  d.Stats.AreaClaimed,
			RoomsLost:    d.Stats.RoomsLost,
			RoomsClaimed: d.Stats.RoomsClaimed,
		})
	}
	return out
}
